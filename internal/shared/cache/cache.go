package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// JSON encapsula leitura/escrita de valores serializados em JSON no Redis
type JSON struct{ R *redis.Client }

func NewJSON(r *redis.Client) *JSON { return &JSON{R: r} }

// Get retorna false (sem erro) quando a chave não existe
func (c *JSON) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *JSON) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key, b, ttl).Err()
}

func (c *JSON) Delete(ctx context.Context, keys ...string) error {
	return c.R.Del(ctx, keys...).Err()
}

// Chaves do cache de leitura de odds; o odds-processor invalida as mesmas chaves
const OddsGamesKey = "odds:games"

func OddsGameBetsKey(gameID string) string { return "odds:game:" + gameID + ":bets" }
