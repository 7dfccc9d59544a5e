package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	scache "github.com/radieske/fantasy-sportsbook/internal/shared/cache"
)

// RedisCache remove as respostas do odds-service que ficaram velhas
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(c *redis.Client) *RedisCache {
	return &RedisCache{Client: c}
}

// Invalidate apaga a lista de jogos e as bets do jogo atualizado
func (r *RedisCache) Invalidate(ctx context.Context, gameID string) error {
	return r.Client.Del(ctx, scache.OddsGamesKey, scache.OddsGameBetsKey(gameID)).Err()
}
