package cache

import (
	"context"
	"time"

	"github.com/radieske/fantasy-sportsbook/internal/odds-service/dto"
	scache "github.com/radieske/fantasy-sportsbook/internal/shared/cache"
)

// Cache guarda as respostas de leitura mais quentes (lista de jogos e bets por jogo)
type Cache struct {
	j   *scache.JSON
	ttl time.Duration
}

func New(j *scache.JSON, ttl time.Duration) *Cache { return &Cache{j: j, ttl: ttl} }

func (c *Cache) GetGames(ctx context.Context) ([]dto.Game, bool) {
	var out []dto.Game
	ok, err := c.j.Get(ctx, scache.OddsGamesKey, &out)
	return out, ok && err == nil
}

func (c *Cache) SetGames(ctx context.Context, games []dto.Game) error {
	return c.j.Set(ctx, scache.OddsGamesKey, games, c.ttl)
}

func (c *Cache) GetBets(ctx context.Context, gameID string) ([]dto.AvailableBet, bool) {
	var out []dto.AvailableBet
	ok, err := c.j.Get(ctx, scache.OddsGameBetsKey(gameID), &out)
	return out, ok && err == nil
}

func (c *Cache) SetBets(ctx context.Context, gameID string, bets []dto.AvailableBet) error {
	return c.j.Set(ctx, scache.OddsGameBetsKey(gameID), bets, c.ttl)
}
