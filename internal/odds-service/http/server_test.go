package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-service/dto"
	"github.com/radieske/fantasy-sportsbook/internal/odds-service/repo"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

type fakeReader struct {
	games     map[string]model.Game
	bets      map[string][]model.AvailableBet
	listCalls int
}

func (f *fakeReader) ListGames(_ context.Context, _ string) ([]model.Game, error) {
	f.listCalls++
	var out []model.Game
	for _, g := range f.games {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeReader) GetGame(_ context.Context, id string) (model.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return g, repo.ErrGameNotFound
	}
	return g, nil
}

func (f *fakeReader) ListActiveBets(_ context.Context, gameID string) ([]model.AvailableBet, error) {
	return f.bets[gameID], nil
}

func (f *fakeReader) ListMarketTypes(context.Context) ([]model.MarketType, error) {
	return []model.MarketType{{ID: 1, MarketKey: "moneyline", Name: "Moneyline"}}, nil
}

type memCache struct {
	games []dto.Game
	bets  map[string][]dto.AvailableBet
}

func (m *memCache) GetGames(context.Context) ([]dto.Game, bool) { return m.games, m.games != nil }

func (m *memCache) SetGames(_ context.Context, g []dto.Game) error {
	m.games = g
	return nil
}

func (m *memCache) GetBets(_ context.Context, id string) ([]dto.AvailableBet, bool) {
	b, ok := m.bets[id]
	return b, ok
}

func (m *memCache) SetBets(_ context.Context, id string, b []dto.AvailableBet) error {
	m.bets[id] = b
	return nil
}

func fixture() (*fakeReader, *memCache, http.Handler) {
	reader := &fakeReader{
		games: map[string]model.Game{
			"g1": {ID: "g1", HomeTeam: "Chiefs", AwayTeam: "Bills", Status: model.GameScheduled, StartTime: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		},
		bets: map[string][]model.AvailableBet{
			"g1": {{ID: "b1", GameID: "g1", MarketKey: "moneyline", Selection: "Chiefs", Side: "home", Odds: decimal.RequireFromString("1.91")}},
		},
	}
	cache := &memCache{bets: map[string][]dto.AvailableBet{}}
	api := &API{Log: zap.NewNop(), ReadRepo: reader, Cache: cache}
	return reader, cache, api.Router()
}

func do(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListGamesFillsCache(t *testing.T) {
	reader, cache, h := fixture()

	rec := do(h, "/v1/games")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, cache.games, 1)

	rec = do(h, "/v1/games")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, reader.listCalls)

	var games []dto.Game
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&games))
	assert.Equal(t, "Chiefs", games[0].HomeTeam)
}

func TestListBetsFormatsOdds(t *testing.T) {
	_, cache, h := fixture()

	rec := do(h, "/v1/games/g1/bets")
	require.Equal(t, http.StatusOK, rec.Code)

	var bets []dto.AvailableBet
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bets))
	require.Len(t, bets, 1)
	assert.Equal(t, "1.91", bets[0].Odds)
	assert.Contains(t, cache.bets, "g1")
}

func TestUnknownGameIs404(t *testing.T) {
	_, _, h := fixture()

	assert.Equal(t, http.StatusNotFound, do(h, "/v1/games/nope").Code)
	assert.Equal(t, http.StatusNotFound, do(h, "/v1/games/nope/bets").Code)
}

func TestListMarketTypes(t *testing.T) {
	_, _, h := fixture()

	rec := do(h, "/v1/market-types")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"market_key":"moneyline"`)
}
