package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/settlement"
)

type stubRunner struct {
	st  settlement.Stats
	err error
}

func (s stubRunner) Run(context.Context) (settlement.Stats, error) { return s.st, s.err }

func post(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/settlement/run", nil))
	return rec
}

func TestRunReturnsStats(t *testing.T) {
	api := &API{Log: zap.NewNop(), Runner: stubRunner{st: settlement.Stats{GamesProcessed: 2, BetsUpdated: 5, BalanceUpdates: 3}}}

	rec := post(api.Router())
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body["games_processed"])
	assert.Equal(t, 5, body["bets_updated"])
	assert.Equal(t, 3, body["balance_updates"])
}

func TestRunConflictWhenAlreadyRunning(t *testing.T) {
	api := &API{Log: zap.NewNop(), Runner: stubRunner{err: settlement.ErrAlreadyRunning}}
	rec := post(api.Router())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_running")
}

func TestRunInternalError(t *testing.T) {
	api := &API{Log: zap.NewNop(), Runner: stubRunner{err: errors.New("db down")}}
	rec := post(api.Router())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestRunRejectsGet(t *testing.T) {
	api := &API{Log: zap.NewNop(), Runner: stubRunner{}}
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settlement/run", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
