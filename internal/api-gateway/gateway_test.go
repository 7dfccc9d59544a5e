package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// echo responde com o nome do upstream e o path recebido
func echo(name string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, name+" "+r.Method+" "+r.URL.Path)
	}))
}

func TestRoutesStripPrefixes(t *testing.T) {
	odds, wallet, bet, settle := echo("odds"), echo("wallet"), echo("bet"), echo("settlement")
	defer odds.Close()
	defer wallet.Close()
	defer bet.Close()
	defer settle.Close()

	h, err := New(Targets{Odds: odds.URL, Wallet: wallet.URL, Bet: bet.URL, Settlement: settle.URL}, zap.NewNop())
	require.NoError(t, err)
	gw := httptest.NewServer(h)
	defer gw.Close()

	cases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/odds/v1/games", "odds GET /v1/games"},
		{http.MethodGet, "/api/wallet", "wallet GET /wallet"},
		{http.MethodGet, "/api/wallet/transactions", "wallet GET /wallet/transactions"},
		{http.MethodPost, "/api/bets", "bet POST /bets"},
		{http.MethodGet, "/api/bets/abc", "bet GET /bets/abc"},
		{http.MethodPost, "/api/settlement/run", "settlement POST /settlement/run"},
	}
	for _, tc := range cases {
		req, err := http.NewRequest(tc.method, gw.URL+tc.path, nil)
		require.NoError(t, err)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		assert.Equal(t, tc.want, string(body), tc.path)
		assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestPreflightShortCircuits(t *testing.T) {
	h, err := New(Targets{Odds: "http://odds", Wallet: "http://wallet", Bet: "http://bet", Settlement: "http://settle"}, zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/bets", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRejectsBadUpstream(t *testing.T) {
	_, err := New(Targets{Odds: "not a url", Wallet: "http://w", Bet: "http://b", Settlement: "http://s"}, zap.NewNop())
	assert.Error(t, err)
}
