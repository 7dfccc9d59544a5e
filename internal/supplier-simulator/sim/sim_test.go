package sim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/feed"
	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/normalize"
)

var boot = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func TestEventsFollowLifecycle(t *testing.T) {
	c := NewCatalog(boot, 1)
	evs := c.Events(boot, "NFL")
	require.Len(t, evs, 7)

	byID := map[string]feed.Event{}
	for _, e := range evs {
		byID[e.EventID] = e
	}

	done := byID["SIM_001"]
	assert.True(t, done.Status.Completed)
	assert.Empty(t, done.Odds)
	require.NotNil(t, done.Points("game", "home"))
	home, away := finalScore("SIM_001")
	assert.Equal(t, home, *done.Points("game", "home"))
	assert.Equal(t, away, *done.Points("game", "away"))

	assert.True(t, byID["SIM_003"].Status.Live)
	assert.NotEmpty(t, byID["SIM_003"].Odds)
	assert.False(t, byID["SIM_004"].Status.Started)
	assert.True(t, byID["SIM_007"].Status.Cancelled)

	// SIM_004 começa 2h após o boot; 6h depois está encerrado
	later := c.Events(boot.Add(6*time.Hour), "NFL")
	for _, e := range later {
		if e.EventID == "SIM_004" {
			assert.True(t, e.Status.Completed)
		}
	}
}

func TestGeneratedOddsClassify(t *testing.T) {
	evs := NewCatalog(boot, 7).Events(boot, "NFL")
	var scheduled feed.Event
	for _, e := range evs {
		if e.EventID == "SIM_005" {
			scheduled = e
		}
	}
	require.NotEmpty(t, scheduled.Odds)

	keys := map[string]bool{}
	for _, o := range scheduled.Odds {
		c := normalize.Classify(o, scheduled.Players)
		require.NotEqual(t, normalize.KindUnmapped, c.Kind, o.OddID)
		keys[c.MarketKey] = true
	}
	for _, k := range []string{"moneyline", "spread", "total", "1q_total", "player_passing_yards_ou"} {
		assert.True(t, keys[k], k)
	}
}

func newTestServer(apiKey string) *httptest.Server {
	s := &Server{Log: zap.NewNop(), Catalog: NewCatalog(boot, 1), APIKey: apiKey, Now: func() time.Time { return boot }}
	return httptest.NewServer(s.Router())
}

func TestFeedClientPaginatesSimulator(t *testing.T) {
	srv := newTestServer("k")
	defer srv.Close()

	client := feed.NewClient(srv.URL+"/v2", "k", "NFL", 2, time.Second, zap.NewNop())
	evs, err := client.FetchEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, evs, 7)
	assert.Equal(t, "SIM_001", evs[0].EventID)
	assert.Equal(t, "SIM_007", evs[6].EventID)
}

func TestRejectsWrongKey(t *testing.T) {
	srv := newTestServer("k")
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v2/events", nil)
	require.NoError(t, err)
	req.Header.Set("X-Api-Key", "wrong")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	_, err = feed.NewClient(srv.URL+"/v2", "", "NFL", 2, time.Second, zap.NewNop()).FetchEvents(context.Background())
	assert.Error(t, err)
}
