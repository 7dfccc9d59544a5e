package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/feed"
	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/normalize"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

type stubFetcher struct {
	events []feed.Event
	err    error
}

func (s stubFetcher) FetchEvents(context.Context) ([]feed.Event, error) { return s.events, s.err }

type countingStore struct {
	upserts  int
	promoted int
}

func (c *countingStore) UpsertGame(_ context.Context, g model.Game) (string, error) {
	c.upserts++
	return "g-" + g.ExternalID, nil
}

func (c *countingStore) ReplaceAvailableBets(context.Context, string, []model.AvailableBet) (int64, error) {
	return 0, nil
}

func (c *countingStore) PromoteStartedGames(context.Context, time.Time) (int64, int64, error) {
	c.promoted++
	return 1, 2, nil
}

type recordingPublisher struct{ games []normalize.RefreshedGame }

func (p *recordingPublisher) PublishRefreshed(_ context.Context, g []normalize.RefreshedGame) int {
	p.games = append(p.games, g...)
	return 0
}

func event(id string) feed.Event {
	return feed.Event{
		EventID: id,
		Teams: feed.Teams{
			Home: feed.Team{Names: feed.TeamNames{Long: "Home"}},
			Away: feed.Team{Names: feed.TeamNames{Long: "Away"}},
		},
		Status: feed.Status{StartsAt: time.Now().Add(time.Hour)},
		Odds: map[string]feed.Odd{
			"x": {StatID: "points", StatEntityID: "home", PeriodID: "game", BetTypeID: "ml", SideID: "home", FairOdds: "-110"},
		},
	}
}

func newRunner(f Fetcher, store normalize.Store, pub Publisher) *Runner {
	cat := normalize.NewCatalog([]model.MarketType{{ID: 1, MarketKey: "moneyline"}})
	return &Runner{
		Log:        zap.NewNop(),
		Fetcher:    f,
		Normalizer: normalize.New(store, cat, zap.NewNop()),
		Publisher:  pub,
	}
}

func TestRunOncePublishesRefreshedGames(t *testing.T) {
	store := &countingStore{}
	pub := &recordingPublisher{}
	r := newRunner(stubFetcher{events: []feed.Event{event("A"), event("B")}}, store, pub)
	var results []string
	r.OnRun = func(res string) { results = append(results, res) }

	st, err := r.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, st.EventsProcessed)
	assert.Equal(t, int64(1), st.GamesPromoted)
	assert.Len(t, pub.games, 2)
	assert.Equal(t, []string{"ok"}, results)
}

func TestRunOnceFetchFailureProcessesNothing(t *testing.T) {
	store := &countingStore{}
	r := newRunner(stubFetcher{err: errors.New("feed down")}, store, nil)
	var results []string
	r.OnRun = func(res string) { results = append(results, res) }

	st, err := r.RunOnce(context.Background())
	require.Error(t, err)

	assert.Zero(t, st.EventsProcessed)
	assert.Zero(t, store.upserts)
	// a promoção por horário independe do feed
	assert.Equal(t, 1, store.promoted)
	assert.Equal(t, []string{"fetch_error"}, results)
}
