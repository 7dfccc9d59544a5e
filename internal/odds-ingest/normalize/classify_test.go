package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/feed"
)

func odd(stat, entity, period, betType, side string) feed.Odd {
	return feed.Odd{StatID: stat, StatEntityID: entity, PeriodID: period, BetTypeID: betType, SideID: side}
}

func TestClassifyMainMarkets(t *testing.T) {
	cases := []struct {
		name string
		in   feed.Odd
		key  string
		side string
	}{
		{"moneyline home", odd("points", "home", "game", "ml", "home"), "moneyline", "home"},
		{"moneyline side defaults to entity", odd("points", "away", "game", "ml", ""), "moneyline", "away"},
		{"spread", odd("points", "away", "game", "sp", "away"), "spread", "away"},
		{"total", odd("points", "all", "game", "ou", "over"), "total", "over"},
		{"team total", odd("points", "home", "game", "ou", "under"), "team_total_home", "under"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.in, nil)
			assert.Equal(t, KindMainMarket, c.Kind)
			assert.Equal(t, tc.key, c.MarketKey)
			assert.Equal(t, tc.side, c.Side)
			assert.Empty(t, c.Reason)
		})
	}
}

func TestClassifyPeriodProps(t *testing.T) {
	c := Classify(odd("points", "home", "1h", "ml", "home"), nil)
	assert.Equal(t, KindPeriodProp, c.Kind)
	assert.Equal(t, "1h_moneyline", c.MarketKey)

	c = Classify(odd("points", "all", "1q", "ou", "over"), nil)
	assert.Equal(t, "1q_total", c.MarketKey)

	c = Classify(odd("touchdowns", "all", "game", "ou", "over"), nil)
	assert.Equal(t, KindPeriodProp, c.Kind)
	assert.Equal(t, "game_touchdowns_ou_all", c.MarketKey)
}

func TestClassifyPlayerProps(t *testing.T) {
	roster := map[string]feed.Player{
		"PATRICK_MAHOMES_1_NFL": {PlayerID: "PATRICK_MAHOMES_1_NFL", Name: "Patrick Mahomes"},
	}

	in := odd("passing_yards", "PATRICK_MAHOMES_1_NFL", "game", "ou", "over")
	in.PlayerID = "PATRICK_MAHOMES_1_NFL"
	c := Classify(in, roster)
	assert.Equal(t, KindPlayerProp, c.Kind)
	assert.Equal(t, "player_passing_yards_ou", c.MarketKey)
	assert.Equal(t, "Patrick Mahomes", c.PlayerName)

	// sem elenco, o nome vem do próprio id
	c = Classify(odd("touchdowns", "TRAVIS_KELCE_1_NFL", "1h", "yn", "yes"), nil)
	assert.Equal(t, KindPlayerProp, c.Kind)
	assert.Equal(t, "player_1h_touchdowns_yn", c.MarketKey)
	assert.Equal(t, "Travis Kelce", c.PlayerName)
}

func TestClassifyUnmapped(t *testing.T) {
	cases := []struct {
		name   string
		in     feed.Odd
		reason string
	}{
		{"missing stat", odd("", "home", "game", "ml", "home"), "missing_fields"},
		{"unknown bet type", odd("points", "home", "game", "eo", "even"), "unsupported_bet_type"},
		{"bad over/under side", odd("points", "all", "game", "ou", "home"), "invalid_side"},
		{"moneyline on all", odd("points", "all", "game", "ml", "home"), "unsupported_main_market"},
		{"player moneyline", odd("points", "JOSH_ALLEN_1_NFL", "game", "ml", "home"), "unsupported_player_market"},
		{"unresolvable player", odd("points", "X1", "game", "ou", "over"), "unknown_player"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.in, nil)
			assert.Equal(t, KindUnmapped, c.Kind)
			assert.Empty(t, c.MarketKey)
			assert.Equal(t, tc.reason, c.Reason)
		})
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := Classify(odd(" Points ", "HOME", "Game", "ML", "Home"), nil)
	assert.Equal(t, KindMainMarket, c.Kind)
	assert.Equal(t, "moneyline", c.MarketKey)
}
