package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsPerService(t *testing.T) {
	t.Setenv("SERVICE_NAME", "settlement-worker")
	t.Setenv("SETTLEMENT_INTERVAL", "90s")
	t.Setenv("STARTING_BALANCE_CENTS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8084", cfg.HTTPPort)
	assert.Equal(t, "9100", cfg.MetricsPort)
	assert.Equal(t, 90*time.Second, cfg.SettlementInterval)
	assert.Equal(t, int64(100000), cfg.StartingBalanceCents)
	assert.Equal(t, "void_bet", cfg.SettlementVoidPolicy)
	assert.Equal(t, "bet_settled", cfg.TopicBetSettled)
}

func TestLoadIngestHasNoPublicPort(t *testing.T) {
	t.Setenv("SERVICE_NAME", "odds-ingest-service")
	t.Setenv("FEED_PAGE_LIMIT", "25")

	cfg := Load()

	assert.Empty(t, cfg.HTTPPort)
	assert.Equal(t, "9096", cfg.MetricsPort)
	assert.Equal(t, 25, cfg.FeedPageLimit)
}
