package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/fantasy-sportsbook/pkg/contracts/events"
)

func TestInsertHistoryIgnoresRedelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	ev := events.OddsUpdate{GameID: "g1", Status: "scheduled", ActiveBets: 9, Source: "odds-ingest-service", UpdatedAt: at}

	mock.ExpectExec("INSERT INTO odds_history").
		WithArgs("g1", "scheduled", int64(9), "odds-ingest-service", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("ON CONFLICT \\(game_id, updated_at\\) DO NOTHING").
		WithArgs("g1", "scheduled", int64(9), "odds-ingest-service", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewPostgresRepo(db)
	require.NoError(t, r.InsertHistory(context.Background(), ev))
	require.NoError(t, r.InsertHistory(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}
