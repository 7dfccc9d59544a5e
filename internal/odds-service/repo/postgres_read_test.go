package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActiveBetsParsesOddsAndLine(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM available_bets ab").
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "game_id", "market_type_id", "market_key", "selection", "side", "odds", "line"}).
			AddRow("b1", "g1", int64(1), "moneyline", "Chiefs", "home", "1.91", nil).
			AddRow("b2", "g1", int64(3), "total", "Over 47.5", "over", "1.87", 47.5))

	r := &ReadRepo{DB: db}
	bets, err := r.ListActiveBets(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, bets, 2)
	assert.Equal(t, "1.91", bets[0].Odds.StringFixed(2))
	assert.Nil(t, bets[0].Line)
	require.NotNil(t, bets[1].Line)
	assert.Equal(t, 47.5, *bets[1].Line)
	assert.True(t, bets[1].Active)
}

func TestGetGameRejectsMalformedID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = (&ReadRepo{DB: db}).GetGame(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGetGameScansFinalScore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := "4b0f6f1e-0c1a-4c8e-9b7e-2a7e5b1f0d11"
	mock.ExpectQuery("FROM games WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "home_team", "away_team", "start_time", "status", "home_score", "away_score"}).
			AddRow(id, "ev1", "Chiefs", "Bills", time.Now(), "completed", int64(27), int64(20)))

	g, err := (&ReadRepo{DB: db}).GetGame(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, g.HasFinalScore())
	assert.Equal(t, 27, *g.HomeScore)
}
