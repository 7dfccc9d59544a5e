package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/fantasy-sportsbook/internal/settlement"
	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

var settledAt = time.Date(2026, 9, 11, 3, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewPostgres(conn), mock
}

func TestSettleBetWonCreditsAndRecords(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_bets SET status = $1, settled_at = $2")).
		WithArgs("won", settledAt, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE profiles SET balance_cents = balance_cents + $1")).
		WithArgs(int64(1910), "u1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(100910)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(sqlmock.AnyArg(), "u1", int64(1910), "bet_won", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := repo.SettleBet(context.Background(), settlement.Settlement{
		BetID: "b1", UserID: "u1", Status: model.BetWon, CreditCents: 1910, TxType: ledger.TxBetWon, SettledAt: settledAt,
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleBetLostRecordsZeroWithoutCredit(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_bets SET status = $1")).
		WithArgs("lost", settledAt, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(sqlmock.AnyArg(), "u1", int64(0), "bet_lost", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := repo.SettleBet(context.Background(), settlement.Settlement{
		BetID: "b1", UserID: "u1", Status: model.BetLost, TxType: ledger.TxBetLost, SettledAt: settledAt,
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleBetAlreadySettledIsNoop(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $3 AND status = 'pending'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := repo.SettleBet(context.Background(), settlement.Settlement{
		BetID: "b1", UserID: "u1", Status: model.BetVoid, CreditCents: 500, TxType: ledger.TxBetVoid, SettledAt: settledAt,
	})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPendingBetsLoadsLegsAndGames(t *testing.T) {
	repo, mock := newMock(t)
	created := settledAt.Add(-48 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_bets ub")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "stake_cents", "combined_odds", "potential_payout_cents", "bet_type", "status", "created_at"}).
			AddRow("b1", "u1", int64(500), "3.0000", int64(1500), "parlay", "pending", created))
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_bet_selections s")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_bet_id", "available_bet_id", "odds_at_placement", "market_key", "selection", "side", "line",
			"id", "external_id", "home_team", "away_team", "start_time", "status", "home_score", "away_score",
		}).
			AddRow("s1", "b1", "a1", "2.00", "moneyline", "Home", "home", nil, "g1", "E1", "Home", "Away", created, "completed", int64(27), int64(24)).
			AddRow("s2", "b1", "a2", "1.50", "moneyline", "Other", "home", nil, "g2", "E2", "Other", "Team", created, "live", nil, nil))

	bets, err := repo.ListPendingBets(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, bets, 1)

	pb := bets[0]
	assert.Equal(t, model.BetParlay, pb.Bet.BetType)
	require.Len(t, pb.Bet.Selections, 2)
	assert.Equal(t, "g2", pb.Bet.Selections[1].GameID)
	assert.True(t, pb.Games["g1"].HasFinalScore())
	assert.Nil(t, pb.Games["g2"].HomeScore)
	assert.False(t, settlement.Final(pb.Games["g2"]))
}
