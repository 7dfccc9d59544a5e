package ledger

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDebitIsConditional(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE profiles SET balance_cents = balance_cents - $1")).
		WithArgs(int64(1000), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(9000)))

	bal, err := Debit(context.Background(), db, "user-1", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), bal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitInsufficientBalance(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $2 AND balance_cents >= $1")).
		WithArgs(int64(5000), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}))

	_, err := Debit(context.Background(), db, "user-1", 5000)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditMissingProfile(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE profiles SET balance_cents = balance_cents + $1")).
		WithArgs(int64(1910), "ghost").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}))

	_, err := Credit(context.Background(), db, "ghost", 1910)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestEnsureProfileCreatesWithStartingBalance(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs("user-1", int64(100000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance_cents FROM profiles")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(100000)))

	bal, err := EnsureProfile(context.Background(), db, "user-1", 100000)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), bal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordWritesSignedAmount(t *testing.T) {
	db, mock := newMock(t)
	betID := "bet-1"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(sqlmock.AnyArg(), "user-1", int64(-1000), "bet_placed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := Record(context.Background(), db, Entry{UserID: "user-1", AmountCents: -1000, Type: TxBetPlaced, UserBetID: &betID})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcile(t *testing.T) {
	db, mock := newMock(t)

	// saldo inicial 100.00, apostou 10.00 e ganhou 19.10
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles p")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents", "initial_balance_cents", "sum"}).
			AddRow(int64(10910), int64(10000), int64(910)))

	r, err := Reconcile(context.Background(), db, "user-1")
	require.NoError(t, err)
	assert.True(t, r.Consistent)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles p")).
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents", "initial_balance_cents", "sum"}).
			AddRow(int64(9000), int64(10000), int64(0)))

	r, err = Reconcile(context.Background(), db, "user-2")
	require.NoError(t, err)
	assert.False(t, r.Consistent)
}
