package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateWalletUsesStartingBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO profiles").
		WithArgs("u1", int64(50000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT balance_cents FROM profiles").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(50000)))

	bal, err := NewPostgres(db, 50000).GetOrCreateWallet(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), bal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileFlagsMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.balance_cents, p.initial_balance_cents").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents", "initial_balance_cents", "sum"}).
			AddRow(int64(99000), int64(100000), int64(-500)))

	rec, err := NewPostgres(db, 100000).Reconcile(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assert.Equal(t, int64(-500), rec.LedgerSumCents)
}
