package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/shared/auth"
	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
	"github.com/radieske/fantasy-sportsbook/internal/wallet-service/dto"
)

type fakeRepo struct {
	balances map[string]int64
	entries  map[string][]ledger.Entry
}

func (f *fakeRepo) GetOrCreateWallet(_ context.Context, userID string) (int64, error) {
	if _, ok := f.balances[userID]; !ok {
		f.balances[userID] = 100000
	}
	return f.balances[userID], nil
}

func (f *fakeRepo) Transactions(_ context.Context, userID string, _ int) ([]ledger.Entry, error) {
	return f.entries[userID], nil
}

func (f *fakeRepo) Reconcile(_ context.Context, userID string) (ledger.Reconciliation, error) {
	bal, ok := f.balances[userID]
	if !ok {
		return ledger.Reconciliation{}, ledger.ErrProfileNotFound
	}
	var sum int64
	for _, e := range f.entries[userID] {
		sum += e.AmountCents
	}
	return ledger.Reconciliation{
		UserID: userID, BalanceCents: bal, InitialBalanceCents: 100000, LedgerSumCents: sum,
		Consistent: bal-100000 == sum,
	}, nil
}

func get(t *testing.T, h http.Handler, path, user string) *httptest.ResponseRecorder {
	t.Helper()
	v := auth.NewVerifier("s3cret")
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		tok, err := v.Sign(user, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newHandler(repo Repo) http.Handler {
	return NewServer(zap.NewNop(), repo, auth.NewVerifier("s3cret")).Router()
}

func TestGetWalletCreatesProfile(t *testing.T) {
	repo := &fakeRepo{balances: map[string]int64{}, entries: map[string][]ledger.Entry{}}
	rec := get(t, newHandler(repo), "/wallet", "u1")

	require.Equal(t, http.StatusOK, rec.Code)
	var body dto.WalletResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "u1", body.UserID)
	assert.Equal(t, int64(100000), body.BalanceCents)
}

func TestReconcileReportsConservation(t *testing.T) {
	repo := &fakeRepo{
		balances: map[string]int64{"u1": 100910},
		entries: map[string][]ledger.Entry{"u1": {
			{AmountCents: -1000, Type: ledger.TxBetPlaced},
			{AmountCents: 1910, Type: ledger.TxBetWon},
		}},
	}
	rec := get(t, newHandler(repo), "/wallet/reconcile", "u1")

	require.Equal(t, http.StatusOK, rec.Code)
	var body ledger.Reconciliation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Consistent)
	assert.Equal(t, int64(910), body.LedgerSumCents)

	rec = get(t, newHandler(repo), "/wallet/reconcile", "nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWalletRequiresToken(t *testing.T) {
	rec := get(t, newHandler(&fakeRepo{}), "/wallet/transactions", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
