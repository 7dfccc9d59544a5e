package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
)

// Postgres expõe o ledger para leitura; saldo só muda pela colocação e pela liquidação
type Postgres struct {
	db              *sql.DB
	startingBalance int64
}

func NewPostgres(db *sql.DB, startingBalanceCents int64) *Postgres {
	return &Postgres{db: db, startingBalance: startingBalanceCents}
}

// GetOrCreateWallet devolve o saldo, criando o perfil com o saldo inicial se necessário
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (int64, error) {
	return ledger.EnsureProfile(ctx, p.db, userID, p.startingBalance)
}

func (p *Postgres) Transactions(ctx context.Context, userID string, limit int) ([]ledger.Entry, error) {
	return ledger.List(ctx, p.db, userID, limit)
}

func (p *Postgres) Reconcile(ctx context.Context, userID string) (ledger.Reconciliation, error) {
	return ledger.Reconcile(ctx, p.db, userID)
}
