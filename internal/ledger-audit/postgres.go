package audit

import (
	"context"

	"github.com/radieske/fantasy-sportsbook/internal/shared/db"
	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
)

// PostgresReconciler lê profiles + transactions direto do banco
type PostgresReconciler struct {
	DB db.Execer
}

func (p PostgresReconciler) Reconcile(ctx context.Context, userID string) (ledger.Reconciliation, error) {
	return ledger.Reconcile(ctx, p.DB, userID)
}
