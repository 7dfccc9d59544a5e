package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/fantasy-sportsbook/pkg/contracts/events"
)

// PostgresRepo grava o histórico de atualizações de odds (odds_history)
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// InsertHistory registra uma linha por mensagem de odds_updates
// Reentregas do Kafka são ignoradas pela chave (game_id, updated_at)
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.OddsUpdate) error {
	const q = `
		INSERT INTO odds_history
		  (game_id, status, active_bets, source, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5)
		ON CONFLICT (game_id, updated_at) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, q, e.GameID, e.Status, e.ActiveBets, e.Source, e.UpdatedAt)
	return err
}
