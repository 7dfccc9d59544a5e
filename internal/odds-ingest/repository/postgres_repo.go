package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/radieske/fantasy-sportsbook/internal/shared/db"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

// PostgresRepo persiste jogos e o catálogo de apostas disponíveis
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// LoadMarketTypes lê o catálogo estático de mercados
func (r *PostgresRepo) LoadMarketTypes(ctx context.Context) ([]model.MarketType, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, market_key, name FROM market_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query market types: %w", err)
	}
	defer rows.Close()

	var out []model.MarketType
	for rows.Next() {
		var mt model.MarketType
		if err := rows.Scan(&mt.ID, &mt.MarketKey, &mt.Name); err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

// UpsertGame insere ou atualiza o jogo pelo external_id.
// Status só avança (completed/cancelled são terminais) e placar nunca volta a NULL.
func (r *PostgresRepo) UpsertGame(ctx context.Context, g model.Game) (string, error) {
	const q = `
		INSERT INTO games
		  (external_id, home_team, away_team, start_time, status, home_score, away_score, raw_result, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,now())
		ON CONFLICT (external_id) DO UPDATE SET
		  home_team  = EXCLUDED.home_team,
		  away_team  = EXCLUDED.away_team,
		  start_time = CASE WHEN games.status = 'scheduled' THEN EXCLUDED.start_time ELSE games.start_time END,
		  status     = CASE
		                 WHEN games.status IN ('completed','cancelled') THEN games.status
		                 WHEN games.status = 'live' AND EXCLUDED.status = 'scheduled' THEN games.status
		                 ELSE EXCLUDED.status
		               END,
		  home_score = COALESCE(EXCLUDED.home_score, games.home_score),
		  away_score = COALESCE(EXCLUDED.away_score, games.away_score),
		  raw_result = COALESCE(EXCLUDED.raw_result, games.raw_result),
		  updated_at = now()
		RETURNING id
	`
	var raw any
	if len(g.RawResult) > 0 {
		raw = string(g.RawResult)
	}

	var id string
	err := r.DB.QueryRowContext(ctx, q,
		g.ExternalID, g.HomeTeam, g.AwayTeam, g.StartTime, string(g.Status),
		nullInt(g.HomeScore), nullInt(g.AwayScore), raw,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert game %s: %w", g.ExternalID, err)
	}
	return id, nil
}

// ReplaceAvailableBets desativa as apostas ativas do jogo e grava o novo lote via COPY,
// tudo na mesma transação: nunca existe janela sem cotação nem com duplicatas.
func (r *PostgresRepo) ReplaceAvailableBets(ctx context.Context, gameID string, bets []model.AvailableBet) (int64, error) {
	var deactivated int64
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE available_bets SET active = false WHERE game_id = $1 AND active = true`, gameID)
		if err != nil {
			return fmt.Errorf("deactivate bets: %w", err)
		}
		deactivated, _ = res.RowsAffected()

		if len(bets) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("available_bets",
			"game_id", "market_type_id", "selection", "side", "odds", "line", "active"))
		if err != nil {
			return fmt.Errorf("prepare copy: %w", err)
		}
		for _, b := range bets {
			if _, err := stmt.ExecContext(ctx,
				gameID, b.MarketTypeID, b.Selection, b.Side, b.Odds.StringFixed(2), nullFloat(b.Line), b.Active,
			); err != nil {
				_ = stmt.Close()
				return fmt.Errorf("copy bet %q: %w", b.Selection, err)
			}
		}
		// Exec sem argumentos descarrega o buffer do COPY
		if _, err := stmt.ExecContext(ctx); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("flush copy: %w", err)
		}
		return stmt.Close()
	})
	if err != nil {
		return 0, err
	}
	return deactivated, nil
}

// PromoteStartedGames marca como live os jogos agendados que já começaram e fecha as
// apostas ativas de todo jogo que não está mais agendado
func (r *PostgresRepo) PromoteStartedGames(ctx context.Context, now time.Time) (int64, int64, error) {
	var promoted, closed int64
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE games SET status = 'live', updated_at = now()
			WHERE status = 'scheduled' AND start_time <= $1`, now)
		if err != nil {
			return fmt.Errorf("promote games: %w", err)
		}
		promoted, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, `
			UPDATE available_bets ab SET active = false
			FROM games g
			WHERE ab.game_id = g.id AND ab.active = true AND g.status <> 'scheduled'`)
		if err != nil {
			return fmt.Errorf("close bets: %w", err)
		}
		closed, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return promoted, closed, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
