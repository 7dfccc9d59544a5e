package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/radieske/fantasy-sportsbook/internal/settlement"
	"github.com/radieske/fantasy-sportsbook/internal/shared/db"
	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

// Postgres implementa settlement.Store
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const gameColumns = `g.id, g.external_id, g.home_team, g.away_team, g.start_time, g.status, g.home_score, g.away_score`

// gameRow recebe as colunas de gameColumns
type gameRow struct {
	g          model.Game
	status     string
	home, away sql.NullInt64
}

func (r *gameRow) dest() []any {
	return []any{&r.g.ID, &r.g.ExternalID, &r.g.HomeTeam, &r.g.AwayTeam, &r.g.StartTime, &r.status, &r.home, &r.away}
}

func (r *gameRow) game() model.Game {
	g := r.g
	g.Status = model.GameStatus(r.status)
	if r.home.Valid {
		v := int(r.home.Int64)
		g.HomeScore = &v
	}
	if r.away.Valid {
		v := int(r.away.Int64)
		g.AwayScore = &v
	}
	return g
}

// ListSettleableGames: jogos com ao menos uma perna pendente que estão encerrados
// com os dois placares ou foram cancelados
func (p *Postgres) ListSettleableGames(ctx context.Context) ([]model.Game, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games g
		WHERE ((g.status = 'completed' AND g.home_score IS NOT NULL AND g.away_score IS NOT NULL)
		       OR g.status = 'cancelled')
		  AND EXISTS (
		    SELECT 1
		    FROM available_bets ab
		    JOIN user_bet_selections s ON s.available_bet_id = ab.id
		    JOIN user_bets ub ON ub.id = s.user_bet_id
		    WHERE ab.game_id = g.id AND ub.status = 'pending'
		  )
		ORDER BY g.start_time, g.id`)
	if err != nil {
		return nil, fmt.Errorf("list settleable games: %w", err)
	}
	defer rows.Close()

	out := make([]model.Game, 0)
	for rows.Next() {
		var r gameRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		out = append(out, r.game())
	}
	return out, rows.Err()
}

// ListPendingBets carrega as apostas pending com perna no jogo, todas as pernas e
// o estado atual de cada jogo envolvido
func (p *Postgres) ListPendingBets(ctx context.Context, gameID string) ([]settlement.PendingBet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT ub.id, ub.user_id, ub.stake_cents, ub.combined_odds, ub.potential_payout_cents, ub.bet_type, ub.status, ub.created_at
		FROM user_bets ub
		WHERE ub.status = 'pending'
		  AND EXISTS (
		    SELECT 1
		    FROM user_bet_selections s
		    JOIN available_bets ab ON ab.id = s.available_bet_id
		    WHERE s.user_bet_id = ub.id AND ab.game_id = $1
		  )
		ORDER BY ub.created_at, ub.id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list pending bets: %w", err)
	}
	defer rows.Close()

	var (
		out   []settlement.PendingBet
		ids   []string
		index = map[string]int{}
	)
	for rows.Next() {
		var b model.UserBet
		var betType, status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.StakeCents, &b.CombinedOdds, &b.PotentialPayoutCents,
			&betType, &status, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.BetType = model.BetType(betType)
		b.Status = model.BetStatus(status)
		index[b.ID] = len(out)
		ids = append(ids, b.ID)
		out = append(out, settlement.PendingBet{Bet: b, Games: map[string]model.Game{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	legs, err := p.db.QueryContext(ctx, `
		SELECT s.id, s.user_bet_id, s.available_bet_id, s.odds_at_placement, mt.market_key, ab.selection, ab.side, ab.line,
		       `+gameColumns+`
		FROM user_bet_selections s
		JOIN available_bets ab ON ab.id = s.available_bet_id
		JOIN market_types mt ON mt.id = ab.market_type_id
		JOIN games g ON g.id = ab.game_id
		WHERE s.user_bet_id = ANY($1::uuid[])
		ORDER BY s.user_bet_id, s.id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list legs: %w", err)
	}
	defer legs.Close()

	for legs.Next() {
		var (
			s    model.UserBetSelection
			r    gameRow
			line sql.NullFloat64
		)
		dest := append([]any{&s.ID, &s.UserBetID, &s.AvailableBetID, &s.OddsAtPlacement,
			&s.MarketKey, &s.Selection, &s.Side, &line}, r.dest()...)
		if err := legs.Scan(dest...); err != nil {
			return nil, err
		}
		if line.Valid {
			s.Line = &line.Float64
		}
		g := r.game()
		s.GameID = g.ID
		pb := &out[index[s.UserBetID]]
		pb.Bet.Selections = append(pb.Bet.Selections, s)
		pb.Games[g.ID] = g
	}
	return out, legs.Err()
}

// SettleBet faz a transição pending → terminal (condicional, exatamente uma vez),
// credita o saldo quando há crédito e grava o lançamento no ledger
func (p *Postgres) SettleBet(ctx context.Context, s settlement.Settlement) (bool, error) {
	applied := false
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE user_bets SET status = $1, settled_at = $2
			WHERE id = $3 AND status = 'pending'`, string(s.Status), s.SettledAt, s.BetID)
		if err != nil {
			return fmt.Errorf("update bet status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil // já liquidada por outra execução
		}

		if s.CreditCents > 0 {
			if _, err := ledger.Credit(ctx, tx, s.UserID, s.CreditCents); err != nil {
				return err
			}
		}
		betID := s.BetID
		if _, err := ledger.Record(ctx, tx, ledger.Entry{
			UserID:      s.UserID,
			AmountCents: s.CreditCents,
			Type:        s.TxType,
			UserBetID:   &betID,
		}); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
