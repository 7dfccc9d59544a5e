package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/fantasy-sportsbook/internal/bet-service/placement"
	"github.com/radieske/fantasy-sportsbook/internal/shared/db"
	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

var ErrBetNotFound = errors.New("bet not found")

// Postgres implementa o Store da colocação de apostas e as consultas de histórico
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const legColumns = `
	ab.id, ab.game_id, ab.market_type_id, mt.market_key, ab.selection, ab.side, ab.odds, ab.line, ab.active,
	g.id, g.external_id, g.home_team, g.away_team, g.start_time, g.status`

func scanLeg(sc interface{ Scan(...any) error }) (placement.Leg, error) {
	var (
		l      placement.Leg
		line   sql.NullFloat64
		status string
	)
	err := sc.Scan(
		&l.Bet.ID, &l.Bet.GameID, &l.Bet.MarketTypeID, &l.Bet.MarketKey, &l.Bet.Selection, &l.Bet.Side,
		&l.Bet.Odds, &line, &l.Bet.Active,
		&l.Game.ID, &l.Game.ExternalID, &l.Game.HomeTeam, &l.Game.AwayTeam, &l.Game.StartTime, &status,
	)
	if err != nil {
		return l, err
	}
	if line.Valid {
		l.Bet.Line = &line.Float64
	}
	l.Game.Status = model.GameStatus(status)
	return l, nil
}

func loadLegs(ctx context.Context, ex db.Execer, ids []string, lock bool) (map[string]placement.Leg, error) {
	q := `SELECT` + legColumns + `
		FROM available_bets ab
		JOIN market_types mt ON mt.id = ab.market_type_id
		JOIN games g ON g.id = ab.game_id
		WHERE ab.id = ANY($1::uuid[])`
	if lock {
		q += ` FOR SHARE OF ab, g`
	}
	rows, err := ex.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query selections: %w", err)
	}
	defer rows.Close()

	out := make(map[string]placement.Leg, len(ids))
	for rows.Next() {
		l, err := scanLeg(rows)
		if err != nil {
			return nil, err
		}
		out[l.Bet.ID] = l
	}
	return out, rows.Err()
}

// LoadLegs lê as seleções e seus jogos, sem lock
func (p *Postgres) LoadLegs(ctx context.Context, ids []string) (map[string]placement.Leg, error) {
	return loadLegs(ctx, p.db, ids, false)
}

func (p *Postgres) Balance(ctx context.Context, userID string, startingCents int64) (int64, error) {
	bal, err := ledger.Balance(ctx, p.db, userID)
	if errors.Is(err, ledger.ErrProfileNotFound) {
		return startingCents, nil
	}
	return bal, err
}

// Commit grava a aposta inteira numa transação: perfil (se novo), débito condicional,
// nova checagem das seleções com FOR SHARE, user_bets, user_bet_selections e o
// lançamento bet_placed. Rollback desfaz inclusive o perfil recém-criado.
func (p *Postgres) Commit(ctx context.Context, c placement.Commit) (int64, error) {
	var newBalance int64
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		if err := ledger.OpenProfile(ctx, tx, c.UserID, c.StartingBalanceCents); err != nil {
			return err
		}
		bal, err := ledger.Debit(ctx, tx, c.UserID, c.StakeCents)
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return placement.ErrInsufficientBalance
		}
		if err != nil {
			return err
		}
		newBalance = bal

		ids := make([]string, len(c.Legs))
		for i, l := range c.Legs {
			ids[i] = l.Bet.ID
		}
		current, err := loadLegs(ctx, tx, ids, true)
		if err != nil {
			return err
		}
		for _, id := range ids {
			l, ok := current[id]
			if !ok {
				return fmt.Errorf("%w: %s", placement.ErrNotFound, id)
			}
			if err := placement.CheckLeg(l, c.Now); err != nil {
				return fmt.Errorf("%w: %s", err, id)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_bets (id, user_id, stake_cents, combined_odds, potential_payout_cents, bet_type, status, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,'pending',$7)`,
			c.BetID, c.UserID, c.StakeCents, c.CombinedOdds.StringFixed(4), c.PotentialPayoutCents, string(c.BetType), c.Now,
		); err != nil {
			return fmt.Errorf("insert user_bet: %w", err)
		}

		// odds congeladas: o valor validado antes da transação
		for _, l := range c.Legs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO user_bet_selections (id, user_bet_id, available_bet_id, odds_at_placement)
				VALUES ($1,$2,$3,$4)`,
				uuid.NewString(), c.BetID, l.Bet.ID, l.Bet.Odds.StringFixed(2),
			); err != nil {
				return fmt.Errorf("insert selection: %w", err)
			}
		}

		betID := c.BetID
		if _, err := ledger.Record(ctx, tx, ledger.Entry{
			UserID:      c.UserID,
			AmountCents: -c.StakeCents,
			Type:        ledger.TxBetPlaced,
			UserBetID:   &betID,
		}); err != nil {
			return err
		}
		return nil
	})
	if errors.Is(err, db.ErrCommitFailed) {
		return 0, fmt.Errorf("%w: %v", placement.ErrCommitUnknown, err)
	}
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Compensate remove a aposta (se o commit chegou a persistir) e devolve o stake.
// Sem a aposta no banco não há o que desfazer.
//
// É o único caminho que apaga linhas de transactions: o commit com resultado
// desconhecido pode ter gravado o lançamento bet_placed, e a FK para user_bets
// exige removê-lo antes da aposta.
func (p *Postgres) Compensate(ctx context.Context, betID string) (bool, error) {
	refunded := false
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE user_bet_id = $1`, betID); err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_bet_selections WHERE user_bet_id = $1`, betID); err != nil {
			return fmt.Errorf("delete selections: %w", err)
		}
		var userID string
		var stake int64
		err := tx.QueryRowContext(ctx, `
			DELETE FROM user_bets WHERE id = $1 AND status = 'pending'
			RETURNING user_id, stake_cents`, betID).Scan(&userID, &stake)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete user_bet: %w", err)
		}
		if _, err := ledger.Credit(ctx, tx, userID, stake); err != nil {
			return err
		}
		refunded = true
		return nil
	})
	return refunded, err
}

// ListBets devolve as apostas do usuário (mais recentes primeiro) com as pernas
func (p *Postgres) ListBets(ctx context.Context, userID string, limit int) ([]model.UserBet, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, stake_cents, combined_odds, potential_payout_cents, bet_type, status, created_at, settled_at
		FROM user_bets
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	bets := make([]model.UserBet, 0)
	index := map[string]int{}
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		index[b.ID] = len(bets)
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bets) == 0 {
		return bets, nil
	}

	ids := make([]string, len(bets))
	for i, b := range bets {
		ids[i] = b.ID
	}
	legs, err := p.selections(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range legs {
		i := index[l.UserBetID]
		bets[i].Selections = append(bets[i].Selections, l)
	}
	return bets, nil
}

// GetBet devolve uma aposta do usuário; aposta de outro usuário é tratada como inexistente
func (p *Postgres) GetBet(ctx context.Context, userID, betID string) (model.UserBet, error) {
	if _, err := uuid.Parse(betID); err != nil {
		return model.UserBet{}, ErrBetNotFound
	}
	row := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, stake_cents, combined_odds, potential_payout_cents, bet_type, status, created_at, settled_at
		FROM user_bets
		WHERE id = $1 AND user_id = $2`, betID, userID)
	b, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserBet{}, ErrBetNotFound
	}
	if err != nil {
		return model.UserBet{}, fmt.Errorf("get bet: %w", err)
	}
	b.Selections, err = p.selections(ctx, []string{b.ID})
	if err != nil {
		return model.UserBet{}, err
	}
	return b, nil
}

func scanBet(sc interface{ Scan(...any) error }) (model.UserBet, error) {
	var (
		b       model.UserBet
		betType string
		status  string
		settled sql.NullTime
	)
	if err := sc.Scan(&b.ID, &b.UserID, &b.StakeCents, &b.CombinedOdds, &b.PotentialPayoutCents,
		&betType, &status, &b.CreatedAt, &settled); err != nil {
		return b, err
	}
	b.BetType = model.BetType(betType)
	b.Status = model.BetStatus(status)
	if settled.Valid {
		b.SettledAt = &settled.Time
	}
	return b, nil
}

func (p *Postgres) selections(ctx context.Context, betIDs []string) ([]model.UserBetSelection, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT s.id, s.user_bet_id, s.available_bet_id, s.odds_at_placement,
		       ab.game_id, mt.market_key, ab.selection, ab.side, ab.line
		FROM user_bet_selections s
		JOIN available_bets ab ON ab.id = s.available_bet_id
		JOIN market_types mt ON mt.id = ab.market_type_id
		WHERE s.user_bet_id = ANY($1::uuid[])
		ORDER BY s.user_bet_id, s.id`, pq.Array(betIDs))
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	out := make([]model.UserBetSelection, 0)
	for rows.Next() {
		var s model.UserBetSelection
		var line sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.UserBetID, &s.AvailableBetID, &s.OddsAtPlacement,
			&s.GameID, &s.MarketKey, &s.Selection, &s.Side, &line); err != nil {
			return nil, err
		}
		if line.Valid {
			s.Line = &line.Float64
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
