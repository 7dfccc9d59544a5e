package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

var ErrGameNotFound = errors.New("game not found")

type ReadRepo struct {
	DB *sql.DB
}

const gameColumns = `id, external_id, home_team, away_team, start_time, status, home_score, away_score`

// ListGames lista os jogos; status vazio retorna os que ainda aceitam ou vão aceitar apostas
func (r *ReadRepo) ListGames(ctx context.Context, status string) ([]model.Game, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE status IN ('scheduled','live') ORDER BY start_time, id`
	args := []any{}
	if status != "" {
		q = `SELECT ` + gameColumns + ` FROM games WHERE status = $1 ORDER BY start_time, id`
		args = append(args, status)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *ReadRepo) GetGame(ctx context.Context, id string) (model.Game, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Game{}, ErrGameNotFound
	}
	g, err := scanGame(r.DB.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrGameNotFound
	}
	return g, err
}

// ListActiveBets retorna as seleções apostáveis de um jogo, agrupadas por mercado
func (r *ReadRepo) ListActiveBets(ctx context.Context, gameID string) ([]model.AvailableBet, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT ab.id, ab.game_id, ab.market_type_id, mt.market_key, ab.selection, ab.side, ab.odds, ab.line
		FROM available_bets ab
		JOIN market_types mt ON mt.id = ab.market_type_id
		WHERE ab.game_id = $1 AND ab.active = true
		ORDER BY mt.id, ab.selection`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AvailableBet
	for rows.Next() {
		var (
			b    model.AvailableBet
			odds string
			line sql.NullFloat64
		)
		if err := rows.Scan(&b.ID, &b.GameID, &b.MarketTypeID, &b.MarketKey, &b.Selection, &b.Side, &odds, &line); err != nil {
			return nil, err
		}
		if b.Odds, err = decimal.NewFromString(odds); err != nil {
			return nil, err
		}
		if line.Valid {
			v := line.Float64
			b.Line = &v
		}
		b.Active = true
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *ReadRepo) ListMarketTypes(ctx context.Context) ([]model.MarketType, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, market_key, name FROM market_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MarketType
	for rows.Next() {
		var m model.MarketType
		if err := rows.Scan(&m.ID, &m.MarketKey, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(s rowScanner) (model.Game, error) {
	var (
		g          model.Game
		status     string
		home, away sql.NullInt64
	)
	if err := s.Scan(&g.ID, &g.ExternalID, &g.HomeTeam, &g.AwayTeam, &g.StartTime, &status, &home, &away); err != nil {
		return g, err
	}
	g.Status = model.GameStatus(status)
	if home.Valid {
		v := int(home.Int64)
		g.HomeScore = &v
	}
	if away.Valid {
		v := int(away.Int64)
		g.AwayScore = &v
	}
	return g, nil
}
