package dto

import (
	"time"

	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

// Game representa um jogo na API de leitura
type Game struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	StartTime  time.Time `json:"start_time"`
	Status     string    `json:"status"`
	HomeScore  *int      `json:"home_score,omitempty"`
	AwayScore  *int      `json:"away_score,omitempty"`
}

// AvailableBet é uma seleção ativa; odds em formato decimal com 2 casas
type AvailableBet struct {
	ID        string   `json:"id"`
	GameID    string   `json:"game_id"`
	MarketKey string   `json:"market_key"`
	Selection string   `json:"selection"`
	Side      string   `json:"side"`
	Odds      string   `json:"odds"`
	Line      *float64 `json:"line,omitempty"`
}

type MarketType struct {
	ID        int64  `json:"id"`
	MarketKey string `json:"market_key"`
	Name      string `json:"name"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func FromGame(g model.Game) Game {
	return Game{
		ID:         g.ID,
		ExternalID: g.ExternalID,
		HomeTeam:   g.HomeTeam,
		AwayTeam:   g.AwayTeam,
		StartTime:  g.StartTime,
		Status:     string(g.Status),
		HomeScore:  g.HomeScore,
		AwayScore:  g.AwayScore,
	}
}

func FromAvailableBet(b model.AvailableBet) AvailableBet {
	return AvailableBet{
		ID:        b.ID,
		GameID:    b.GameID,
		MarketKey: b.MarketKey,
		Selection: b.Selection,
		Side:      b.Side,
		Odds:      b.Odds.StringFixed(2),
		Line:      b.Line,
	}
}
