package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// GameStatus segue scheduled → live → completed, ou cancelled
type GameStatus string

const (
	GameScheduled GameStatus = "scheduled"
	GameLive      GameStatus = "live"
	GameCompleted GameStatus = "completed"
	GameCancelled GameStatus = "cancelled"
)

// Rank ordena os status para que a atualização nunca ande para trás
func (s GameStatus) Rank() int {
	switch s {
	case GameScheduled:
		return 0
	case GameLive:
		return 1
	case GameCompleted, GameCancelled:
		return 2
	default:
		return -1
	}
}

type BetType string

const (
	BetSingle BetType = "single"
	BetParlay BetType = "parlay"
)

type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
	BetVoid    BetStatus = "void"
)

// Game é o modelo persistido na tabela games.
type Game struct {
	ID         string
	ExternalID string
	HomeTeam   string
	AwayTeam   string
	StartTime  time.Time
	Status     GameStatus
	HomeScore  *int
	AwayScore  *int
	RawResult  json.RawMessage
	UpdatedAt  time.Time
}

// HasFinalScore indica se o jogo pode ser liquidado
func (g Game) HasFinalScore() bool {
	return g.Status == GameCompleted && g.HomeScore != nil && g.AwayScore != nil
}

// OpenForBetting: agendado e com início estritamente no futuro
func (g Game) OpenForBetting(now time.Time) bool {
	return g.Status == GameScheduled && g.StartTime.After(now)
}

// MarketType é o catálogo estático de mercados (tabela market_types).
type MarketType struct {
	ID        int64
	MarketKey string
	Name      string
}

// AvailableBet é uma seleção precificada e apostável.
type AvailableBet struct {
	ID           string
	GameID       string
	MarketTypeID int64
	MarketKey    string
	Selection    string
	Side         string // home | away | over | under | yes | no
	Odds         decimal.Decimal
	Line         *float64
	Active       bool
	CreatedAt    time.Time
}

// UserBet é uma aposta (single ou parlay).
type UserBet struct {
	ID                   string
	UserID               string
	StakeCents           int64
	CombinedOdds         decimal.Decimal
	PotentialPayoutCents int64
	BetType              BetType
	Status               BetStatus
	CreatedAt            time.Time
	SettledAt            *time.Time
	Selections           []UserBetSelection
}

// UserBetSelection é uma perna da aposta, com a odd congelada no momento da aposta.
type UserBetSelection struct {
	ID              string
	UserBetID       string
	AvailableBetID  string
	OddsAtPlacement decimal.Decimal

	// Campos desnormalizados para histórico e liquidação
	GameID    string
	MarketKey string
	Selection string
	Side      string
	Line      *float64
}
