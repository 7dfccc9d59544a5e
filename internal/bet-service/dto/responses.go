package dto

import (
	"time"

	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

type PlaceBetResponse struct {
	BetID                string `json:"bet_id"`
	Status               string `json:"status"` // pending
	CombinedOdds         string `json:"combined_odds"`
	PotentialPayoutCents int64  `json:"potential_payout_cents"`
	NewBalanceCents      int64  `json:"new_balance_cents"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type SelectionResponse struct {
	AvailableBetID  string   `json:"available_bet_id"`
	GameID          string   `json:"game_id"`
	Market          string   `json:"market"`
	Selection       string   `json:"selection"`
	Side            string   `json:"side"`
	Line            *float64 `json:"line,omitempty"`
	OddsAtPlacement string   `json:"odds_at_placement"`
}

type BetResponse struct {
	BetID                string              `json:"bet_id"`
	BetType              string              `json:"bet_type"`
	Status               string              `json:"status"`
	StakeCents           int64               `json:"stake_cents"`
	CombinedOdds         string              `json:"combined_odds"`
	PotentialPayoutCents int64               `json:"potential_payout_cents"`
	CreatedAt            time.Time           `json:"created_at"`
	SettledAt            *time.Time          `json:"settled_at,omitempty"`
	Selections           []SelectionResponse `json:"selections"`
}

func FromBet(b model.UserBet) BetResponse {
	out := BetResponse{
		BetID:                b.ID,
		BetType:              string(b.BetType),
		Status:               string(b.Status),
		StakeCents:           b.StakeCents,
		CombinedOdds:         b.CombinedOdds.StringFixed(2),
		PotentialPayoutCents: b.PotentialPayoutCents,
		CreatedAt:            b.CreatedAt,
		SettledAt:            b.SettledAt,
		Selections:           make([]SelectionResponse, 0, len(b.Selections)),
	}
	for _, s := range b.Selections {
		out.Selections = append(out.Selections, SelectionResponse{
			AvailableBetID:  s.AvailableBetID,
			GameID:          s.GameID,
			Market:          s.MarketKey,
			Selection:       s.Selection,
			Side:            s.Side,
			Line:            s.Line,
			OddsAtPlacement: s.OddsAtPlacement.StringFixed(2),
		})
	}
	return out
}
