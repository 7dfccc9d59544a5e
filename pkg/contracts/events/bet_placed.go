package events

// Evento publicado no tópico "bet_placed" depois do commit da aposta
type BetPlaced struct {
	BetID                string         `json:"bet_id"`
	UserID               string         `json:"user_id"`
	BetType              string         `json:"bet_type"` // single | parlay
	StakeCents           int64          `json:"stake_cents"`
	CombinedOdds         string         `json:"combined_odds"` // decimal como texto
	PotentialPayoutCents int64          `json:"potential_payout_cents"`
	NewBalanceCents      int64          `json:"new_balance_cents"`
	Legs                 []BetPlacedLeg `json:"legs"`
	TsUnixMs             int64          `json:"ts_unix_ms"`
}

type BetPlacedLeg struct {
	AvailableBetID string `json:"available_bet_id"`
	GameID         string `json:"game_id"`
	Market         string `json:"market"`
	Selection      string `json:"selection"`
	Odds           string `json:"odds"`
}
