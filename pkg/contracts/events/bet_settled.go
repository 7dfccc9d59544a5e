package events

import "time"

// Evento publicado no tópico "bet_settled" após a liquidação de uma aposta
type BetSettled struct {
	BetID       string    `json:"bet_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"` // won | lost | void
	CreditCents int64     `json:"credit_cents"`
	VoidPolicy  string    `json:"void_policy"`
	SettledAt   time.Time `json:"settled_at"`
}
