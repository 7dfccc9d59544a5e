package events

import "time"

// Evento publicado no tópico "odds_updates" quando o catálogo de um jogo é regravado
// ou o jogo deixa de aceitar apostas
type OddsUpdate struct {
	GameID     string    `json:"game_id"`
	ExternalID string    `json:"external_id,omitempty"`
	HomeTeam   string    `json:"home_team,omitempty"`
	AwayTeam   string    `json:"away_team,omitempty"`
	Status     string    `json:"status"`      // scheduled | live | completed | cancelled
	ActiveBets int       `json:"active_bets"` // seleções apostáveis após a regravação
	UpdatedAt  time.Time `json:"updated_at"`
	Source     string    `json:"source"` // "odds-ingest-service"
}
