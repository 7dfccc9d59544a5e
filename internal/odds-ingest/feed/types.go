package feed

import (
	"encoding/json"
	"time"
)

// Response é o envelope paginado do endpoint /events do fornecedor
type Response struct {
	Success    bool    `json:"success"`
	Data       []Event `json:"data"`
	NextCursor string  `json:"nextCursor,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Event representa um evento esportivo com resultados e linhas de odds brutas
type Event struct {
	EventID  string            `json:"eventID"`
	LeagueID string            `json:"leagueID"`
	Teams    Teams             `json:"teams"`
	Status   Status            `json:"status"`
	Results  json.RawMessage   `json:"results,omitempty"` // results[period][entity][stat]
	Players  map[string]Player `json:"players,omitempty"`
	Odds     map[string]Odd    `json:"odds,omitempty"`
}

type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

type Team struct {
	TeamID string    `json:"teamID"`
	Names  TeamNames `json:"names"`
}

type TeamNames struct {
	Long   string `json:"long"`
	Medium string `json:"medium"`
	Short  string `json:"short"`
}

// Name devolve o nome mais descritivo disponível
func (t Team) Name() string {
	for _, n := range []string{t.Names.Long, t.Names.Medium, t.Names.Short} {
		if n != "" {
			return n
		}
	}
	return ""
}

// Status são as flags de ciclo de vida publicadas pelo fornecedor
type Status struct {
	StartsAt  time.Time `json:"startsAt"`
	Started   bool      `json:"started"`
	Live      bool      `json:"live"`
	Completed bool      `json:"completed"`
	Ended     bool      `json:"ended"`
	Cancelled bool      `json:"cancelled"`
}

type Player struct {
	PlayerID  string `json:"playerID"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	TeamID    string `json:"teamID"`
}

// Odd é uma linha crua do mapa de odds. Preços vêm em formato americano como texto.
type Odd struct {
	OddID         string `json:"oddID"`
	StatID        string `json:"statID"`
	StatEntityID  string `json:"statEntityID"`
	PeriodID      string `json:"periodID"`
	BetTypeID     string `json:"betTypeID"`
	SideID        string `json:"sideID"`
	PlayerID      string `json:"playerID,omitempty"`
	FairOdds      string `json:"fairOdds,omitempty"`
	BookOdds      string `json:"bookOdds,omitempty"`
	FairOverUnder string `json:"fairOverUnder,omitempty"`
	BookOverUnder string `json:"bookOverUnder,omitempty"`
	FairSpread    string `json:"fairSpread,omitempty"`
	BookSpread    string `json:"bookSpread,omitempty"`
}

// Price prefere o preço justo (consenso) e cai para o da casa
func (o Odd) Price() string {
	if o.FairOdds != "" {
		return o.FairOdds
	}
	return o.BookOdds
}

func (o Odd) OverUnder() string {
	if o.FairOverUnder != "" {
		return o.FairOverUnder
	}
	return o.BookOverUnder
}

func (o Odd) Spread() string {
	if o.FairSpread != "" {
		return o.FairSpread
	}
	return o.BookSpread
}

// Points lê results[period][entity]["points"]; nil quando ausente ou ilegível
func (e Event) Points(period, entity string) *int {
	if len(e.Results) == 0 {
		return nil
	}
	var res map[string]map[string]map[string]float64
	if err := json.Unmarshal(e.Results, &res); err != nil {
		return nil
	}
	v, ok := res[period][entity]["points"]
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}
