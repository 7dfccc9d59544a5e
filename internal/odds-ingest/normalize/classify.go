package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/feed"
)

// Kind é a variante fechada produzida pelo classificador
type Kind int

const (
	KindUnmapped Kind = iota
	KindMainMarket
	KindPeriodProp
	KindPlayerProp
)

func (k Kind) String() string {
	switch k {
	case KindMainMarket:
		return "main_market"
	case KindPeriodProp:
		return "period_prop"
	case KindPlayerProp:
		return "player_prop"
	default:
		return "unmapped"
	}
}

// Classification é o resultado de Classify para uma linha crua.
// MarketKey só é preenchida quando Kind != KindUnmapped; Reason só quando é.
type Classification struct {
	Kind       Kind
	MarketKey  string
	Stat       string
	BetType    string
	Period     string
	Entity     string // home | away | all | id do jogador
	Side       string // home | away | over | under | yes | no
	PlayerID   string
	PlayerName string
	Reason     string
}

const (
	betMoneyline = "ml"
	betSpread    = "sp"
	betOverUnder = "ou"
	betYesNo     = "yn"

	periodGame = "game"
	statPoints = "points"
)

// mainBase mapeia (tipo de aposta, entidade) para o mercado principal
func mainBase(betType, entity string) string {
	switch {
	case betType == betMoneyline && isTeam(entity):
		return "moneyline"
	case betType == betSpread && isTeam(entity):
		return "spread"
	case betType == betOverUnder && entity == "all":
		return "total"
	case betType == betOverUnder && isTeam(entity):
		return "team_total_" + entity
	}
	return ""
}

func isTeam(entity string) bool { return entity == "home" || entity == "away" }

func isTeamOrAll(entity string) bool { return isTeam(entity) || entity == "all" }

func unmapped(c Classification, reason string) Classification {
	c.Kind = KindUnmapped
	c.MarketKey = ""
	c.Reason = reason
	return c
}

// Classify decide a variante de uma linha a partir de statID, betTypeID, periodID,
// statEntityID e do vínculo com jogador. É determinística e não consulta o catálogo.
func Classify(o feed.Odd, players map[string]feed.Player) Classification {
	c := Classification{
		Stat:    norm(o.StatID),
		BetType: norm(o.BetTypeID),
		Period:  norm(o.PeriodID),
		Entity:  norm(o.StatEntityID),
		Side:    norm(o.SideID),
	}
	if c.Stat == "" || c.BetType == "" || c.Period == "" || c.Entity == "" {
		return unmapped(c, "missing_fields")
	}

	switch c.BetType {
	case betMoneyline, betSpread:
		if c.Side == "" {
			c.Side = c.Entity
		}
		if !isTeam(c.Side) {
			return unmapped(c, "invalid_side")
		}
	case betOverUnder:
		if c.Side != "over" && c.Side != "under" {
			return unmapped(c, "invalid_side")
		}
	case betYesNo:
		if c.Side != "yes" && c.Side != "no" {
			return unmapped(c, "invalid_side")
		}
	default:
		return unmapped(c, "unsupported_bet_type")
	}

	// jogador: playerID explícito ou statEntityID que não é time
	playerID := strings.TrimSpace(o.PlayerID)
	if playerID == "" && !isTeamOrAll(c.Entity) {
		playerID = strings.TrimSpace(o.StatEntityID)
	}
	if playerID != "" {
		return classifyPlayer(c, playerID, players)
	}

	if c.Stat == statPoints && c.Period == periodGame {
		base := mainBase(c.BetType, c.Entity)
		if base == "" {
			return unmapped(c, "unsupported_main_market")
		}
		c.Kind = KindMainMarket
		c.MarketKey = base
		return c
	}

	c.Kind = KindPeriodProp
	if base := mainBase(c.BetType, c.Entity); base != "" && c.Stat == statPoints {
		c.MarketKey = c.Period + "_" + base
	} else {
		c.MarketKey = fmt.Sprintf("%s_%s_%s_%s", c.Period, c.Stat, c.BetType, c.Entity)
	}
	return c
}

func classifyPlayer(c Classification, playerID string, players map[string]feed.Player) Classification {
	c.PlayerID = playerID
	if c.BetType != betOverUnder && c.BetType != betYesNo {
		return unmapped(c, "unsupported_player_market")
	}
	c.PlayerName = playerName(playerID, players)
	if c.PlayerName == "" {
		return unmapped(c, "unknown_player")
	}
	c.Kind = KindPlayerProp
	if c.Period == periodGame {
		c.MarketKey = fmt.Sprintf("player_%s_%s", c.Stat, c.BetType)
	} else {
		c.MarketKey = fmt.Sprintf("player_%s_%s_%s", c.Period, c.Stat, c.BetType)
	}
	return c
}

// playerName usa o elenco do evento; sem ele, tenta humanizar ids no formato
// NOME_SOBRENOME_1_NFL
func playerName(id string, players map[string]feed.Player) string {
	if p, ok := players[id]; ok {
		if p.Name != "" {
			return p.Name
		}
		if full := strings.TrimSpace(p.FirstName + " " + p.LastName); full != "" {
			return full
		}
	}
	parts := strings.Split(id, "_")
	var words []string
	for _, p := range parts {
		if p == "" || isDigits(p) {
			break
		}
		words = append(words, titleWord(p))
	}
	if len(words) < 2 {
		return ""
	}
	return strings.Join(words, " ")
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func titleWord(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
