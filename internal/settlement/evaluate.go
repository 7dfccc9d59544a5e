package settlement

import (
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

// Outcome é o resultado de uma perna
type Outcome int

const (
	OutcomeVoid Outcome = iota
	OutcomeWin
	OutcomeLose
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	default:
		return "void"
	}
}

// Evaluator resolve uma perna de um mercado contra o placar final do jogo
type Evaluator func(leg model.UserBetSelection, g model.Game) Outcome

// Registry mapeia market_key → Evaluator. Mercado sem avaliador resulta em void
// ("não é possível determinar"), nunca em perda.
type Registry map[string]Evaluator

func DefaultRegistry() Registry {
	return Registry{
		"moneyline": Moneyline,
	}
}

// Evaluate exige jogo encerrado com placar ou cancelado
func (r Registry) Evaluate(leg model.UserBetSelection, g model.Game) Outcome {
	if g.Status == model.GameCancelled || !g.HasFinalScore() {
		return OutcomeVoid
	}
	fn, ok := r[leg.MarketKey]
	if !ok {
		return OutcomeVoid
	}
	return fn(leg, g)
}

// Moneyline: vence se o time escolhido fez mais pontos. Empate perde para os dois lados.
func Moneyline(leg model.UserBetSelection, g model.Game) Outcome {
	home, away := *g.HomeScore, *g.AwayScore
	switch leg.Side {
	case "home":
		if home > away {
			return OutcomeWin
		}
		return OutcomeLose
	case "away":
		if away > home {
			return OutcomeWin
		}
		return OutcomeLose
	default:
		return OutcomeVoid
	}
}
