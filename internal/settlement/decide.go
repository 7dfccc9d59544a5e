package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
	"github.com/radieske/fantasy-sportsbook/internal/shared/pricing"
)

// Policy define como pernas void afetam a aposta
type Policy string

const (
	// PolicyVoidBet: qualquer perna void anula a aposta inteira (devolve o stake)
	PolicyVoidBet Policy = "void_bet"
	// PolicyStrikeLeg: pernas void saem da conta e a odd é recalculada com as restantes
	PolicyStrikeLeg Policy = "strike_leg"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyVoidBet, "":
		return PolicyVoidBet, nil
	case PolicyStrikeLeg:
		return PolicyStrikeLeg, nil
	}
	return "", fmt.Errorf("unknown settlement void policy %q", s)
}

// Decision é o estado terminal de uma aposta e o crédito correspondente
type Decision struct {
	Status      model.BetStatus
	CreditCents int64
	TxType      ledger.TxType
}

// Decide agrega os resultados das pernas (mesma ordem de bet.Selections)
func Decide(bet model.UserBet, outcomes []Outcome, policy Policy) Decision {
	var wins, losses, voids int
	for _, o := range outcomes {
		switch o {
		case OutcomeWin:
			wins++
		case OutcomeLose:
			losses++
		default:
			voids++
		}
	}

	void := Decision{Status: model.BetVoid, CreditCents: bet.StakeCents, TxType: ledger.TxBetVoid}
	lost := Decision{Status: model.BetLost, TxType: ledger.TxBetLost}

	if policy == PolicyStrikeLeg {
		switch {
		case losses > 0:
			return lost
		case wins == 0:
			return void
		case voids == 0:
			return won(bet.PotentialPayoutCents)
		}
		// recalcula sobre as pernas vencedoras, com a odd congelada na colocação
		odds := make([]decimal.Decimal, 0, wins)
		for i, o := range outcomes {
			if o == OutcomeWin && i < len(bet.Selections) {
				odds = append(odds, bet.Selections[i].OddsAtPlacement)
			}
		}
		return won(pricing.PotentialPayoutCents(bet.StakeCents, pricing.CombinedOdds(odds...)))
	}

	switch {
	case voids > 0 || len(outcomes) == 0:
		return void
	case losses > 0:
		return lost
	default:
		return won(bet.PotentialPayoutCents)
	}
}

func won(payout int64) Decision {
	return Decision{Status: model.BetWon, CreditCents: payout, TxType: ledger.TxBetWon}
}
