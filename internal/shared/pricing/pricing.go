// Package pricing concentra a aritmética de odds e pagamentos.
// Odds decimais usam shopspring/decimal; valores monetários são centavos (int64).
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("invalid american odds")

var hundred = decimal.NewFromInt(100)

// AmericanToDecimal converte o preço americano do feed ("+150", "-110") em odd decimal.
// p > 0 → p/100 + 1; p < 0 → 100/|p| + 1; zero ou texto inválido → ErrInvalidPrice.
func AmericanToDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	p, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return fromAmerican(p)
}

// AmericanFloatToDecimal é a variante numérica; NaN e infinitos são rejeitados
func AmericanFloatToDecimal(p float64) (decimal.Decimal, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return decimal.Zero, ErrInvalidPrice
	}
	return fromAmerican(decimal.NewFromFloat(p))
}

func fromAmerican(p decimal.Decimal) (decimal.Decimal, error) {
	switch p.Sign() {
	case 1:
		return p.Div(hundred).Add(decimal.NewFromInt(1)), nil
	case -1:
		return hundred.Div(p.Abs()).Add(decimal.NewFromInt(1)), nil
	default:
		return decimal.Zero, ErrInvalidPrice
	}
}

// RoundOdds aplica a precisão de armazenamento (2 casas)
func RoundOdds(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CombinedOdds é o produto das odds das pernas; uma single é o produto de um fator
func CombinedOdds(legs ...decimal.Decimal) decimal.Decimal {
	out := decimal.NewFromInt(1)
	for _, l := range legs {
		out = out.Mul(l)
	}
	return out
}

// PotentialPayoutCents = stake × odds, arredondado ao centavo.
// Para odds ≤ 1 ou stake ≤ 0 devolve o próprio stake.
func PotentialPayoutCents(stakeCents int64, odds decimal.Decimal) int64 {
	if stakeCents <= 0 || odds.LessThanOrEqual(decimal.NewFromInt(1)) {
		return stakeCents
	}
	return decimal.NewFromInt(stakeCents).Mul(odds).Round(0).IntPart()
}

// FormatLine formata uma linha com uma casa decimal ("47.5")
func FormatLine(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// FormatSignedLine formata handicap com sinal explícito ("+3.5", "-3.5")
func FormatSignedLine(v float64) string {
	if v > 0 {
		return "+" + FormatLine(v)
	}
	return FormatLine(v)
}
