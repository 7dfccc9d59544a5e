package producer

import (
	"context"
	"time"

	"github.com/radieske/fantasy-sportsbook/internal/bet-service/placement"
	"github.com/radieske/fantasy-sportsbook/internal/shared/kafka"
	"github.com/radieske/fantasy-sportsbook/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

// PublishBetPlaced usa o user id como chave: eventos do mesmo usuário ficam ordenados
func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, c placement.Commit, newBalanceCents int64) error {
	e := events.BetPlaced{
		BetID:                c.BetID,
		UserID:               c.UserID,
		BetType:              string(c.BetType),
		StakeCents:           c.StakeCents,
		CombinedOdds:         c.CombinedOdds.StringFixed(4),
		PotentialPayoutCents: c.PotentialPayoutCents,
		NewBalanceCents:      newBalanceCents,
		Legs:                 make([]events.BetPlacedLeg, 0, len(c.Legs)),
		TsUnixMs:             time.Now().UnixMilli(),
	}
	for _, l := range c.Legs {
		e.Legs = append(e.Legs, events.BetPlacedLeg{
			AvailableBetID: l.Bet.ID,
			GameID:         l.Game.ID,
			Market:         l.Bet.MarketKey,
			Selection:      l.Bet.Selection,
			Odds:           l.Bet.Odds.StringFixed(2),
		})
	}
	return kafka.WriteJSON(ctx, p.Writer, c.UserID, e)
}
