package producer

import (
	"context"

	"github.com/radieske/fantasy-sportsbook/internal/settlement"
	"github.com/radieske/fantasy-sportsbook/internal/shared/kafka"
	"github.com/radieske/fantasy-sportsbook/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, s settlement.Settlement, policy settlement.Policy) error {
	return kafka.WriteJSON(ctx, p.Writer, s.UserID, events.BetSettled{
		BetID:       s.BetID,
		UserID:      s.UserID,
		Status:      string(s.Status),
		CreditCents: s.CreditCents,
		VoidPolicy:  string(policy),
		SettledAt:   s.SettledAt,
	})
}
