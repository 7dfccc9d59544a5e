package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
	"github.com/radieske/fantasy-sportsbook/pkg/contracts/events"
)

var ErrNoUser = errors.New("message without user_id")

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, userID string) (ledger.Reconciliation, error)
}

// Auditor confere a conservação do saldo de cada usuário após bet_placed e bet_settled
type Auditor struct {
	Log        *zap.Logger
	Reader     MessageReader
	Reconciler Reconciler

	TopicBetPlaced  string
	TopicBetSettled string

	Retries int           // tentativas extras de reconciliação
	Backoff time.Duration // base do backoff linear entre tentativas

	OnChecked func(consistent bool)
	OnError   func(stage string)
}

// Run consome até o contexto ser cancelado
func (a *Auditor) Run(ctx context.Context) error {
	for {
		m, err := a.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.Log.Warn("kafka read", zap.Error(err))
			a.fail("read")
			time.Sleep(a.backoff())
			continue
		}
		if _, err := a.Handle(ctx, m); err != nil {
			a.Log.Error("audit message", zap.String("topic", m.Topic), zap.Error(err))
		}
	}
}

// Handle reconcilia o usuário da mensagem; retorna a reconciliação obtida
func (a *Auditor) Handle(ctx context.Context, m kafka.Message) (ledger.Reconciliation, error) {
	userID, betID, err := a.decode(m)
	if err != nil {
		a.fail("decode")
		return ledger.Reconciliation{}, err
	}

	rec, err := a.Reconciler.Reconcile(ctx, userID)
	for i := 0; err != nil && !errors.Is(err, ledger.ErrProfileNotFound) && i < a.Retries; i++ {
		time.Sleep(time.Duration(i+1) * a.backoff())
		rec, err = a.Reconciler.Reconcile(ctx, userID)
	}
	if err != nil {
		a.fail("reconcile")
		return rec, err
	}

	if !rec.Consistent {
		a.Log.Error("ledger mismatch",
			zap.String("user_id", userID),
			zap.String("bet_id", betID),
			zap.String("topic", m.Topic),
			zap.Int64("balance_cents", rec.BalanceCents),
			zap.Int64("initial_balance_cents", rec.InitialBalanceCents),
			zap.Int64("ledger_sum_cents", rec.LedgerSumCents),
			zap.Int64("drift_cents", rec.BalanceCents-rec.InitialBalanceCents-rec.LedgerSumCents),
		)
	}
	if a.OnChecked != nil {
		a.OnChecked(rec.Consistent)
	}
	return rec, nil
}

func (a *Auditor) decode(m kafka.Message) (userID, betID string, err error) {
	switch m.Topic {
	case a.TopicBetSettled:
		var ev events.BetSettled
		err = json.Unmarshal(m.Value, &ev)
		userID, betID = ev.UserID, ev.BetID
	default:
		var ev events.BetPlaced
		err = json.Unmarshal(m.Value, &ev)
		userID, betID = ev.UserID, ev.BetID
	}
	if err == nil && userID == "" {
		err = ErrNoUser
	}
	return userID, betID, err
}

func (a *Auditor) backoff() time.Duration {
	if a.Backoff > 0 {
		return a.Backoff
	}
	return 300 * time.Millisecond
}

func (a *Auditor) fail(stage string) {
	if a.OnError != nil {
		a.OnError(stage)
	}
}
