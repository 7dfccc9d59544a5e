package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/pkg/contracts/events"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, gameID string) error
}

type HistoryStore interface {
	InsertHistory(ctx context.Context, e events.OddsUpdate) error
}

// Processor consome odds_updates, invalida o cache de leitura e grava o histórico
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log     *zap.Logger
	Reader  MessageReader
	Cache   Invalidator
	History HistoryStore

	OnConsumed    func()       // métricas (counter++)
	OnInvalidated func()       // métricas
	OnPersist     func()       // métricas
	OnError       func(string) // métricas por fase

	// pausa após falha de leitura
	Backoff time.Duration
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	backoff := p.Backoff
	if backoff == 0 {
		backoff = 500 * time.Millisecond
	}
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(backoff)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		p.Handle(ctx, m.Value)
	}
}

// Handle processa uma mensagem; erros são contados e não interrompem o consumo
func (p *Processor) Handle(ctx context.Context, value []byte) {
	var ev events.OddsUpdate
	if err := json.Unmarshal(value, &ev); err != nil || ev.GameID == "" {
		p.Log.Warn("invalid message", zap.Error(err))
		p.fail("decode")
		return
	}

	// falha de cache não impede o histórico
	if err := p.Cache.Invalidate(ctx, ev.GameID); err != nil {
		p.Log.Warn("redis invalidate failed", zap.String("game_id", ev.GameID), zap.Error(err))
		p.fail("cache")
	} else if p.OnInvalidated != nil {
		p.OnInvalidated()
	}

	if p.History == nil {
		return
	}
	if err := p.History.InsertHistory(ctx, ev); err != nil {
		p.Log.Warn("db insert history failed", zap.String("game_id", ev.GameID), zap.Error(err))
		p.fail("db_history")
		return
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
