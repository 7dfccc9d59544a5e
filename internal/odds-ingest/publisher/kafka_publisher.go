package publisher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/normalize"
	"github.com/radieske/fantasy-sportsbook/internal/shared/kafka"
	"github.com/radieske/fantasy-sportsbook/pkg/contracts/events"
)

const source = "odds-ingest-service"

// KafkaPublisher encapsula o writer Kafka e o logger
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewKafkaPublisher cria um publisher para o tópico de atualizações de odds.
// Em local/dev o tópico é criado antes do primeiro envio.
func NewKafkaPublisher(brokers, topic, env string, log *zap.Logger) *KafkaPublisher {
	if env == "local" || env == "dev" {
		if err := kafka.EnsureTopics(brokers, log, topic); err != nil {
			log.Warn("could not ensure kafka topic", zap.String("topic", topic), zap.Error(err))
		}
	}
	return &KafkaPublisher{
		writer: kafka.NewWriter(brokers, topic),
		log:    log,
	}
}

// PublishRefreshed publica um evento por jogo regravado, usando o id do jogo como chave
// para manter a ordem por partição. Falhas são logadas e contadas, não interrompem o lote.
func (p *KafkaPublisher) PublishRefreshed(ctx context.Context, games []normalize.RefreshedGame) int {
	failed := 0
	for _, g := range games {
		e := events.OddsUpdate{
			GameID:     g.GameID,
			ExternalID: g.ExternalID,
			HomeTeam:   g.HomeTeam,
			AwayTeam:   g.AwayTeam,
			Status:     string(g.Status),
			ActiveBets: g.ActiveBets,
			UpdatedAt:  time.Now().UTC(),
			Source:     source,
		}
		if err := p.Publish(ctx, e); err != nil {
			failed++
		}
	}
	return failed
}

func (p *KafkaPublisher) Publish(ctx context.Context, e events.OddsUpdate) error {
	if err := kafka.WriteJSON(ctx, p.writer, e.GameID, e); err != nil {
		p.log.Error("failed to publish odds update", zap.String("game_id", e.GameID), zap.Error(err))
		return err
	}
	p.log.Debug("published odds update", zap.String("game_id", e.GameID))
	return nil
}

// Close finaliza o writer e libera recursos associados
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
