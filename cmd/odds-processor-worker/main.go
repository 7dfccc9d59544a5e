package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-processor/cache"
	"github.com/radieske/fantasy-sportsbook/internal/odds-processor/consumer"
	"github.com/radieske/fantasy-sportsbook/internal/odds-processor/repository"
	sharedcache "github.com/radieske/fantasy-sportsbook/internal/shared/cache"
	"github.com/radieske/fantasy-sportsbook/internal/shared/config"
	"github.com/radieske/fantasy-sportsbook/internal/shared/db"
	"github.com/radieske/fantasy-sportsbook/internal/shared/kafka"
	"github.com/radieske/fantasy-sportsbook/internal/shared/logger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Configura o consumer Kafka (consumer group odds-processor)
	if cfg.Env == "local" || cfg.Env == "dev" {
		if err := kafka.EnsureTopics(cfg.KafkaBrokers, log, cfg.TopicOddsUpdates); err != nil {
			log.Warn("ensure topics", zap.Error(err))
		}
	}
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicOddsUpdates, "odds-processor")
	defer reader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_proc_messages_consumed_total", Help: "mensagens consumidas"})
	invalidated := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_proc_cache_invalidations_total", Help: "invalidações do cache de leitura"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_proc_db_writes_total", Help: "linhas gravadas em odds_history"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_proc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, invalidated, persist, errorsBy)

	proc := &consumer.Processor{
		Log:           log,
		Reader:        reader,
		Cache:         cache.NewRedisCache(redisClient),
		History:       repository.NewPostgresRepo(pg),
		OnConsumed:    func() { consumed.Inc() },
		OnInvalidated: func() { invalidated.Inc() },
		OnPersist:     func() { persist.Inc() },
		OnError:       func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Checks(
		pg.PingContext,
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("odds-processor started", zap.String("topic", cfg.TopicOddsUpdates))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, c := context.WithTimeout(context.Background(), 3*time.Second)
	defer c()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("odds-processor stopped")
}
