package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	audit "github.com/radieske/fantasy-sportsbook/internal/ledger-audit"
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

	// Conexão com Postgres para leitura de profiles e transactions
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: bet_placed e bet_settled no mesmo grupo
	topics := []string{cfg.TopicBetPlaced, cfg.TopicBetSettled}
	if cfg.Env == "local" || cfg.Env == "dev" {
		if err := kafka.EnsureTopics(cfg.KafkaBrokers, log, topics...); err != nil {
			log.Warn("ensure topics", zap.Error(err))
		}
	}
	reader := kafka.NewGroupReader(cfg.KafkaBrokers, topics, "ledger-audit")
	defer reader.Close()

	checked := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_audit_checks_total", Help: "reconciliações por resultado"}, []string{"result"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_audit_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(checked, errorsBy)

	auditor := &audit.Auditor{
		Log:             log,
		Reader:          reader,
		Reconciler:      audit.PostgresReconciler{DB: pg},
		TopicBetPlaced:  cfg.TopicBetPlaced,
		TopicBetSettled: cfg.TopicBetSettled,
		Retries:         3,
		OnChecked: func(ok bool) {
			if ok {
				checked.WithLabelValues("consistent").Inc()
				return
			}
			checked.WithLabelValues("mismatch").Inc()
		},
		OnError: func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("ledger-audit-worker started", zap.Strings("consume", topics))
	if err := auditor.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("auditor stopped with error", zap.Error(err))
	}

	shutdownCtx, c := context.WithTimeout(context.Background(), 3*time.Second)
	defer c()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("ledger-audit-worker stopped")
}
