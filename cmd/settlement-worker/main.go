package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/settlement"
	shttp "github.com/radieske/fantasy-sportsbook/internal/settlement/http"
	"github.com/radieske/fantasy-sportsbook/internal/settlement/producer"
	"github.com/radieske/fantasy-sportsbook/internal/settlement/repo"
	"github.com/radieske/fantasy-sportsbook/internal/shared/config"
	"github.com/radieske/fantasy-sportsbook/internal/shared/db"
	"github.com/radieske/fantasy-sportsbook/internal/shared/kafka"
	"github.com/radieske/fantasy-sportsbook/internal/shared/logger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/metrics"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	policy, err := settlement.ParsePolicy(cfg.SettlementVoidPolicy)
	if err != nil {
		log.Fatal("invalid SETTLEMENT_VOID_POLICY", zap.Error(err))
	}

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Env == "local" || cfg.Env == "dev" {
		if err := kafka.EnsureTopics(cfg.KafkaBrokers, log, cfg.TopicBetSettled); err != nil {
			log.Warn("ensure topics", zap.Error(err))
		}
	}
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer writer.Close()

	// Métricas Prometheus
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_bets_total", Help: "apostas liquidadas por status"}, []string{"status"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(settled, errorsBy)

	settler := settlement.NewSettler(repo.NewPostgres(pg), settlement.DefaultRegistry(), policy, log)
	settler.Publisher = producer.NewKafkaPublisher(writer)
	settler.OnSettled = func(s model.BetStatus) { settled.WithLabelValues(string(s)).Inc() }
	settler.OnFailure = func(stage string) { errorsBy.WithLabelValues(stage).Inc() }

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	api := &shttp.API{Log: log, Runner: settler}
	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go settler.Start(ctx, cfg.SettlementInterval)
	go func() {
		<-ctx.Done()
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		_ = apiSrv.Shutdown(shutdownCtx)
	}()

	log.Info("settlement-worker listening",
		zap.String("addr", apiSrv.Addr),
		zap.Duration("interval", cfg.SettlementInterval),
		zap.String("void_policy", string(policy)),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
