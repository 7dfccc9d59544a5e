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

	bhttp "github.com/radieske/fantasy-sportsbook/internal/bet-service/http"
	"github.com/radieske/fantasy-sportsbook/internal/bet-service/placement"
	kpub "github.com/radieske/fantasy-sportsbook/internal/bet-service/producer"
	"github.com/radieske/fantasy-sportsbook/internal/bet-service/repo"
	"github.com/radieske/fantasy-sportsbook/internal/shared/auth"
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

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Kafka writer (topic bet_placed)
	if cfg.Env == "local" || cfg.Env == "dev" {
		if err := kafka.EnsureTopics(cfg.KafkaBrokers, log, cfg.TopicBetPlaced); err != nil {
			log.Warn("ensure topics", zap.Error(err))
		}
	}
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer writer.Close()

	// Métricas por código de resultado (ok, bad_request, game_not_open, ...)
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_placements_total", Help: "tentativas de aposta por resultado"}, []string{"code"})
	prometheus.MustRegister(placements)

	// deps
	repository := repo.NewPostgres(pg)
	placer := placement.NewPlacer(repository, cfg.StartingBalanceCents, log)
	placer.Publisher = kpub.NewKafkaPublisher(writer)
	placer.OnResult = func(code string) { placements.WithLabelValues(code).Inc() }

	// HTTP público
	api := bhttp.NewServer(log, placer, repository, auth.NewVerifier(cfg.JWTSecret))
	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		_ = apiSrv.Shutdown(shutdownCtx)
	}()

	log.Info("bet-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
