package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	gateway "github.com/radieske/fantasy-sportsbook/internal/api-gateway"
	"github.com/radieske/fantasy-sportsbook/internal/shared/config"
	"github.com/radieske/fantasy-sportsbook/internal/shared/logger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/metrics"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	h, err := gateway.New(gateway.Targets{
		Odds:       envOr("ODDS_URL", "http://localhost:8080"),
		Wallet:     envOr("WALLET_URL", "http://localhost:8082"),
		Bet:        envOr("BET_URL", "http://localhost:8083"),
		Settlement: envOr("SETTLEMENT_URL", "http://localhost:8084"),
	}, log)
	if err != nil {
		log.Fatal("gateway routes", zap.Error(err))
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Info("api-gateway listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}
