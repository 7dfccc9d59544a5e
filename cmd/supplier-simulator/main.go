package main

import (
	"context"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/shared/config"
	"github.com/radieske/fantasy-sportsbook/internal/shared/logger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/metrics"
	"github.com/radieske/fantasy-sportsbook/internal/supplier-simulator/sim"
)

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Métricas Prometheus por status de resposta
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "supplier_feed_requests_total",
		Help: "Requisições ao /v2/events por status HTTP",
	}, []string{"status"})
	prometheus.MustRegister(requests)

	boot := time.Now()
	s := &sim.Server{
		Log:       log,
		Catalog:   sim.NewCatalog(boot, boot.UnixNano()),
		APIKey:    cfg.FeedAPIKey,
		OnRequest: func(status int) { requests.WithLabelValues(strconv.Itoa(status)).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil)

	publicSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("supplier simulator (public) running",
			zap.String("addr", publicSrv.Addr),
			zap.String("paths", "/v2/events"),
			zap.Bool("api_key_required", cfg.FeedAPIKey != ""),
		)
		if err := publicSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("public server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = publicSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
