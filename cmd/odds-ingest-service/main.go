package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/feed"
	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/normalize"
	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/publisher"
	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/repository"
	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/service"
	"github.com/radieske/fantasy-sportsbook/internal/shared/config"
	"github.com/radieske/fantasy-sportsbook/internal/shared/db"
	"github.com/radieske/fantasy-sportsbook/internal/shared/logger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	if cfg.FeedAPIKey == "" {
		log.Fatal("FEED_API_KEY is required")
	}

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	repo := repository.NewPostgresRepo(pg)

	// Catálogo de mercados é carregado uma única vez na subida
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	types, err := repo.LoadMarketTypes(loadCtx)
	loadCancel()
	if err != nil {
		log.Fatal("load market types", zap.Error(err))
	}
	catalog := normalize.NewCatalog(types)
	log.Info("market catalog loaded", zap.Int("market_types", catalog.Len()))

	// Métricas Prometheus
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ingest_runs_total", Help: "passadas de ingestão por resultado"}, []string{"result"})
	eventsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ingest_events_total", Help: "eventos por resultado"}, []string{"result"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ingest_lines_dropped_total", Help: "linhas de odds descartadas por motivo"}, []string{"reason"})
	inserted := prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_bets_inserted_total", Help: "apostas disponíveis gravadas"})
	promoted := prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_games_promoted_total", Help: "jogos promovidos para live"})
	prometheus.MustRegister(runs, eventsBy, dropped, inserted, promoted)

	norm := normalize.New(repo, catalog, log)
	norm.OnDrop = func(reason string) { dropped.WithLabelValues(reason).Inc() }

	pub := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicOddsUpdates, cfg.Env, log)
	defer pub.Close()

	runner := &service.Runner{
		Log:        log,
		Fetcher:    feed.NewClient(cfg.FeedBaseURL, cfg.FeedAPIKey, cfg.FeedLeagueID, cfg.FeedPageLimit, cfg.FeedTimeout, log),
		Normalizer: norm,
		Publisher:  pub,
		OnRun:      func(result string) { runs.WithLabelValues(result).Inc() },
		OnStats: func(st normalize.Stats) {
			eventsBy.WithLabelValues("processed").Add(float64(st.EventsProcessed))
			eventsBy.WithLabelValues("failed").Add(float64(st.EventsFailed))
			inserted.Add(float64(st.BetsInserted))
			promoted.Add(float64(st.GamesPromoted))
		},
	}

	// Servidor de métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("odds-ingest started", zap.Duration("interval", cfg.IngestInterval), zap.String("league", cfg.FeedLeagueID))
	runner.Start(ctx, cfg.IngestInterval)
	log.Info("odds-ingest stopped")
}
