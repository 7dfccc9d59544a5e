package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/feed"
	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/normalize"
)

var ErrRunInProgress = errors.New("ingest run already in progress")

type Fetcher interface {
	FetchEvents(ctx context.Context) ([]feed.Event, error)
}

type Publisher interface {
	PublishRefreshed(ctx context.Context, games []normalize.RefreshedGame) int
}

// Runner executa uma passada completa: feed → normalizador → promoção → publicação
type Runner struct {
	Log        *zap.Logger
	Fetcher    Fetcher
	Normalizer *normalize.Normalizer
	Publisher  Publisher // opcional
	Now        func() time.Time

	OnRun   func(result string)   // métricas: ok | fetch_error | promote_error
	OnStats func(normalize.Stats) // métricas

	mu sync.Mutex
}

// RunOnce faz uma passada. Falha no feed aborta a passada com zero eventos processados,
// mas a promoção por horário roda mesmo assim.
func (r *Runner) RunOnce(ctx context.Context) (normalize.Stats, error) {
	if !r.mu.TryLock() {
		return normalize.Stats{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	var st normalize.Stats
	events, fetchErr := r.Fetcher.FetchEvents(ctx)
	if fetchErr != nil {
		r.Log.Error("odds feed fetch failed", zap.Error(fetchErr))
		st = normalize.Stats{Dropped: map[string]int{}}
	} else {
		st = r.Normalizer.Ingest(ctx, events)
	}

	if err := r.Normalizer.Promote(ctx, now(), &st); err != nil {
		r.Log.Error("promote started games failed", zap.Error(err))
		r.report("promote_error", st)
		return st, err
	}

	if r.Publisher != nil && len(st.Refreshed) > 0 {
		if failed := r.Publisher.PublishRefreshed(ctx, st.Refreshed); failed > 0 {
			r.Log.Warn("some odds updates were not published", zap.Int("failed", failed))
		}
	}

	if fetchErr != nil {
		r.report("fetch_error", st)
		return st, fetchErr
	}

	r.Log.Info("ingest run finished",
		zap.Int("events_seen", st.EventsSeen),
		zap.Int("events_processed", st.EventsProcessed),
		zap.Int("events_failed", st.EventsFailed),
		zap.Int("bets_inserted", st.BetsInserted),
		zap.Int64("bets_deactivated", st.BetsDeactivated),
		zap.Any("dropped", st.Dropped),
		zap.Int64("games_promoted", st.GamesPromoted),
	)
	r.report("ok", st)
	return st, nil
}

func (r *Runner) report(result string, st normalize.Stats) {
	if r.OnRun != nil {
		r.OnRun(result)
	}
	if r.OnStats != nil {
		r.OnStats(st)
	}
}

// Start roda uma passada imediata e depois a cada intervalo, até o contexto ser cancelado
func (r *Runner) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.Log.Warn("ingest run failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			r.Log.Info("context canceled, stopping ingest runner")
			return
		case <-ticker.C:
		}
	}
}
