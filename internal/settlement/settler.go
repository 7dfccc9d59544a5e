// Package settlement liquida apostas pendentes contra o resultado final dos jogos.
package settlement

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

var ErrAlreadyRunning = errors.New("settlement run already in progress")

// PendingBet é uma aposta pendente com o estado atual dos jogos de todas as pernas
type PendingBet struct {
	Bet   model.UserBet
	Games map[string]model.Game
}

// Settlement é o que o Store grava na transação de uma aposta
type Settlement struct {
	BetID       string
	UserID      string
	Status      model.BetStatus
	CreditCents int64
	TxType      ledger.TxType
	SettledAt   time.Time
}

type Store interface {
	// ListSettleableGames: jogos com perna pendente, encerrados com placar ou cancelados
	ListSettleableGames(ctx context.Context) ([]model.Game, error)
	// ListPendingBets devolve só apostas com status pending que têm perna no jogo
	ListPendingBets(ctx context.Context, gameID string) ([]PendingBet, error)
	// SettleBet aplica status, crédito e lançamento numa transação.
	// applied=false quando a aposta já não estava pending.
	SettleBet(ctx context.Context, s Settlement) (applied bool, err error)
}

type Publisher interface {
	PublishBetSettled(ctx context.Context, s Settlement, policy Policy) error
}

// Stats é o resumo devolvido pelo gatilho HTTP
type Stats struct {
	GamesProcessed int `json:"games_processed"`
	BetsUpdated    int `json:"bets_updated"`
	BalanceUpdates int `json:"balance_updates"`
	BetsSkipped    int `json:"bets_skipped"`
	BetsDeferred   int `json:"bets_deferred"`
	BetsFailed     int `json:"bets_failed"`
	GamesFailed    int `json:"games_failed"`
}

type Settler struct {
	store    Store
	registry Registry
	policy   Policy
	log      *zap.Logger

	Publisher Publisher // opcional
	Now       func() time.Time
	OnSettled func(status model.BetStatus) // métricas
	OnFailure func(stage string)           // métricas

	mu sync.Mutex
}

func NewSettler(store Store, registry Registry, policy Policy, log *zap.Logger) *Settler {
	return &Settler{store: store, registry: registry, policy: policy, log: log, Now: time.Now}
}

// Run executa uma passada completa. Execuções no mesmo processo não se sobrepõem:
// uma segunda chamada concorrente recebe ErrAlreadyRunning.
func (s *Settler) Run(ctx context.Context) (Stats, error) {
	if !s.mu.TryLock() {
		return Stats{}, ErrAlreadyRunning
	}
	defer s.mu.Unlock()

	var st Stats
	games, err := s.store.ListSettleableGames(ctx)
	if err != nil {
		s.fail("list_games")
		return st, err
	}

	// uma parlay aparece em todos os seus jogos; decide-se uma vez por passada
	seen := map[string]struct{}{}
	for _, g := range games {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		bets, err := s.store.ListPendingBets(ctx, g.ID)
		if err != nil {
			st.GamesFailed++
			s.fail("list_bets")
			s.log.Error("list pending bets failed", zap.String("game_id", g.ID), zap.Error(err))
			continue
		}
		for _, pb := range bets {
			if _, dup := seen[pb.Bet.ID]; dup {
				continue
			}
			seen[pb.Bet.ID] = struct{}{}
			s.settleOne(ctx, pb, &st)
		}
		st.GamesProcessed++
	}

	s.log.Info("settlement run finished",
		zap.Int("games_processed", st.GamesProcessed),
		zap.Int("bets_updated", st.BetsUpdated),
		zap.Int("balance_updates", st.BalanceUpdates),
		zap.Int("bets_skipped", st.BetsSkipped),
		zap.Int("bets_deferred", st.BetsDeferred),
		zap.Int("bets_failed", st.BetsFailed),
		zap.String("void_policy", string(s.policy)),
	)
	return st, nil
}

func (s *Settler) settleOne(ctx context.Context, pb PendingBet, st *Stats) {
	bet := pb.Bet
	if len(bet.Selections) == 0 {
		st.BetsFailed++
		s.fail("no_legs")
		s.log.Error("pending bet without legs", zap.String("bet_id", bet.ID))
		return
	}

	outcomes := make([]Outcome, len(bet.Selections))
	for i, leg := range bet.Selections {
		g, ok := pb.Games[leg.GameID]
		if !ok || !Final(g) {
			// parlay com jogo ainda em andamento fica para uma próxima passada
			st.BetsDeferred++
			return
		}
		outcomes[i] = s.registry.Evaluate(leg, g)
	}

	d := Decide(bet, outcomes, s.policy)
	rec := Settlement{
		BetID:       bet.ID,
		UserID:      bet.UserID,
		Status:      d.Status,
		CreditCents: d.CreditCents,
		TxType:      d.TxType,
		SettledAt:   s.Now().UTC(),
	}

	applied, err := s.store.SettleBet(ctx, rec)
	if err != nil {
		st.BetsFailed++
		s.fail("settle_bet")
		s.log.Error("settle bet failed, left pending",
			zap.String("bet_id", bet.ID),
			zap.String("user_id", bet.UserID),
			zap.Error(err),
		)
		return
	}
	if !applied {
		st.BetsSkipped++
		return
	}

	st.BetsUpdated++
	if rec.CreditCents > 0 {
		st.BalanceUpdates++
	}
	if s.OnSettled != nil {
		s.OnSettled(rec.Status)
	}
	s.log.Info("bet settled",
		zap.String("bet_id", bet.ID),
		zap.String("status", string(rec.Status)),
		zap.Int64("credit_cents", rec.CreditCents),
	)

	if s.Publisher != nil {
		if err := s.Publisher.PublishBetSettled(ctx, rec, s.policy); err != nil {
			s.fail("publish")
			s.log.Warn("bet_settled publish failed", zap.String("bet_id", bet.ID), zap.Error(err))
		}
	}
}

func (s *Settler) fail(stage string) {
	if s.OnFailure != nil {
		s.OnFailure(stage)
	}
}

// Final indica se o jogo já permite liquidar as pernas
func Final(g model.Game) bool {
	return g.Status == model.GameCancelled || g.HasFinalScore()
}

// Start roda o job a cada intervalo até o contexto ser cancelado
func (s *Settler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("context canceled, stopping settlement job")
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) && ctx.Err() == nil {
				s.log.Error("settlement run failed", zap.Error(err))
			}
		}
	}
}
