// Package placement valida e registra apostas contra o catálogo e o saldo do usuário.
//
// A validação roda em ordem (formato, categoria, seleções, saldo) e qualquer
// rejeição retorna antes de tocar no banco. O registro é uma única transação
// feita pelo Store: débito condicional, nova checagem das seleções, aposta,
// pernas e lançamento no ledger.
package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
	"github.com/radieske/fantasy-sportsbook/internal/shared/pricing"
)

// Leg é uma seleção já carregada junto do jogo a que pertence
type Leg struct {
	Bet  model.AvailableBet
	Game model.Game
}

// Commit é tudo que o Store precisa para gravar a aposta atomicamente
type Commit struct {
	BetID                string
	UserID               string
	StakeCents           int64
	BetType              model.BetType
	CombinedOdds         decimal.Decimal
	PotentialPayoutCents int64
	Legs                 []Leg
	Now                  time.Time
	// perfil criado dentro do commit se o usuário ainda não tiver um
	StartingBalanceCents int64
}

type Store interface {
	LoadLegs(ctx context.Context, availableBetIDs []string) (map[string]Leg, error)
	// Balance não cria o perfil: usuário sem perfil vale startingCents
	Balance(ctx context.Context, userID string, startingCents int64) (int64, error)
	// Commit devolve o novo saldo. Rejeições detectadas dentro da transação usam os
	// mesmos sentinelas da validação; falha no COMMIT vem como ErrCommitUnknown.
	Commit(ctx context.Context, c Commit) (int64, error)
	// Compensate desfaz uma aposta cujo commit tem resultado desconhecido
	Compensate(ctx context.Context, betID string) (refunded bool, err error)
}

type Publisher interface {
	PublishBetPlaced(ctx context.Context, c Commit, newBalanceCents int64) error
}

type Request struct {
	UserID     string
	Selections []string // ids de AvailableBet, na ordem enviada
	StakeCents int64
	BetType    model.BetType
	Now        time.Time // zero = relógio do Placer
}

type Result struct {
	BetID                string
	Status               model.BetStatus
	CombinedOdds         decimal.Decimal
	PotentialPayoutCents int64
	NewBalanceCents      int64
}

type Placer struct {
	store           Store
	log             *zap.Logger
	startingBalance int64

	Publisher Publisher        // opcional
	Now       func() time.Time // testes
	OnResult  func(code string)
}

func NewPlacer(store Store, startingBalanceCents int64, log *zap.Logger) *Placer {
	return &Placer{store: store, startingBalance: startingBalanceCents, log: log, Now: time.Now}
}

func (p *Placer) Place(ctx context.Context, req Request) (Result, error) {
	res, err := p.place(ctx, req)
	if p.OnResult != nil {
		p.OnResult(Code(err))
	}
	return res, err
}

func (p *Placer) place(ctx context.Context, req Request) (Result, error) {
	if err := validateShape(req); err != nil {
		return Result{}, err
	}
	now := req.Now
	if now.IsZero() {
		now = p.Now()
	}

	// ids que não são uuid não podem existir no catálogo
	lookup := make([]string, 0, len(req.Selections))
	for _, id := range req.Selections {
		if _, err := uuid.Parse(id); err == nil {
			lookup = append(lookup, id)
		}
	}
	found := map[string]Leg{}
	if len(lookup) > 0 {
		var err error
		found, err = p.store.LoadLegs(ctx, lookup)
		if err != nil {
			p.log.Error("load selections failed", zap.Error(err))
			return Result{}, fmt.Errorf("%w: load selections", ErrInternal)
		}
	}

	legs := make([]Leg, 0, len(req.Selections))
	for _, id := range req.Selections {
		leg, ok := found[id]
		if !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := CheckLeg(leg, now); err != nil {
			return Result{}, fmt.Errorf("%w: %s", err, id)
		}
		legs = append(legs, leg)
	}

	balance, err := p.store.Balance(ctx, req.UserID, p.startingBalance)
	if err != nil {
		p.log.Error("read balance failed", zap.String("user_id", req.UserID), zap.Error(err))
		return Result{}, fmt.Errorf("%w: profile", ErrInternal)
	}
	if balance < req.StakeCents {
		return Result{}, ErrInsufficientBalance
	}

	prices := make([]decimal.Decimal, len(legs))
	for i, l := range legs {
		prices[i] = l.Bet.Odds
	}
	combined := pricing.CombinedOdds(prices...)

	c := Commit{
		BetID:                uuid.NewString(),
		UserID:               req.UserID,
		StakeCents:           req.StakeCents,
		BetType:              req.BetType,
		CombinedOdds:         combined,
		PotentialPayoutCents: pricing.PotentialPayoutCents(req.StakeCents, combined),
		Legs:                 legs,
		Now:                  now,
		StartingBalanceCents: p.startingBalance,
	}

	newBalance, err := p.store.Commit(ctx, c)
	if err != nil {
		return Result{}, p.commitFailed(ctx, c, err)
	}

	if p.Publisher != nil {
		if err := p.Publisher.PublishBetPlaced(ctx, c, newBalance); err != nil {
			p.log.Warn("bet_placed publish failed", zap.String("bet_id", c.BetID), zap.Error(err))
		}
	}

	p.log.Info("bet placed",
		zap.String("bet_id", c.BetID),
		zap.String("user_id", c.UserID),
		zap.String("bet_type", string(c.BetType)),
		zap.Int64("stake_cents", c.StakeCents),
		zap.String("combined_odds", combined.StringFixed(4)),
		zap.Int64("new_balance_cents", newBalance),
	)
	return Result{
		BetID:                c.BetID,
		Status:               model.BetPending,
		CombinedOdds:         combined,
		PotentialPayoutCents: c.PotentialPayoutCents,
		NewBalanceCents:      newBalance,
	}, nil
}

// commitFailed separa rejeições detectadas na transação (condições mudaram entre a
// validação e o commit) de falhas de infraestrutura
func (p *Placer) commitFailed(ctx context.Context, c Commit, err error) error {
	for _, rejection := range []error{ErrInsufficientBalance, ErrNotFound, ErrBetInactive, ErrGameNotOpen} {
		if errors.Is(err, rejection) {
			return err
		}
	}

	p.log.Error("CRITICAL: bet commit failed",
		zap.String("bet_id", c.BetID),
		zap.String("user_id", c.UserID),
		zap.Int64("stake_cents", c.StakeCents),
		zap.Error(err),
	)
	if errors.Is(err, ErrCommitUnknown) {
		refunded, cerr := p.store.Compensate(ctx, c.BetID)
		if cerr != nil {
			p.log.Error("CRITICAL: bet compensation failed, manual reconciliation required",
				zap.String("bet_id", c.BetID),
				zap.String("user_id", c.UserID),
				zap.Error(cerr),
			)
		} else {
			p.log.Warn("bet compensated", zap.String("bet_id", c.BetID), zap.Bool("refunded", refunded))
		}
	}
	return fmt.Errorf("%w: commit bet", ErrInternal)
}

func validateShape(req Request) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: missing user", ErrBadRequest)
	}
	if len(req.Selections) == 0 {
		return fmt.Errorf("%w: at least one selection is required", ErrBadRequest)
	}
	if req.StakeCents <= 0 {
		return fmt.Errorf("%w: stake must be positive", ErrBadRequest)
	}
	switch req.BetType {
	case model.BetSingle:
		if len(req.Selections) != 1 {
			return fmt.Errorf("%w: single bet requires exactly one selection", ErrBadRequest)
		}
	case model.BetParlay:
	default:
		return fmt.Errorf("%w: unknown bet type %q", ErrBadRequest, req.BetType)
	}

	seen := make(map[string]struct{}, len(req.Selections))
	for _, id := range req.Selections {
		if id == "" {
			return fmt.Errorf("%w: empty selection id", ErrBadRequest)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate selection %s", ErrBadRequest, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// CheckLeg aplica as regras de elegibilidade de uma seleção. Também é usada pelo
// Store na nova checagem dentro da transação.
func CheckLeg(l Leg, now time.Time) error {
	if !l.Bet.Active {
		return ErrBetInactive
	}
	if !l.Game.OpenForBetting(now) {
		return ErrGameNotOpen
	}
	return nil
}
