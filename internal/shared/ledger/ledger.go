// Package ledger mantém o saldo gastável de cada usuário (profiles) e o
// registro append-only de movimentações (transactions).
//
// Todo ajuste de saldo é um incremento atômico no próprio UPDATE; nunca há
// leitura seguida de escrita de um valor calculado fora do banco.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/fantasy-sportsbook/internal/shared/db"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrProfileNotFound     = errors.New("profile not found")
)

// TxType identifica o evento que alterou (ou auditou) o saldo
type TxType string

const (
	TxBetPlaced TxType = "bet_placed"
	TxBetWon    TxType = "bet_won"
	TxBetLost   TxType = "bet_lost"
	TxBetVoid   TxType = "bet_void"
)

// Entry é uma linha da tabela transactions
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Type        TxType    `json:"type"`
	UserBetID   *string   `json:"user_bet_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reconciliation compara o saldo corrente com a soma do ledger
type Reconciliation struct {
	UserID              string `json:"user_id"`
	BalanceCents        int64  `json:"balance_cents"`
	InitialBalanceCents int64  `json:"initial_balance_cents"`
	LedgerSumCents      int64  `json:"ledger_sum_cents"`
	Consistent          bool   `json:"consistent"`
}

// OpenProfile cria o perfil com o saldo inicial; perfil existente fica como está
func OpenProfile(ctx context.Context, ex db.Execer, userID string, startingCents int64) error {
	if _, err := ex.ExecContext(ctx, `
		INSERT INTO profiles (user_id, balance_cents, initial_balance_cents, version)
		VALUES ($1, $2, $2, 1)
		ON CONFLICT (user_id) DO NOTHING`, userID, startingCents); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}

// EnsureProfile cria o perfil com o saldo inicial se ainda não existir e retorna o saldo atual
func EnsureProfile(ctx context.Context, ex db.Execer, userID string, startingCents int64) (int64, error) {
	if err := OpenProfile(ctx, ex, userID, startingCents); err != nil {
		return 0, err
	}
	return Balance(ctx, ex, userID)
}

// Balance retorna o saldo gastável do usuário
func Balance(ctx context.Context, ex db.Execer, userID string) (int64, error) {
	var bal int64
	err := ex.QueryRowContext(ctx, `SELECT balance_cents FROM profiles WHERE user_id = $1`, userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrProfileNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return bal, nil
}

// Debit subtrai amount de forma condicional: só debita se houver saldo suficiente
func Debit(ctx context.Context, ex db.Execer, userID string, amountCents int64) (int64, error) {
	var bal int64
	err := ex.QueryRowContext(ctx, `
		UPDATE profiles SET balance_cents = balance_cents - $1, version = version + 1
		WHERE user_id = $2 AND balance_cents >= $1
		RETURNING balance_cents`, amountCents, userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientBalance
	}
	if err != nil {
		return 0, fmt.Errorf("debit balance: %w", err)
	}
	return bal, nil
}

// Credit soma amount ao saldo (incremento atômico)
func Credit(ctx context.Context, ex db.Execer, userID string, amountCents int64) (int64, error) {
	var bal int64
	err := ex.QueryRowContext(ctx, `
		UPDATE profiles SET balance_cents = balance_cents + $1, version = version + 1
		WHERE user_id = $2
		RETURNING balance_cents`, amountCents, userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrProfileNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("credit balance: %w", err)
	}
	return bal, nil
}

// Record grava uma entrada imutável no ledger
func Record(ctx context.Context, ex db.Execer, e Entry) (string, error) {
	id := uuid.NewString()
	if _, err := ex.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount_cents, type, user_bet_id)
		VALUES ($1, $2, $3, $4, $5)`,
		id, e.UserID, e.AmountCents, string(e.Type), e.UserBetID,
	); err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	return id, nil
}

// List retorna as movimentações mais recentes do usuário
func List(ctx context.Context, ex db.Execer, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := ex.QueryContext(ctx, `
		SELECT id, user_id, amount_cents, type, user_bet_id, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var typ string
		var betID sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.AmountCents, &typ, &betID, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = TxType(typ)
		if betID.Valid {
			e.UserBetID = &betID.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Reconcile verifica a conservação: saldo − saldo inicial == Σ transactions
func Reconcile(ctx context.Context, ex db.Execer, userID string) (Reconciliation, error) {
	r := Reconciliation{UserID: userID}
	err := ex.QueryRowContext(ctx, `
		SELECT p.balance_cents, p.initial_balance_cents,
		       COALESCE((SELECT SUM(t.amount_cents) FROM transactions t WHERE t.user_id = p.user_id), 0)
		FROM profiles p
		WHERE p.user_id = $1`, userID).Scan(&r.BalanceCents, &r.InitialBalanceCents, &r.LedgerSumCents)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrProfileNotFound
	}
	if err != nil {
		return r, fmt.Errorf("reconcile: %w", err)
	}
	r.Consistent = r.BalanceCents-r.InitialBalanceCents == r.LedgerSumCents
	return r, nil
}
