package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/shared/auth"
	"github.com/radieske/fantasy-sportsbook/internal/shared/ledger"
	"github.com/radieske/fantasy-sportsbook/internal/wallet-service/dto"
)

// Repo define as operações de carteira usadas pelo handler HTTP
type Repo interface {
	GetOrCreateWallet(ctx context.Context, userID string) (int64, error)
	Transactions(ctx context.Context, userID string, limit int) ([]ledger.Entry, error)
	Reconcile(ctx context.Context, userID string) (ledger.Reconciliation, error)
}

// Server expõe a carteira do usuário autenticado
type Server struct {
	log  *zap.Logger
	repo Repo
	auth *auth.Verifier
}

func NewServer(log *zap.Logger, repo Repo, v *auth.Verifier) *Server {
	return &Server{log: log, repo: repo, auth: v}
}

// Router retorna as rotas da API de wallet; o usuário vem sempre do bearer token
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.auth.Middleware)
	r.Get("/wallet", s.getWallet)           // saldo (cria o perfil no primeiro acesso)
	r.Get("/wallet/transactions", s.listTx) // movimentações mais recentes
	r.Get("/wallet/reconcile", s.reconcile) // saldo − inicial vs Σ movimentações
	return r
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	bal, err := s.repo.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		s.internal(w, "get wallet", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: userID, BalanceCents: bal})
}

func (s *Server) listTx(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.repo.Transactions(r.Context(), userID, limit)
	if err != nil {
		s.internal(w, "list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TransactionsResponse{UserID: userID, Transactions: entries})
}

func (s *Server) reconcile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	rec, err := s.repo.Reconcile(r.Context(), userID)
	if errors.Is(err, ledger.ErrProfileNotFound) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "wallet not found", Code: "not_found"})
		return
	}
	if err != nil {
		s.internal(w, "reconcile", err)
		return
	}
	if !rec.Consistent {
		s.log.Error("ledger mismatch",
			zap.String("user_id", userID),
			zap.Int64("balance_cents", rec.BalanceCents),
			zap.Int64("initial_balance_cents", rec.InitialBalanceCents),
			zap.Int64("ledger_sum_cents", rec.LedgerSumCents),
		)
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) internal(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: op + " failed", Code: "internal"})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
