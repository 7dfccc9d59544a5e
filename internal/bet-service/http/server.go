package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/bet-service/dto"
	"github.com/radieske/fantasy-sportsbook/internal/bet-service/placement"
	"github.com/radieske/fantasy-sportsbook/internal/bet-service/repo"
	"github.com/radieske/fantasy-sportsbook/internal/shared/auth"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

type Placer interface {
	Place(ctx context.Context, req placement.Request) (placement.Result, error)
}

type History interface {
	ListBets(ctx context.Context, userID string, limit int) ([]model.UserBet, error)
	GetBet(ctx context.Context, userID, betID string) (model.UserBet, error)
}

type Server struct {
	log      *zap.Logger
	placer   Placer
	history  History
	auth     *auth.Verifier
	validate *validator.Validate
}

func NewServer(log *zap.Logger, p Placer, h History, v *auth.Verifier) *Server {
	return &Server{log: log, placer: p, history: h, auth: v, validate: validator.New()}
}

// Router expõe as rotas de apostas; todas exigem bearer token
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Post("/bets", s.placeBet)   // coloca aposta single ou parlay
		r.Get("/bets", s.listBets)    // histórico do usuário
		r.Get("/bets/{id}", s.getBet) // detalhe de uma aposta
	})
	return r
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "bad_request")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "bad_request")
		return
	}

	ids := make([]string, len(req.Selections))
	for i, sel := range req.Selections {
		ids[i] = sel.AvailableBetID
	}

	res, err := s.placer.Place(r.Context(), placement.Request{
		UserID:     userID,
		Selections: ids,
		StakeCents: req.StakeCents,
		BetType:    model.BetType(req.BetType),
	})
	if err != nil {
		code := placement.Code(err)
		msg := err.Error()
		if code == "internal" {
			// detalhes de infraestrutura ficam só no log
			msg = "could not place bet"
		}
		writeError(w, statusFor(code), msg, code)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{
		BetID:                res.BetID,
		Status:               string(res.Status),
		CombinedOdds:         res.CombinedOdds.StringFixed(2),
		PotentialPayoutCents: res.PotentialPayoutCents,
		NewBalanceCents:      res.NewBalanceCents,
	})
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	bets, err := s.history.ListBets(r.Context(), userID, limit)
	if err != nil {
		s.log.Error("list bets failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list bets", "internal")
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.FromBet(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	id := chi.URLParam(r, "id")

	b, err := s.history.GetBet(r.Context(), userID, id)
	if errors.Is(err, repo.ErrBetNotFound) {
		writeError(w, http.StatusNotFound, "bet not found", "not_found")
		return
	}
	if err != nil {
		s.log.Error("get bet failed", zap.String("bet_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load bet", "internal")
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(b))
}

func statusFor(code string) int {
	switch code {
	case "not_found":
		return http.StatusNotFound
	case "internal":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
