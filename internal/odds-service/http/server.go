package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-service/dto"
	"github.com/radieske/fantasy-sportsbook/internal/odds-service/repo"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
)

// Reader é o acesso de leitura ao Postgres
type Reader interface {
	ListGames(ctx context.Context, status string) ([]model.Game, error)
	GetGame(ctx context.Context, id string) (model.Game, error)
	ListActiveBets(ctx context.Context, gameID string) ([]model.AvailableBet, error)
	ListMarketTypes(ctx context.Context) ([]model.MarketType, error)
}

// Cache de respostas; falhas de cache nunca derrubam a leitura
type Cache interface {
	GetGames(ctx context.Context) ([]dto.Game, bool)
	SetGames(ctx context.Context, games []dto.Game) error
	GetBets(ctx context.Context, gameID string) ([]dto.AvailableBet, bool)
	SetBets(ctx context.Context, gameID string, bets []dto.AvailableBet) error
}

// API expõe os endpoints REST de consulta de jogos e odds
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	Log      *zap.Logger
	ReadRepo Reader
	Cache    Cache
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/games", a.listGames)              // jogos abertos ou em andamento (?status= filtra)
	r.Get("/v1/games/{id}", a.getGame)           // detalhe do jogo, inclusive placar final
	r.Get("/v1/games/{id}/bets", a.listBets)     // seleções ativas do jogo
	r.Get("/v1/market-types", a.listMarketTypes) // catálogo de mercados
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) fail(w http.ResponseWriter, op string, err error) {
	a.Log.Error(op+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: op + " failed", Code: "internal"})
}

func (a *API) listGames(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		if games, ok := a.Cache.GetGames(r.Context()); ok {
			writeJSON(w, http.StatusOK, games)
			return
		}
	}

	games, err := a.ReadRepo.ListGames(r.Context(), status)
	if err != nil {
		a.fail(w, "list games", err)
		return
	}
	out := make([]dto.Game, 0, len(games))
	for _, g := range games {
		out = append(out, dto.FromGame(g))
	}
	if status == "" {
		if err := a.Cache.SetGames(r.Context(), out); err != nil {
			a.Log.Warn("cache set games", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getGame(w http.ResponseWriter, r *http.Request) {
	g, err := a.ReadRepo.GetGame(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repo.ErrGameNotFound) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "game not found", Code: "not_found"})
		return
	}
	if err != nil {
		a.fail(w, "get game", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromGame(g))
}

// listBets retorna as seleções ativas, preferencialmente do cache
func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if bets, ok := a.Cache.GetBets(r.Context(), id); ok {
		writeJSON(w, http.StatusOK, bets)
		return
	}

	if _, err := a.ReadRepo.GetGame(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrGameNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "game not found", Code: "not_found"})
			return
		}
		a.fail(w, "get game", err)
		return
	}

	bets, err := a.ReadRepo.ListActiveBets(r.Context(), id)
	if err != nil {
		a.fail(w, "list bets", err)
		return
	}
	out := make([]dto.AvailableBet, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.FromAvailableBet(b))
	}
	if err := a.Cache.SetBets(r.Context(), id, out); err != nil {
		a.Log.Warn("cache set bets", zap.String("game_id", id), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) listMarketTypes(w http.ResponseWriter, r *http.Request) {
	mts, err := a.ReadRepo.ListMarketTypes(r.Context())
	if err != nil {
		a.fail(w, "list market types", err)
		return
	}
	out := make([]dto.MarketType, 0, len(mts))
	for _, m := range mts {
		out = append(out, dto.MarketType{ID: m.ID, MarketKey: m.MarketKey, Name: m.Name})
	}
	writeJSON(w, http.StatusOK, out)
}
