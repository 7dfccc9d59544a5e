package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/settlement"
)

type Runner interface {
	Run(ctx context.Context) (settlement.Stats, error)
}

// API expõe o gatilho manual da liquidação
type API struct {
	Log    *zap.Logger
	Runner Runner
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/settlement/run", a.run)
	return r
}

// run é idempotente: apostas já liquidadas nunca são reavaliadas
func (a *API) run(w http.ResponseWriter, r *http.Request) {
	st, err := a.Runner.Run(r.Context())
	if errors.Is(err, settlement.ErrAlreadyRunning) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "code": "already_running"})
		return
	}
	if err != nil {
		a.Log.Error("settlement run failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "settlement run failed", "code": "internal"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
