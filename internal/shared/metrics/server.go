package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthFunc verifica uma dependência (Postgres, Redis, ...)
type HealthFunc func(ctx context.Context) error

// Checks combina várias verificações; a primeira falha interrompe
func Checks(fns ...HealthFunc) HealthFunc {
	return func(ctx context.Context) error {
		for _, fn := range fns {
			if err := fn(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Handler expõe /metrics e /healthz; healthFn nil significa sempre saudável
func Handler(healthFn HealthFunc) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		status, body := http.StatusOK, healthResponse{Status: "ok"}
		if healthFn != nil {
			if err := healthFn(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Error: err.Error()}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
	return mux
}

// StartMetricsServer sobe o servidor lateral de /metrics e /healthz numa goroutine.
// O chamador faz Shutdown no encerramento.
func StartMetricsServer(port string, healthFn HealthFunc) *http.Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           Handler(healthFn),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
