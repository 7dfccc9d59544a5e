package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Targets são as URLs base de cada serviço atrás do gateway
type Targets struct {
	Odds       string
	Wallet     string
	Bet        string
	Settlement string
}

func proxy(to string) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q", to)
	}
	return httputil.NewSingleHostReverseProxy(u), nil
}

// New monta o roteamento público:
//
//	/api/odds/*       -> odds-service (sem o prefixo: /api/odds/v1/games -> /v1/games)
//	/api/wallet*      -> wallet-service (/wallet...)
//	/api/bets*        -> bet-service (/bets...)
//	/api/settlement/* -> settlement-worker (/settlement/run)
func New(t Targets, log *zap.Logger) (http.Handler, error) {
	odds, err := proxy(t.Odds)
	if err != nil {
		return nil, err
	}
	wallet, err := proxy(t.Wallet)
	if err != nil {
		return nil, err
	}
	bet, err := proxy(t.Bet)
	if err != nil {
		return nil, err
	}
	settlement, err := proxy(t.Settlement)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/odds/", http.StripPrefix("/api/odds", odds))
	mux.Handle("/api/wallet", http.StripPrefix("/api", wallet))
	mux.Handle("/api/wallet/", http.StripPrefix("/api", wallet))
	mux.Handle("/api/bets", http.StripPrefix("/api", bet))
	mux.Handle("/api/bets/", http.StripPrefix("/api", bet))
	mux.Handle("/api/settlement/", http.StripPrefix("/api", settlement))

	return withCORS(withAccessLog(mux, log)), nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func withAccessLog(h http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		log.Debug("proxied",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
