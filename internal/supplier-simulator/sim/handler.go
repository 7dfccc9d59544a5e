package sim

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/feed"
)

const defaultPageLimit = 10

// Server simula o endpoint paginado /v2/events do fornecedor de odds
type Server struct {
	Log     *zap.Logger
	Catalog *Catalog
	APIKey  string // vazio aceita qualquer chave
	Now     func() time.Time

	OnRequest func(status int)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v2/events", s.events)
	return r
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Api-Key")
	if key == "" || (s.APIKey != "" && key != s.APIKey) {
		s.reply(w, http.StatusUnauthorized, feed.Response{Success: false, Error: "invalid api key"})
		return
	}

	q := r.URL.Query()
	league := strings.ToUpper(q.Get("leagueID"))
	if league == "" {
		league = "NFL"
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageLimit
	}
	offset := 0
	if c := q.Get("cursor"); c != "" {
		if offset, err = strconv.Atoi(c); err != nil || offset < 0 {
			s.reply(w, http.StatusBadRequest, feed.Response{Success: false, Error: "invalid cursor"})
			return
		}
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	all := s.Catalog.Events(now, league)
	if q.Get("oddsAvailable") == "true" {
		all = withOdds(all)
	}

	resp := feed.Response{Success: true, Data: []feed.Event{}}
	if offset < len(all) {
		end := min(offset+limit, len(all))
		resp.Data = all[offset:end]
		if end < len(all) {
			resp.NextCursor = strconv.Itoa(end)
		}
	}
	s.Log.Debug("events served",
		zap.String("league", league),
		zap.Int("offset", offset),
		zap.Int("count", len(resp.Data)),
	)
	s.reply(w, http.StatusOK, resp)
}

// withOdds mantém eventos com odds e os já encerrados/cancelados, que ainda
// precisam chegar ao ingest para liquidação
func withOdds(evs []feed.Event) []feed.Event {
	out := evs[:0:0]
	for _, e := range evs {
		if len(e.Odds) > 0 || e.Status.Completed || e.Status.Cancelled {
			out = append(out, e)
		}
	}
	return out
}

func (s *Server) reply(w http.ResponseWriter, status int, v feed.Response) {
	if s.OnRequest != nil {
		s.OnRequest(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
