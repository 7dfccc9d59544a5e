package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/feed"
	"github.com/radieske/fantasy-sportsbook/internal/shared/model"
	"github.com/radieske/fantasy-sportsbook/internal/shared/pricing"
)

var ErrMalformedEvent = errors.New("malformed event")

// Motivos de descarte de linhas (não fatais)
const (
	DropUnclassified = "unclassified"
	DropUnmapped     = "unmapped_market"
	DropBadPrice     = "bad_price"
	DropBadLine      = "bad_line"
	DropDuplicate    = "duplicate_selection"
)

// Store é a persistência usada pelo normalizador
type Store interface {
	UpsertGame(ctx context.Context, g model.Game) (string, error)
	// ReplaceAvailableBets desativa as apostas ativas do jogo e insere o novo lote na mesma transação
	ReplaceAvailableBets(ctx context.Context, gameID string, bets []model.AvailableBet) (deactivated int64, err error)
	PromoteStartedGames(ctx context.Context, now time.Time) (promoted int64, closed int64, err error)
}

// RefreshedGame descreve um jogo cujo catálogo de apostas foi regravado
type RefreshedGame struct {
	GameID     string
	ExternalID string
	HomeTeam   string
	AwayTeam   string
	Status     model.GameStatus
	ActiveBets int
}

// Stats agrega o resultado de uma passada de ingestão
type Stats struct {
	EventsSeen      int             `json:"events_seen"`
	EventsProcessed int             `json:"events_processed"`
	EventsFailed    int             `json:"events_failed"`
	GamesUpserted   int             `json:"games_upserted"`
	BetsInserted    int             `json:"bets_inserted"`
	BetsDeactivated int64           `json:"bets_deactivated"`
	Dropped         map[string]int  `json:"dropped"`
	GamesPromoted   int64           `json:"games_promoted"`
	BetsClosed      int64           `json:"bets_closed"`
	Refreshed       []RefreshedGame `json:"-"`
}

func newStats() Stats { return Stats{Dropped: map[string]int{}} }

// Normalizer converte eventos do feed no catálogo local de apostas
type Normalizer struct {
	store   Store
	catalog Catalog
	log     *zap.Logger

	OnDrop func(reason string) // métricas
}

func New(store Store, catalog Catalog, log *zap.Logger) *Normalizer {
	return &Normalizer{store: store, catalog: catalog, log: log}
}

// Ingest processa os eventos sequencialmente; a falha de um evento não interrompe os demais
func (n *Normalizer) Ingest(ctx context.Context, events []feed.Event) Stats {
	st := newStats()
	for _, ev := range events {
		st.EventsSeen++
		if err := n.processEvent(ctx, ev, &st); err != nil {
			st.EventsFailed++
			n.log.Warn("event ingestion failed", zap.String("event_id", ev.EventID), zap.Error(err))
			continue
		}
		st.EventsProcessed++
	}
	return st
}

// Promote passa para live os jogos agendados cujo horário já passou e fecha as apostas
// de todo jogo que não está mais aberto. Depende só do relógio, não de odds novas.
func (n *Normalizer) Promote(ctx context.Context, now time.Time, st *Stats) error {
	promoted, closed, err := n.store.PromoteStartedGames(ctx, now)
	if err != nil {
		return fmt.Errorf("promote started games: %w", err)
	}
	st.GamesPromoted += promoted
	st.BetsClosed += closed
	return nil
}

func (n *Normalizer) processEvent(ctx context.Context, ev feed.Event, st *Stats) error {
	game, err := BuildGame(ev)
	if err != nil {
		return err
	}
	gameID, err := n.store.UpsertGame(ctx, game)
	if err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}
	st.GamesUpserted++

	if len(ev.Odds) == 0 {
		return nil
	}

	bets := n.buildBets(ev, game, gameID, st)
	deactivated, err := n.store.ReplaceAvailableBets(ctx, gameID, bets)
	if err != nil {
		return fmt.Errorf("replace available bets: %w", err)
	}
	st.BetsInserted += len(bets)
	st.BetsDeactivated += deactivated
	active := 0
	for _, b := range bets {
		if b.Active {
			active++
		}
	}
	st.Refreshed = append(st.Refreshed, RefreshedGame{
		GameID:     gameID,
		ExternalID: game.ExternalID,
		HomeTeam:   game.HomeTeam,
		AwayTeam:   game.AwayTeam,
		Status:     game.Status,
		ActiveBets: active,
	})
	return nil
}

// BuildGame valida o evento e monta a linha de games
func BuildGame(ev feed.Event) (model.Game, error) {
	home := strings.TrimSpace(ev.Teams.Home.Name())
	away := strings.TrimSpace(ev.Teams.Away.Name())
	if ev.EventID == "" || home == "" || away == "" {
		return model.Game{}, fmt.Errorf("%w: missing event id or team names", ErrMalformedEvent)
	}
	if ev.Status.StartsAt.IsZero() {
		return model.Game{}, fmt.Errorf("%w: missing start time", ErrMalformedEvent)
	}

	g := model.Game{
		ExternalID: ev.EventID,
		HomeTeam:   home,
		AwayTeam:   away,
		StartTime:  ev.Status.StartsAt.UTC(),
		Status:     mapStatus(ev.Status),
	}
	if len(ev.Results) > 0 && json.Valid(ev.Results) {
		g.RawResult = ev.Results
	}
	if g.Status == model.GameCompleted {
		g.HomeScore = ev.Points("game", "home")
		g.AwayScore = ev.Points("game", "away")
	}
	return g, nil
}

func mapStatus(s feed.Status) model.GameStatus {
	switch {
	case s.Cancelled:
		return model.GameCancelled
	case s.Completed || s.Ended:
		return model.GameCompleted
	case s.Started || s.Live:
		return model.GameLive
	default:
		return model.GameScheduled
	}
}

// buildBets classifica cada linha (em ordem estável de oddID) e descarta as inválidas
func (n *Normalizer) buildBets(ev feed.Event, game model.Game, gameID string, st *Stats) []model.AvailableBet {
	keys := make([]string, 0, len(ev.Odds))
	for k := range ev.Odds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[string]struct{}, len(keys))
	out := make([]model.AvailableBet, 0, len(keys))
	for _, k := range keys {
		odd := ev.Odds[k]
		bet, reason := n.buildBet(odd, ev, game)
		if reason != "" {
			n.drop(st, reason, ev.EventID, k)
			continue
		}
		dedup := fmt.Sprintf("%d|%s", bet.MarketTypeID, bet.Selection)
		if _, dup := seen[dedup]; dup {
			n.drop(st, DropDuplicate, ev.EventID, k)
			continue
		}
		seen[dedup] = struct{}{}
		bet.GameID = gameID
		// jogo que já começou continua recebendo cotações, mas nada nasce apostável
		bet.Active = game.Status == model.GameScheduled
		out = append(out, bet)
	}
	return out
}

func (n *Normalizer) drop(st *Stats, reason, eventID, oddID string) {
	st.Dropped[reason]++
	if n.OnDrop != nil {
		n.OnDrop(reason)
	}
	n.log.Debug("odds line dropped",
		zap.String("event_id", eventID),
		zap.String("odd_id", oddID),
		zap.String("reason", reason),
	)
}

// buildBet devolve a aposta ou o motivo do descarte
func (n *Normalizer) buildBet(odd feed.Odd, ev feed.Event, game model.Game) (model.AvailableBet, string) {
	c := Classify(odd, ev.Players)
	if c.Kind == KindUnmapped {
		return model.AvailableBet{}, DropUnclassified
	}
	mt, ok := n.catalog.Lookup(c.MarketKey)
	if !ok {
		return model.AvailableBet{}, DropUnmapped
	}

	price, err := pricing.AmericanToDecimal(odd.Price())
	if err != nil {
		return model.AvailableBet{}, DropBadPrice
	}
	// favorito extremo pode arredondar para 1.00; o schema exige odds > 1
	odds := pricing.RoundOdds(price)
	if odds.LessThanOrEqual(decimal.NewFromInt(1)) {
		return model.AvailableBet{}, DropBadPrice
	}

	var line *float64
	switch c.BetType {
	case betSpread:
		v, err := parseLine(odd.Spread())
		if err != nil {
			return model.AvailableBet{}, DropBadLine
		}
		line = &v
	case betOverUnder:
		v, err := parseLine(odd.OverUnder())
		if err != nil {
			return model.AvailableBet{}, DropBadLine
		}
		line = &v
	}

	return model.AvailableBet{
		MarketTypeID: mt.ID,
		MarketKey:    mt.MarketKey,
		Selection:    Label(c, game, line),
		Side:         c.Side,
		Odds:         odds,
		Line:         line,
	}, ""
}

func parseLine(s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	if s == "" {
		return 0, errors.New("empty line")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite line %q", s)
	}
	return v, nil
}

// Label monta o texto da seleção: time/jogador + direção/lado + linha (uma casa decimal)
func Label(c Classification, game model.Game, line *float64) string {
	subject := ""
	switch {
	case c.Kind == KindPlayerProp:
		subject = c.PlayerName
	case c.Entity == "home" || (c.Entity == "all" && c.Side == "home"):
		subject = game.HomeTeam
	case c.Entity == "away" || (c.Entity == "all" && c.Side == "away"):
		subject = game.AwayTeam
	}
	// moneyline/spread: o lado define o time
	if c.BetType == betMoneyline || c.BetType == betSpread {
		if c.Side == "home" {
			subject = game.HomeTeam
		} else if c.Side == "away" {
			subject = game.AwayTeam
		}
	}

	parts := make([]string, 0, 3)
	if subject != "" {
		parts = append(parts, subject)
	}
	switch c.BetType {
	case betSpread:
		if line != nil {
			parts = append(parts, pricing.FormatSignedLine(*line))
		}
	case betOverUnder, betYesNo:
		parts = append(parts, titleWord(c.Side))
		if line != nil {
			parts = append(parts, pricing.FormatLine(*line))
		}
	}
	return strings.Join(parts, " ")
}
