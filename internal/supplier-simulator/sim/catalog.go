package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/radieske/fantasy-sportsbook/internal/odds-ingest/feed"
)

// gameLength é quanto um jogo simulado fica ao vivo antes de encerrar
const gameLength = 3 * time.Hour

type fixture struct {
	id        string
	home      feed.Team
	away      feed.Team
	qb        feed.Player
	offset    time.Duration // início relativo ao boot do simulador
	cancelled bool
}

func team(id, long, short string) feed.Team {
	return feed.Team{TeamID: id, Names: feed.TeamNames{Long: long, Short: short}}
}

func quarterback(id, first, last, teamID string) feed.Player {
	return feed.Player{PlayerID: id, FirstName: first, LastName: last, TeamID: teamID}
}

// Catálogo fixo de partidas simuladas: jogos já encerrados, um ao vivo,
// vários agendados e um cancelado
func defaultFixtures() []fixture {
	kc := team("KC_NFL", "Kansas City Chiefs", "KC")
	buf := team("BUF_NFL", "Buffalo Bills", "BUF")
	phi := team("PHI_NFL", "Philadelphia Eagles", "PHI")
	dal := team("DAL_NFL", "Dallas Cowboys", "DAL")
	sf := team("SF_NFL", "San Francisco 49ers", "SF")
	sea := team("SEA_NFL", "Seattle Seahawks", "SEA")
	bal := team("BAL_NFL", "Baltimore Ravens", "BAL")
	cin := team("CIN_NFL", "Cincinnati Bengals", "CIN")
	det := team("DET_NFL", "Detroit Lions", "DET")
	gb := team("GB_NFL", "Green Bay Packers", "GB")

	return []fixture{
		{id: "SIM_001", home: kc, away: buf, qb: quarterback("PATRICK_MAHOMES_1_NFL", "Patrick", "Mahomes", kc.TeamID), offset: -5 * time.Hour},
		{id: "SIM_002", home: phi, away: dal, qb: quarterback("JALEN_HURTS_1_NFL", "Jalen", "Hurts", phi.TeamID), offset: -4 * time.Hour},
		{id: "SIM_003", home: sf, away: sea, qb: quarterback("BROCK_PURDY_1_NFL", "Brock", "Purdy", sf.TeamID), offset: -time.Hour},
		{id: "SIM_004", home: bal, away: cin, qb: quarterback("LAMAR_JACKSON_1_NFL", "Lamar", "Jackson", bal.TeamID), offset: 2 * time.Hour},
		{id: "SIM_005", home: det, away: gb, qb: quarterback("JARED_GOFF_1_NFL", "Jared", "Goff", det.TeamID), offset: 26 * time.Hour},
		{id: "SIM_006", home: buf, away: phi, qb: quarterback("JOSH_ALLEN_1_NFL", "Josh", "Allen", buf.TeamID), offset: 50 * time.Hour},
		{id: "SIM_007", home: dal, away: sf, qb: quarterback("DAK_PRESCOTT_1_NFL", "Dak", "Prescott", dal.TeamID), offset: 74 * time.Hour, cancelled: true},
	}
}

// Catalog gera os eventos no formato do fornecedor real a partir do relógio
type Catalog struct {
	boot     time.Time
	fixtures []fixture

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCatalog(boot time.Time, seed int64) *Catalog {
	return &Catalog{boot: boot, fixtures: defaultFixtures(), rnd: rand.New(rand.NewSource(seed))}
}

// Events devolve os eventos da liga ordenados por id; odds oscilam a cada chamada
func (c *Catalog) Events(now time.Time, leagueID string) []feed.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]feed.Event, 0, len(c.fixtures))
	for _, f := range c.fixtures {
		out = append(out, c.event(f, now, leagueID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out
}

func (c *Catalog) event(f fixture, now time.Time, leagueID string) feed.Event {
	start := c.boot.Add(f.offset).UTC().Truncate(time.Second)
	ev := feed.Event{
		EventID:  f.id,
		LeagueID: leagueID,
		Teams:    feed.Teams{Home: f.home, Away: f.away},
		Status:   feed.Status{StartsAt: start},
		Players:  map[string]feed.Player{f.qb.PlayerID: f.qb},
	}

	elapsed := now.Sub(start)
	switch {
	case f.cancelled:
		ev.Status.Cancelled = true
	case elapsed >= gameLength:
		ev.Status.Started, ev.Status.Completed, ev.Status.Ended = true, true, true
		home, away := finalScore(f.id)
		ev.Results = []byte(fmt.Sprintf(`{"game":{"home":{"points":%d},"away":{"points":%d}}}`, home, away))
	case elapsed >= 0:
		ev.Status.Started, ev.Status.Live = true, true
	}

	if !ev.Status.Cancelled && !ev.Status.Completed {
		ev.Odds = c.odds(f)
	}
	return ev
}

// finalScore é determinístico por evento para que reingestões concordem
func finalScore(eventID string) (home, away int) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(eventID))
	v := h.Sum32()
	return 10 + int(v%25), 10 + int((v/25)%25)
}

func (c *Catalog) odds(f fixture) map[string]feed.Odd {
	fav := -110 - c.rnd.Intn(90) // mandante favorito entre -110 e -199
	dog := 100 + c.rnd.Intn(90)
	spread := 1.5 + float64(c.rnd.Intn(6))
	total := 40.5 + float64(c.rnd.Intn(12))
	yards := 220.5 + float64(c.rnd.Intn(60))

	out := map[string]feed.Odd{}
	add := func(o feed.Odd) {
		o.OddID = fmt.Sprintf("%s-%s-%s-%s-%s", o.StatID, o.StatEntityID, o.PeriodID, o.BetTypeID, o.SideID)
		out[o.OddID] = o
	}

	add(feed.Odd{StatID: "points", StatEntityID: "home", PeriodID: "game", BetTypeID: "ml", SideID: "home", FairOdds: american(fav)})
	add(feed.Odd{StatID: "points", StatEntityID: "away", PeriodID: "game", BetTypeID: "ml", SideID: "away", FairOdds: american(dog)})
	add(feed.Odd{StatID: "points", StatEntityID: "home", PeriodID: "game", BetTypeID: "sp", SideID: "home", FairOdds: "-110", FairSpread: signed(-spread)})
	add(feed.Odd{StatID: "points", StatEntityID: "away", PeriodID: "game", BetTypeID: "sp", SideID: "away", FairOdds: "-110", FairSpread: signed(spread)})
	add(feed.Odd{StatID: "points", StatEntityID: "all", PeriodID: "game", BetTypeID: "ou", SideID: "over", FairOdds: american(-105 - c.rnd.Intn(10)), FairOverUnder: line(total)})
	add(feed.Odd{StatID: "points", StatEntityID: "all", PeriodID: "game", BetTypeID: "ou", SideID: "under", FairOdds: american(-105 - c.rnd.Intn(10)), FairOverUnder: line(total)})
	add(feed.Odd{StatID: "points", StatEntityID: "all", PeriodID: "1q", BetTypeID: "ou", SideID: "over", BookOdds: "-115", BookOverUnder: line(total / 4)})
	add(feed.Odd{StatID: "passing_yards", StatEntityID: f.qb.PlayerID, PlayerID: f.qb.PlayerID, PeriodID: "game", BetTypeID: "ou", SideID: "over", FairOdds: "-112", FairOverUnder: line(yards)})
	add(feed.Odd{StatID: "passing_yards", StatEntityID: f.qb.PlayerID, PlayerID: f.qb.PlayerID, PeriodID: "game", BetTypeID: "ou", SideID: "under", FairOdds: "-108", FairOverUnder: line(yards)})
	return out
}

func american(v int) string {
	if v > 0 {
		return "+" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

func line(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func signed(v float64) string {
	if v > 0 {
		return "+" + line(v)
	}
	return line(v)
}
