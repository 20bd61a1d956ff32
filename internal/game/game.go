package game

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/idle"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/metrics"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/story"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/upgrade"
)

// MaxNameLength bounds player names, in runes.
const MaxNameLength = 32

type settings struct {
	clock    idle.Clock
	rng      idle.RandomSource
	catchUp  int
	upgrades []engine.Upgrade
	entries  []story.Entry
	name     string
}

type Option func(*settings)

func WithClock(c idle.Clock) Option { return func(s *settings) { s.clock = c } }

func WithRandom(r idle.RandomSource) Option { return func(s *settings) { s.rng = r } }

// WithCatchUp caps how many times one Advance may complete the same action.
func WithCatchUp(n int) Option { return func(s *settings) { s.catchUp = n } }

// WithUpgrades replaces the embedded upgrade catalog.
func WithUpgrades(defs []engine.Upgrade) Option { return func(s *settings) { s.upgrades = defs } }

// WithStory replaces the embedded journal.
func WithStory(entries []story.Entry) Option { return func(s *settings) { s.entries = entries } }

// WithName sets the name of a new player.
func WithName(name string) Option { return func(s *settings) { s.name = name } }

// Game is the single mutation boundary over the whole progression state.
// It is not safe for concurrent use.
type Game struct {
	set settings
	s   *state
}

func New(opts ...Option) (*Game, error) {
	set := settings{
		clock:   idle.RealClock{},
		rng:     idle.NewSeededRand(uint64(time.Now().UnixNano())),
		catchUp: 1,
		name:    engine.DefaultPlayerName,
	}
	for _, opt := range opts {
		opt(&set)
	}
	if set.upgrades == nil {
		defs, err := upgrade.DefaultDefinitions()
		if err != nil {
			return nil, err
		}
		set.upgrades = defs
	}
	if set.entries == nil {
		entries, err := story.DefaultEntries()
		if err != nil {
			return nil, err
		}
		set.entries = entries
	}
	if strings.TrimSpace(set.name) == "" {
		set.name = engine.DefaultPlayerName
	}

	g := &Game{set: set}
	g.s = g.newState(set.name)
	return g, nil
}

func (g *Game) Name() string             { return g.s.name }
func (g *Game) Exp() float64             { return g.s.exp }
func (g *Game) LifetimeExp() float64     { return g.s.lifetimeExp }
func (g *Game) Level() int               { return g.s.level }
func (g *Game) ClickMultiplier() float64 { return g.s.clickMultiplier }
func (g *Game) CritChance() float64      { return g.s.critChance }
func (g *Game) CritDamage() float64      { return g.s.critDamage }
func (g *Game) IdleExpRate() float64     { return g.s.idleExpRate }
func (g *Game) AdventureUnlocked() bool  { return g.s.adventureUnlocked }
func (g *Game) SaveIntegrity() string    { return g.s.saveIntegrity }

// Now reads the game clock.
func (g *Game) Now() time.Time { return g.set.clock.Now() }

// SetName renames the player.
func (g *Game) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return engine.ValidationError{Field: "name", Reason: "name is required"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return engine.ValidationError{Field: "name", Reason: "name is longer than " + strconv.Itoa(MaxNameLength) + " characters"}
	}
	g.s.name = name
	return nil
}

type ClickResult struct {
	Gained float64
	Crit   bool
}

// Click grants one click worth of EXP.
func (g *Game) Click() ClickResult {
	s := g.s
	res := ClickResult{Gained: s.clickMultiplier}
	if s.rng.Float64() < s.critChance {
		res.Crit = true
		res.Gained *= 1 + s.critDamage
	}
	s.addExp(res.Gained)
	metrics.IncClick()
	metrics.AddExp("click", res.Gained)
	return res
}

// AdvanceResult is everything one Advance changed.
type AdvanceResult struct {
	Completions []idle.Completion
	IdleExp     float64
	Unlocked    []story.Entry
	Unread      int
}

// Advance accrues passive EXP, updates the idle actions, applies their rewards
// and then scans the journal for newly met triggers.
func (g *Game) Advance() AdvanceResult {
	s := g.s
	var res AdvanceResult

	now := s.clock.Now()
	if elapsed := now.Sub(s.lastIdle); elapsed > 0 {
		if s.idleExpRate > 0 {
			res.IdleExp = s.idleExpRate * elapsed.Seconds()
			s.addExp(res.IdleExp)
			metrics.AddExp("idle", res.IdleExp)
		}
		s.lastIdle = now
	}

	res.Completions = s.actions.Update()
	for _, c := range res.Completions {
		s.addExp(c.ExpGained)
		s.spend(c.ExpCost)
		if c.Unlocks == idle.UnlockAdventureMode {
			s.adventureUnlocked = true
		}
		metrics.IncCompletion(string(c.Kind), c.Crit)
		metrics.AddExp(string(c.Kind), c.ExpGained)
	}

	if engine.ShowMeditation(s.progress()) {
		s.meditationUnlocked = true
	}

	check := g.CheckStory()
	res.Unlocked = check.NewlyUnlocked
	res.Unread = check.TotalUnread
	return res
}

// CheckStory unlocks every journal entry whose trigger now holds.
func (g *Game) CheckStory() story.CheckResult {
	check := g.s.journal.CheckForUpdates(storyState{g.s})
	for _, en := range check.NewlyUnlocked {
		metrics.IncUnlock(strconv.Itoa(en.Chapter))
	}
	return check
}

func (g *Game) LevelUpCost() float64 { return engine.LevelCost(g.s.level) }

func (g *Game) CanLevelUp() bool { return g.s.exp >= g.LevelUpCost() }

// LevelUp spends the level cost and raises the character level.
func (g *Game) LevelUp() bool {
	if !g.CanLevelUp() {
		return false
	}
	g.s.spend(g.LevelUpCost())
	g.s.level++
	g.s.derive()
	return true
}

// Upgrades lists every upgrade sorted by id.
func (g *Game) Upgrades() []engine.Upgrade { return g.s.upgrades.List() }

// VisibleUpgrades lists the upgrades the current level may see.
func (g *Game) VisibleUpgrades() []engine.Upgrade { return g.s.upgrades.Visible(g.s.level) }

func (g *Game) Upgrade(id string) (engine.Upgrade, bool) { return g.s.upgrades.Get(id) }
func (g *Game) UpgradeCost(id string) float64            { return g.s.upgrades.Cost(id) }
func (g *Game) CanPurchase(id string) bool               { return g.s.upgrades.CanPurchase(id) }

// Purchase buys one level of id and re-derives every multiplier on success.
func (g *Game) Purchase(id string) upgrade.PurchaseResult {
	res := g.s.upgrades.Purchase(id)
	if !res.OK {
		metrics.IncPurchase(id, string(res.Reason))
		return res
	}
	metrics.IncPurchase(id, "ok")
	g.s.derive()
	return res
}

func (g *Game) Actions(grp idle.Group) []idle.Action { return g.s.actions.Actions(grp) }

func (g *Game) Action(grp idle.Group, id string) (idle.Action, bool) {
	return g.s.actions.Action(grp, id)
}

func (g *Game) ActiveAction(grp idle.Group) (idle.Action, bool) { return g.s.actions.Active(grp) }

// StartAction starts id and charges its start cost. It returns the EXP spent.
func (g *Game) StartAction(grp idle.Group, id string) (float64, bool) {
	cost := g.s.actions.StartCost(grp, id)
	if !g.s.actions.Start(grp, id) {
		return 0, false
	}
	g.s.spend(cost)
	return cost, true
}

// StopAction stops id. Progress is lost and nothing is refunded.
func (g *Game) StopAction(grp idle.Group, id string) { g.s.actions.Stop(grp, id) }

func (g *Game) Stats() stats.Snapshot { return g.s.ledger.Snapshot() }

func (g *Game) StatLevel(st stats.Stat) int { return g.s.ledger.Get(st) }

// StatCap is the highest level stat training may reach at the current level.
func (g *Game) StatCap() int { return engine.MaxStatLevel(g.s.level) }

// StatLevelCost is the stat experience st needs for its next level.
func (g *Game) StatLevelCost(st stats.Stat) float64 { return g.s.ledger.LevelCost(st) }

// TrainingCost is the EXP one training session of st costs.
func (g *Game) TrainingCost(st stats.Stat) float64 { return schedulerDeps{g.s}.StudyingCost(st) }

func (g *Game) IncreaseStat(st stats.Stat, amount int) (stats.IncreaseResult, error) {
	return g.s.ledger.Increase(st, amount)
}

// Progress is the state the feature gates read.
func (g *Game) Progress() engine.Progress { return g.s.progress() }

func (g *Game) ShowHeader() bool    { return engine.ShowHeader(g.s.progress()) }
func (g *Game) ShowMenu() bool      { return engine.ShowMenu(g.s.progress()) }
func (g *Game) ShowUpgrades() bool  { return engine.ShowUpgrades(g.s.progress()) }
func (g *Game) ShowTraining() bool  { return engine.ShowTraining(g.s.progress()) }
func (g *Game) ShowStats() bool     { return engine.ShowStats(g.s.progress()) }
func (g *Game) ShowAdventure() bool { return engine.ShowAdventure(g.s.progress()) }

// ShowMeditation stays true once every physical stat has reached the threshold.
func (g *Game) ShowMeditation() bool {
	return g.s.meditationUnlocked || engine.ShowMeditation(g.s.progress())
}

// Gate returns an engine.GateError while f is locked.
func (g *Game) Gate(f engine.Feature) error {
	if f == engine.FeatureMeditation && g.s.meditationUnlocked {
		return nil
	}
	return engine.Gate(f, g.s.progress())
}

// ClickText is the hint shown under the click target.
func (g *Game) ClickText() string {
	if g.CanLevelUp() {
		return "level up available"
	}
	if g.ShowUpgrades() {
		for _, u := range g.s.upgrades.List() {
			if g.s.upgrades.CanPurchase(u.ID) {
				return "upgrade available"
			}
		}
	}
	if g.s.lifetimeExp == 0 {
		return "click me"
	}
	return ""
}

// Journal returns the unlocked entries in scan order.
func (g *Game) Journal() []story.Entry {
	var out []story.Entry
	for _, en := range g.s.journal.Entries() {
		if en.Unlocked {
			out = append(out, en)
		}
	}
	return out
}

func (g *Game) JournalEntry(id string) (story.Entry, bool) { return g.s.journal.Entry(id) }
func (g *Game) JournalQueue() []story.Entry                { return g.s.journal.Queue() }
func (g *Game) UnreadCount() int                           { return g.s.journal.UnreadCount() }
func (g *Game) DismissEntry(id string) bool                { return g.s.journal.Dismiss(id) }
func (g *Game) UnlockEntry(id string) bool                 { return g.s.journal.Unlock(id) }
func (g *Game) UnlockedChapters() []int                    { return g.s.journal.UnlockedChapters() }

func (g *Game) ChapterEntries(chapter int) []story.Entry {
	return g.s.journal.ChapterEntries(chapter)
}

func (g *Game) AcknowledgeEntry(id string) story.AcknowledgeResult {
	return g.s.journal.Acknowledge(id)
}

// HardReset starts over. The name survives only when preserveName is set.
func (g *Game) HardReset(preserveName bool) {
	name := engine.DefaultPlayerName
	if preserveName {
		name = g.s.name
	}
	g.s = g.newState(name)
}

var _ save.Source = (*Game)(nil)
