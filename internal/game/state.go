package game

import (
	"time"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/idle"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/story"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/upgrade"
)

// state is one complete game. Loading builds a new state and swaps it in whole,
// so a failed load never leaves a half-applied game behind.
type state struct {
	clock idle.Clock
	rng   idle.RandomSource

	name               string
	exp                float64
	lifetimeExp        float64
	level              int
	clickMultiplier    float64
	critChance         float64
	critDamage         float64
	idleExpRate        float64
	adventureUnlocked  bool
	meditationUnlocked bool
	saveIntegrity      string
	lastValidation     int64
	lastIdle           time.Time

	upgrades *upgrade.Catalog
	ledger   *stats.Ledger
	actions  *idle.Scheduler
	journal  *story.Evaluator
}

func (g *Game) newState(name string) *state {
	now := g.set.clock.Now()
	s := &state{
		clock:          g.set.clock,
		rng:            g.set.rng,
		name:           name,
		level:          1,
		saveIntegrity:  save.IntegrityValid,
		lastValidation: now.UnixMilli(),
		lastIdle:       now,
	}
	s.upgrades = upgrade.NewCatalog(g.set.upgrades, wallet{s})
	s.ledger = stats.NewLedger()
	s.actions = idle.NewScheduler(schedulerDeps{s},
		idle.WithClock(g.set.clock),
		idle.WithRandom(g.set.rng),
		idle.WithMaxCatchUp(g.set.catchUp),
	)
	s.journal = story.NewEvaluator(g.set.entries, story.WithNow(g.set.clock.Now))
	s.derive()
	return s
}

func (s *state) addExp(amount float64) {
	if amount <= 0 {
		return
	}
	s.exp += amount
	s.lifetimeExp += amount
}

// spend never takes exp below zero.
func (s *state) spend(amount float64) {
	if amount <= 0 {
		return
	}
	s.exp -= amount
	if s.exp < 0 {
		s.exp = 0
	}
}

// derive recomputes every value that follows from upgrades and level.
func (s *state) derive() {
	ups := s.upgrades.List()
	discipline := engine.DisciplineMultiplier(ups)
	s.clickMultiplier = engine.ClickBonus(ups) * engine.ClickPercent(ups) *
		engine.LevelClickMultiplier(s.level) * discipline
	s.idleExpRate = engine.IdleExpRate(ups) * discipline
	s.critChance = engine.CritChance(ups)
	s.critDamage = engine.CritDamage(ups)
}

func (s *state) progress() engine.Progress {
	return engine.Progress{
		LifetimeExp:       s.lifetimeExp,
		Level:             s.level,
		PhysicalStats:     s.ledger.PhysicalLevels(),
		AdventureUnlocked: s.adventureUnlocked,
	}
}

// wallet lets the upgrade catalog read and spend EXP.
type wallet struct{ s *state }

func (w wallet) Exp() float64         { return w.s.exp }
func (w wallet) Spend(amount float64) { w.s.spend(amount) }

// schedulerDeps is the idle scheduler's view of the game.
type schedulerDeps struct{ s *state }

var _ idle.Deps = schedulerDeps{}

func (d schedulerDeps) CurrentExp() float64         { return d.s.exp }
func (d schedulerDeps) CurrentLevel() int           { return d.s.level }
func (d schedulerDeps) GlobalIdleSpeed() float64    { return engine.GlobalIdleSpeed(d.s.upgrades.List()) }
func (d schedulerDeps) ResearchSpeed() float64      { return engine.ResearchSpeed(d.s.upgrades.List()) }
func (d schedulerDeps) ResearchPower() float64      { return engine.ResearchPower(d.s.upgrades.List()) }
func (d schedulerDeps) ResearchPercent() float64    { return engine.ResearchPercent(d.s.upgrades.List()) }
func (d schedulerDeps) ResearchCritChance() float64 { return engine.ResearchCritChance(d.s.upgrades.List()) }
func (d schedulerDeps) ResearchCritDamage() float64 { return engine.ResearchCritDamage(d.s.upgrades.List()) }
func (d schedulerDeps) StudyingSpeed() float64      { return engine.StudyingSpeed(d.s.upgrades.List()) }
func (d schedulerDeps) StatGainBonus() float64      { return engine.StatGainBonus(d.s.upgrades.List()) }
func (d schedulerDeps) StatGainPercent() float64    { return engine.StatGainPercent(d.s.upgrades.List()) }
func (d schedulerDeps) StudyingCritChance() float64 { return engine.StudyingCritChance(d.s.upgrades.List()) }
func (d schedulerDeps) StudyingCritDamage() float64 { return engine.StudyingCritDamage(d.s.upgrades.List()) }

func (d schedulerDeps) DisciplineMultiplier() float64 {
	return engine.DisciplineMultiplier(d.s.upgrades.List())
}

func (d schedulerDeps) StudyingCost(st stats.Stat) float64 {
	return engine.StatTrainingCost(d.s.ledger.Get(st), engine.StudyingCost(d.s.upgrades.List()))
}

func (d schedulerDeps) AddStatExp(st stats.Stat, amount float64) idle.StatGain {
	res, err := d.s.ledger.AddExp(st, amount, engine.MaxStatLevel(d.s.level))
	if err != nil {
		return idle.StatGain{NewLevel: d.s.ledger.Get(st)}
	}
	return idle.StatGain{LeveledUp: res.LeveledUp, Levels: res.Levels, NewLevel: res.NewLevel}
}

func (d schedulerDeps) StatAtCap(st stats.Stat) bool {
	return d.s.ledger.Get(st) >= engine.MaxStatLevel(d.s.level)
}

// storyState is the journal's view of the game.
type storyState struct{ s *state }

var _ story.State = storyState{}

func (v storyState) Exp() float64                { return v.s.exp }
func (v storyState) LifetimeExp() float64        { return v.s.lifetimeExp }
func (v storyState) Level() int                  { return v.s.level }
func (v storyState) StatLevel(st stats.Stat) int { return v.s.ledger.Get(st) }
func (v storyState) PlayerName() string          { return v.s.name }
func (v storyState) AdventureUnlocked() bool     { return v.s.adventureUnlocked }

func (v storyState) UpgradeLevel(id string) (int, bool) {
	u, ok := v.s.upgrades.Get(id)
	return u.CurrentLevel, ok
}
