package idle

import (
	"math"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
)

// Deps is everything the scheduler reads from, or writes to, the rest of the game.
type Deps interface {
	CurrentExp() float64
	CurrentLevel() int

	GlobalIdleSpeed() float64
	ResearchSpeed() float64
	ResearchPower() float64
	ResearchPercent() float64
	ResearchCritChance() float64
	ResearchCritDamage() float64
	DisciplineMultiplier() float64

	StudyingSpeed() float64
	StudyingCost(st stats.Stat) float64
	StatGainBonus() float64
	StatGainPercent() float64
	StudyingCritChance() float64
	StudyingCritDamage() float64
	AddStatExp(st stats.Stat, amount float64) StatGain
	StatAtCap(st stats.Stat) bool
}

// StatGain is what Deps.AddStatExp reports back.
type StatGain struct {
	LeveledUp bool
	Levels    int
	NewLevel  int
}

// Completion describes one finished cycle of an action.
type Completion struct {
	Group    Group
	ActionID string
	Kind     Kind

	// ExpGained is character EXP to credit.
	ExpGained float64
	// StatExpGained was already applied through Deps.AddStatExp.
	StatExpGained float64
	// StatGained is set when the stat levelled up.
	StatGained *StatGain
	Stat       stats.Stat

	// ExpCost must be deducted by the caller to pay for the restarted cycle.
	ExpCost        float64
	ShouldContinue bool
	Crit           bool
	Unlocks        string
}

// Scheduler owns the training and meditation action groups.
type Scheduler struct {
	deps       Deps
	clock      Clock
	rng        RandomSource
	maxCatchUp int

	groups map[Group]map[string]*Action
	order  map[Group][]string
}

type Option func(*Scheduler)

func WithClock(c Clock) Option { return func(s *Scheduler) { s.clock = c } }

func WithRandom(r RandomSource) Option { return func(s *Scheduler) { s.rng = r } }

// WithMaxCatchUp lets one Update complete an action up to n times when the elapsed
// time covers several cycles. The default of 1 drops the surplus progress.
func WithMaxCatchUp(n int) Option {
	return func(s *Scheduler) {
		if n >= 1 {
			s.maxCatchUp = n
		}
	}
}

func NewScheduler(deps Deps, opts ...Option) *Scheduler {
	s := &Scheduler{
		deps:       deps,
		clock:      RealClock{},
		rng:        &MathRand{},
		maxCatchUp: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *Scheduler) nowMS() int64 {
	return s.clock.Now().UnixMilli()
}

func (s *Scheduler) build(g Group) (map[string]*Action, []string) {
	now := s.nowMS()
	cat := catalogFor(g)
	actions := make(map[string]*Action, len(cat))
	order := make([]string, 0, len(cat))
	for i := range cat {
		a := cat[i]
		a.LastUpdate = now
		actions[a.ID] = &a
		order = append(order, a.ID)
	}
	return actions, order
}

// Reset recreates both groups from the catalog with nothing running.
func (s *Scheduler) Reset() {
	s.groups = make(map[Group]map[string]*Action, len(Groups))
	s.order = make(map[Group][]string, len(Groups))
	for _, g := range Groups {
		s.groups[g], s.order[g] = s.build(g)
	}
}

func (s *Scheduler) lookup(g Group, id string) *Action {
	actions, ok := s.groups[g]
	if !ok {
		return nil
	}
	return actions[id]
}

// Action returns a copy of one action.
func (s *Scheduler) Action(g Group, id string) (Action, bool) {
	a := s.lookup(g, id)
	if a == nil {
		return Action{}, false
	}
	return *a, true
}

// Actions returns copies of a group's actions in catalog order.
func (s *Scheduler) Actions(g Group) []Action {
	out := make([]Action, 0, len(s.order[g]))
	for _, id := range s.order[g] {
		out = append(out, *s.groups[g][id])
	}
	return out
}

// Active returns the running action of g, if any.
func (s *Scheduler) Active(g Group) (Action, bool) {
	for _, id := range s.order[g] {
		if a := s.groups[g][id]; a.IsActive {
			return *a, true
		}
	}
	return Action{}, false
}

// StartCost is the EXP the caller pays when Start succeeds.
func (s *Scheduler) StartCost(g Group, id string) float64 {
	a := s.lookup(g, id)
	if a == nil {
		return 0
	}
	return s.startCost(a)
}

func (s *Scheduler) startCost(a *Action) float64 {
	if a.Kind == KindStatTraining {
		return s.deps.StudyingCost(a.TrainsStat)
	}
	return a.ExpCost
}

// Start activates an action and stops any sibling in the same group. It returns false
// when the id is unknown, the one-time action is done, or the player cannot pay.
// Payment itself is left to the caller.
func (s *Scheduler) Start(g Group, id string) bool {
	a := s.lookup(g, id)
	if a == nil {
		return false
	}
	if a.OneTime && a.Completed {
		return false
	}
	if a.Kind == KindStatTraining && s.deps.StatAtCap(a.TrainsStat) {
		return false
	}
	if cost := s.startCost(a); cost > 0 && s.deps.CurrentExp() < cost {
		return false
	}

	for _, other := range s.groups[g] {
		if other.IsActive {
			other.IsActive = false
			other.Progress = 0
		}
	}

	a.IsActive = true
	a.Progress = 0
	a.LastUpdate = s.nowMS()
	a.Duration = s.duration(a)
	return true
}

func positive(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}

func (s *Scheduler) duration(a *Action) int64 {
	global := positive(s.deps.GlobalIdleSpeed())
	var d float64
	switch a.Kind {
	case KindReflection:
		d = float64(a.BaseDuration) / (positive(s.deps.ResearchSpeed()) * global)
	case KindStatTraining:
		d = float64(a.BaseDuration) * positive(s.deps.StudyingSpeed()) / global
	default:
		d = float64(a.BaseDuration) / global
	}
	ms := int64(math.Floor(d))
	if ms < 1 {
		ms = 1
	}
	return ms
}

// Stop deactivates an action and discards its progress. No reward is granted.
func (s *Scheduler) Stop(g Group, id string) {
	a := s.lookup(g, id)
	if a == nil {
		return
	}
	a.IsActive = false
	a.Progress = 0
	a.LastUpdate = s.nowMS()
}

// Update advances every active action by the wall-clock time since its last update
// and returns the completions, training group first.
func (s *Scheduler) Update() []Completion {
	now := s.nowMS()
	var out []Completion
	for _, g := range Groups {
		for _, id := range s.order[g] {
			a := s.groups[g][id]
			if !a.IsActive {
				continue
			}
			elapsed := now - a.LastUpdate
			if elapsed < 0 {
				elapsed = 0
			}
			if a.Duration <= 0 {
				a.Duration = s.duration(a)
			}
			a.Progress += float64(elapsed) / float64(a.Duration)
			a.LastUpdate = now

			var pending float64
			for n := 0; a.IsActive && a.Progress >= 1 && n < s.maxCatchUp; n++ {
				carry := n+1 < s.maxCatchUp
				c := s.complete(g, a, carry, pending)
				pending += c.ExpCost
				out = append(out, c)
			}
			if a.IsActive && a.Progress >= 1 {
				a.Progress = 0
			}
		}
	}
	return out
}

func (s *Scheduler) restart(a *Action, carry bool) {
	if carry {
		a.Progress -= 1
	} else {
		a.Progress = 0
	}
}

func (s *Scheduler) complete(g Group, a *Action, carry bool, pending float64) Completion {
	c := Completion{Group: g, ActionID: a.ID, Kind: a.Kind}

	switch a.Kind {
	case KindReflection:
		reward := (engine.ReflectionBaseReward + s.deps.ResearchPower()) * s.deps.ResearchPercent()
		if s.rng.Float64() < s.deps.ResearchCritChance() {
			c.Crit = true
			reward *= 1 + s.deps.ResearchCritDamage()
		}
		reward *= engine.LevelReflectionMultiplier(s.deps.CurrentLevel())
		reward *= s.deps.DisciplineMultiplier()
		c.ExpGained = reward
		c.ShouldContinue = true
		s.restart(a, carry)

	case KindStatTraining:
		gain := (engine.StatTrainingBaseReward + s.deps.StatGainBonus()) * s.deps.StatGainPercent()
		if s.rng.Float64() < s.deps.StudyingCritChance() {
			c.Crit = true
			gain *= 1 + s.deps.StudyingCritDamage()
		}
		c.Stat = a.TrainsStat
		c.StatExpGained = gain
		if sg := s.deps.AddStatExp(a.TrainsStat, gain); sg.LeveledUp {
			c.StatGained = &sg
		}

		cost := s.deps.StudyingCost(a.TrainsStat)
		if s.deps.CurrentExp()-pending >= cost && !s.deps.StatAtCap(a.TrainsStat) {
			c.ExpCost = cost
			c.ShouldContinue = true
			s.restart(a, carry)
		} else {
			a.IsActive = false
			a.Progress = 0
		}

	default:
		a.IsActive = false
		a.Progress = 0
		if a.OneTime {
			a.Completed = true
		}
		c.Unlocks = a.Unlocks
	}
	return c
}

// Migrate rebuilds g from the catalog and overlays the saved progress, active flag,
// last update and completion of every action that still exists. Renamed ids are
// followed. At most one action stays active.
func (s *Scheduler) Migrate(g Group, saved map[string]Action) {
	actions, order := s.build(g)
	if actions == nil {
		return
	}

	activeSeen := false
	for _, id := range order {
		a := actions[id]
		sv, ok := savedAction(saved, id)
		if !ok {
			continue
		}
		a.Progress = math.Max(0, sv.Progress)
		a.LastUpdate = sv.LastUpdate
		a.Completed = sv.Completed
		a.IsActive = sv.IsActive && !activeSeen && !(a.OneTime && a.Completed)
		if a.IsActive {
			activeSeen = true
			a.Duration = s.duration(a)
		} else {
			a.Progress = 0
		}
	}
	s.groups[g] = actions
	s.order[g] = order
}

// savedAction finds the saved state for id, falling back to its legacy ids in order.
func savedAction(saved map[string]Action, id string) (Action, bool) {
	if a, ok := saved[id]; ok {
		return a, true
	}
	for _, old := range legacyActionIDs[id] {
		if a, ok := saved[old]; ok {
			return a, true
		}
	}
	return Action{}, false
}

// Snapshot returns copies of every action in g keyed by id.
func (s *Scheduler) Snapshot(g Group) map[string]Action {
	out := make(map[string]Action, len(s.groups[g]))
	for id, a := range s.groups[g] {
		out[id] = *a
	}
	return out
}
