package idle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
)

type fakeDeps struct {
	exp        float64
	level      int
	global     float64
	research   float64
	studying   float64
	critChance float64
	discipline float64
	ledger     *stats.Ledger
	statCap    int
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{level: 1, global: 1, research: 1, studying: 1, discipline: 1, ledger: stats.NewLedger(), statCap: 10}
}

func (d *fakeDeps) CurrentExp() float64           { return d.exp }
func (d *fakeDeps) CurrentLevel() int             { return d.level }
func (d *fakeDeps) GlobalIdleSpeed() float64      { return d.global }
func (d *fakeDeps) ResearchSpeed() float64        { return d.research }
func (d *fakeDeps) ResearchPower() float64        { return 0 }
func (d *fakeDeps) ResearchPercent() float64      { return 1 }
func (d *fakeDeps) ResearchCritChance() float64   { return d.critChance }
func (d *fakeDeps) ResearchCritDamage() float64   { return engine.BaseCritDamage }
func (d *fakeDeps) DisciplineMultiplier() float64 { return d.discipline }
func (d *fakeDeps) StudyingSpeed() float64        { return d.studying }
func (d *fakeDeps) StatGainBonus() float64        { return 0 }
func (d *fakeDeps) StatGainPercent() float64      { return 1 }
func (d *fakeDeps) StudyingCritChance() float64   { return d.critChance }
func (d *fakeDeps) StudyingCritDamage() float64   { return engine.BaseCritDamage }
func (d *fakeDeps) StatAtCap(st stats.Stat) bool  { return d.ledger.Get(st) >= d.statCap }
func (d *fakeDeps) StudyingCost(st stats.Stat) float64 {
	return engine.StatTrainingCost(d.ledger.Get(st), 1)
}

func (d *fakeDeps) AddStatExp(st stats.Stat, amount float64) StatGain {
	res, err := d.ledger.AddExp(st, amount, d.statCap)
	if err != nil {
		return StatGain{}
	}
	return StatGain{LeveledUp: res.LeveledUp, Levels: res.Levels, NewLevel: res.NewLevel}
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, deps *fakeDeps, opts ...Option) (*Scheduler, *FakeClock) {
	t.Helper()
	clock := NewFakeClock(epoch)
	opts = append([]Option{WithClock(clock), WithRandom(NewSequenceRandom())}, opts...)
	return NewScheduler(deps, opts...), clock
}

func TestReflectionRoundTrip(t *testing.T) {
	deps := newFakeDeps()
	s, clock := newTestScheduler(t, deps)

	require.True(t, s.Start(GroupTraining, ReflectionActionID))
	a, _ := s.Action(GroupTraining, ReflectionActionID)
	require.Equal(t, ReflectionBaseDuration, a.Duration)

	clock.Advance(time.Duration(a.Duration) * time.Millisecond)
	done := s.Update()
	require.Len(t, done, 1)
	assert.True(t, done[0].ShouldContinue)
	assert.Equal(t, 10.0, done[0].ExpGained)
	assert.False(t, done[0].Crit)

	a, _ = s.Action(GroupTraining, ReflectionActionID)
	assert.True(t, a.IsActive)
	assert.Zero(t, a.Progress)
}

func TestReflectionRewardPipeline(t *testing.T) {
	deps := newFakeDeps()
	deps.level = 3
	deps.discipline = 5
	deps.critChance = 0.5
	s, clock := newTestScheduler(t, deps, WithRandom(NewSequenceRandom(0.1)))

	require.True(t, s.Start(GroupTraining, ReflectionActionID))
	clock.Advance(time.Duration(ReflectionBaseDuration) * time.Millisecond)
	done := s.Update()
	require.Len(t, done, 1)
	assert.True(t, done[0].Crit)
	// 10 * 1.5 (crit) * 10^2 (level) * 5 (discipline)
	assert.InDelta(t, 7500.0, done[0].ExpGained, 1e-9)
}

func TestPartialProgressDoesNotComplete(t *testing.T) {
	s, clock := newTestScheduler(t, newFakeDeps())
	require.True(t, s.Start(GroupTraining, ReflectionActionID))

	clock.Advance(5 * time.Second)
	assert.Empty(t, s.Update())
	a, _ := s.Action(GroupTraining, ReflectionActionID)
	assert.InDelta(t, 1.0/3.0, a.Progress, 1e-9)
}

func TestSpeedMultipliersShortenDuration(t *testing.T) {
	deps := newFakeDeps()
	deps.global = 2
	deps.research = 1.5
	deps.studying = 0.5
	deps.exp = 1000
	s, _ := newTestScheduler(t, deps)

	require.True(t, s.Start(GroupTraining, ReflectionActionID))
	a, _ := s.Action(GroupTraining, ReflectionActionID)
	assert.Equal(t, int64(5000), a.Duration)

	require.True(t, s.Start(GroupTraining, "study-athletics"))
	a, _ = s.Action(GroupTraining, "study-athletics")
	assert.Equal(t, int64(3750), a.Duration)

	require.True(t, s.Start(GroupMeditation, DisassociateActionID))
	a, _ = s.Action(GroupMeditation, DisassociateActionID)
	assert.Equal(t, int64(15000), a.Duration)
}

func TestStartIsMutuallyExclusive(t *testing.T) {
	deps := newFakeDeps()
	deps.exp = 1000
	s, clock := newTestScheduler(t, deps)

	require.True(t, s.Start(GroupTraining, ReflectionActionID))
	clock.Advance(3 * time.Second)
	s.Update()

	require.True(t, s.Start(GroupTraining, "study-kinetics"))
	for _, a := range s.Actions(GroupTraining) {
		if a.ID == "study-kinetics" {
			assert.True(t, a.IsActive)
			continue
		}
		assert.False(t, a.IsActive, a.ID)
		assert.Zero(t, a.Progress, a.ID)
	}

	require.True(t, s.Start(GroupMeditation, DisassociateActionID))
	act, ok := s.Active(GroupTraining)
	require.True(t, ok, "groups are independent")
	assert.Equal(t, "study-kinetics", act.ID)
}

func TestStartFailures(t *testing.T) {
	deps := newFakeDeps()
	s, _ := newTestScheduler(t, deps)

	assert.False(t, s.Start(GroupTraining, "nope"))
	assert.False(t, s.Start(Group("other"), ReflectionActionID))
	assert.False(t, s.Start(GroupTraining, "study-fitness"), "cannot afford")
	assert.False(t, s.Start(GroupMeditation, MeditateFutureActionID), "cannot afford")

	deps.exp = 9
	assert.Equal(t, 10.0, s.StartCost(GroupTraining, "study-fitness"))
	assert.False(t, s.Start(GroupTraining, "study-fitness"))
	assert.Equal(t, 9.0, deps.exp, "start never deducts")
}

func TestStatTrainingRestartsAndReportsCost(t *testing.T) {
	deps := newFakeDeps()
	deps.exp = 100
	s, clock := newTestScheduler(t, deps)

	require.True(t, s.Start(GroupTraining, "study-athletics"))
	for i := 0; i < 10; i++ {
		clock.Advance(time.Duration(StudyingBaseDuration) * time.Millisecond)
		done := s.Update()
		require.Len(t, done, 1)
		c := done[0]
		assert.True(t, c.ShouldContinue)
		assert.Equal(t, stats.Strength, c.Stat)
		assert.Equal(t, 10.0, c.StatExpGained)
		assert.Zero(t, c.ExpGained)
		if i == 9 {
			require.NotNil(t, c.StatGained)
			assert.Equal(t, 2, c.StatGained.NewLevel)
			assert.Equal(t, 15.0, c.ExpCost, "cost follows the new stat level")
		} else {
			assert.Nil(t, c.StatGained)
			assert.Equal(t, 10.0, c.ExpCost)
		}
	}
	assert.Equal(t, 2, deps.ledger.Get(stats.Strength))
}

func TestStatTrainingStopsWhenBroke(t *testing.T) {
	deps := newFakeDeps()
	deps.exp = 10
	s, clock := newTestScheduler(t, deps)

	require.True(t, s.Start(GroupTraining, "study-athletics"))
	deps.exp = 0
	clock.Advance(time.Duration(StudyingBaseDuration) * time.Millisecond)
	done := s.Update()
	require.Len(t, done, 1)
	assert.False(t, done[0].ShouldContinue)
	assert.Zero(t, done[0].ExpCost)

	a, _ := s.Action(GroupTraining, "study-athletics")
	assert.False(t, a.IsActive)
	assert.Zero(t, a.Progress)
}

func TestOneTimeMeditation(t *testing.T) {
	deps := newFakeDeps()
	deps.exp = 1000
	s, clock := newTestScheduler(t, deps)

	require.True(t, s.Start(GroupMeditation, MeditateFutureActionID))
	clock.Advance(time.Duration(MeditateFutureDuration) * time.Millisecond)
	done := s.Update()
	require.Len(t, done, 1)
	assert.Equal(t, UnlockAdventureMode, done[0].Unlocks)
	assert.False(t, done[0].ShouldContinue)
	assert.Zero(t, done[0].ExpGained)

	a, _ := s.Action(GroupMeditation, MeditateFutureActionID)
	assert.True(t, a.Completed)
	assert.False(t, a.IsActive)

	for i := 0; i < 3; i++ {
		assert.False(t, s.Start(GroupMeditation, MeditateFutureActionID))
	}
}

func TestStopGrantsNothing(t *testing.T) {
	s, clock := newTestScheduler(t, newFakeDeps())
	require.True(t, s.Start(GroupTraining, ReflectionActionID))
	clock.Advance(14 * time.Second)
	s.Update()
	s.Stop(GroupTraining, ReflectionActionID)
	clock.Advance(time.Hour)
	assert.Empty(t, s.Update())
}

func TestSimultaneousCompletionsAcrossGroups(t *testing.T) {
	deps := newFakeDeps()
	deps.exp = 1000
	s, clock := newTestScheduler(t, deps)

	require.True(t, s.Start(GroupTraining, ReflectionActionID))
	require.True(t, s.Start(GroupMeditation, DisassociateActionID))
	clock.Advance(time.Minute)
	done := s.Update()
	require.Len(t, done, 2)
	assert.Equal(t, GroupTraining, done[0].Group)
	assert.Equal(t, GroupMeditation, done[1].Group)
}

func TestLargeGapCompletesOnceByDefault(t *testing.T) {
	s, clock := newTestScheduler(t, newFakeDeps())
	require.True(t, s.Start(GroupTraining, ReflectionActionID))
	clock.Advance(10 * time.Hour)
	done := s.Update()
	assert.Len(t, done, 1)
	a, _ := s.Action(GroupTraining, ReflectionActionID)
	assert.Zero(t, a.Progress)
}

func TestCatchUpCompletesSeveralCycles(t *testing.T) {
	s, clock := newTestScheduler(t, newFakeDeps(), WithMaxCatchUp(100))
	require.True(t, s.Start(GroupTraining, ReflectionActionID))
	clock.Advance(time.Duration(ReflectionBaseDuration)*3*time.Millisecond + 5*time.Second)
	done := s.Update()
	assert.Len(t, done, 3)
	a, _ := s.Action(GroupTraining, ReflectionActionID)
	assert.InDelta(t, 1.0/3.0, a.Progress, 1e-9)
}

func TestMigrateOverlaysSavedState(t *testing.T) {
	s, _ := newTestScheduler(t, newFakeDeps())

	saved := map[string]Action{
		"practice-osmosis": {ID: "practice-osmosis", IsActive: true, Progress: 0.4, LastUpdate: 42},
		"train-dexterity":  {ID: "train-dexterity", IsActive: true, Progress: 0.9},
		"obsolete":         {ID: "obsolete", IsActive: true},
	}
	s.Migrate(GroupTraining, saved)

	r, ok := s.Action(GroupTraining, ReflectionActionID)
	require.True(t, ok)
	assert.True(t, r.IsActive)
	assert.Equal(t, 0.4, r.Progress)
	assert.Equal(t, int64(42), r.LastUpdate)

	k, _ := s.Action(GroupTraining, "study-kinetics")
	assert.False(t, k.IsActive, "only one action per group may stay active")

	_, ok = s.Action(GroupTraining, "obsolete")
	assert.False(t, ok)
	assert.Len(t, s.Actions(GroupTraining), 5)

	s.Migrate(GroupMeditation, map[string]Action{
		MeditateFutureActionID: {Completed: true, IsActive: true},
	})
	m, _ := s.Action(GroupMeditation, MeditateFutureActionID)
	assert.True(t, m.Completed)
	assert.False(t, m.IsActive)
	assert.Equal(t, UnlockAdventureMode, m.Unlocks, "definition fields come from the catalog")
}

func TestMigratePrefersFirstLegacyID(t *testing.T) {
	reflection := map[string]Action{
		"practice-osmosis":  {ID: "practice-osmosis", IsActive: true, Progress: 0.2},
		"practice-ruminate": {ID: "practice-ruminate", IsActive: true, Progress: 0.7},
	}
	kinetics := map[string]Action{
		"train-agility":   {ID: "train-agility", IsActive: true, Progress: 0.5},
		"train-dexterity": {ID: "train-dexterity", IsActive: true, Progress: 0.1},
	}
	for i := 0; i < 50; i++ {
		s, _ := newTestScheduler(t, newFakeDeps())
		s.Migrate(GroupTraining, reflection)
		r, _ := s.Action(GroupTraining, ReflectionActionID)
		require.Equal(t, 0.2, r.Progress)

		s.Migrate(GroupTraining, kinetics)
		k, _ := s.Action(GroupTraining, "study-kinetics")
		require.True(t, k.IsActive)
		require.Equal(t, 0.1, k.Progress)
	}

	s, _ := newTestScheduler(t, newFakeDeps())
	s.Migrate(GroupTraining, map[string]Action{
		"practice-osmosis": {IsActive: true, Progress: 0.2},
		ReflectionActionID: {IsActive: true, Progress: 0.6},
	})
	r, _ := s.Action(GroupTraining, ReflectionActionID)
	assert.Equal(t, 0.6, r.Progress, "the current id wins over legacy ids")
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newTestScheduler(t, newFakeDeps())
	snap := s.Snapshot(GroupTraining)
	a := snap[ReflectionActionID]
	a.IsActive = true
	snap[ReflectionActionID] = a

	got, _ := s.Action(GroupTraining, ReflectionActionID)
	assert.False(t, got.IsActive)
}
