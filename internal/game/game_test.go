package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/idle"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/upgrade"
)

var testEpoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestGame(t *testing.T, opts ...Option) (*Game, *idle.FakeClock) {
	t.Helper()
	clock := idle.NewFakeClock(testEpoch)
	base := []Option{WithClock(clock), WithRandom(idle.NewSequenceRandom(0.99))}
	g, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return g, clock
}

// withExp loads a fresh game holding exp (and as much lifetime EXP) at level.
func withExp(t *testing.T, g *Game, exp float64, level int, upgrades save.Upgrades) {
	t.Helper()
	st := g.SaveState()
	st.Exp = exp
	st.LifetimeExp = exp
	st.Level = level
	st.Upgrades = upgrades
	require.NoError(t, g.LoadState(st))
}

func TestNewGameDefaults(t *testing.T) {
	g, _ := newTestGame(t)
	assert.Equal(t, engine.DefaultPlayerName, g.Name())
	assert.Equal(t, 1, g.Level())
	assert.Equal(t, 1.0, g.ClickMultiplier())
	assert.Zero(t, g.CritChance())
	assert.Equal(t, engine.BaseCritDamage, g.CritDamage())
	assert.Equal(t, save.IntegrityValid, g.SaveIntegrity())
	assert.NotEmpty(t, g.Upgrades())
	assert.Len(t, g.Actions(idle.GroupTraining), 5)
}

func TestClick(t *testing.T) {
	g, _ := newTestGame(t)
	res := g.Click()
	assert.Equal(t, 1.0, res.Gained)
	assert.False(t, res.Crit)
	assert.Equal(t, 1.0, g.Exp())
	assert.Equal(t, 1.0, g.LifetimeExp())
}

func TestClickCrit(t *testing.T) {
	g, _ := newTestGame(t, WithRandom(idle.NewSequenceRandom(0.001)))
	withExp(t, g, 0, 1, save.Upgrades{"critical-insight": {CurrentLevel: 1}})
	require.InDelta(t, 0.005, g.CritChance(), 1e-12)

	res := g.Click()
	assert.True(t, res.Crit)
	assert.Equal(t, 1.5, res.Gained)
}

func TestPurchaseRederivesMultipliers(t *testing.T) {
	g, _ := newTestGame(t)
	withExp(t, g, 50, 1, nil)

	res := g.Purchase("focused-practice")
	require.True(t, res.OK)
	assert.Equal(t, 50.0, res.Spent)
	assert.Equal(t, 1, res.NewLevel)
	assert.Zero(t, g.Exp())
	assert.Equal(t, 2.0, g.ClickMultiplier())

	before := g.SaveState()
	for _, id := range []string{"focused-practice", "missing"} {
		res := g.Purchase(id)
		assert.False(t, res.OK)
	}
	assert.Equal(t, before, g.SaveState(), "a refused purchase changes nothing")
	assert.Equal(t, upgrade.ReasonNotFound, g.Purchase("missing").Reason)
}

func TestLevelUp(t *testing.T) {
	g, _ := newTestGame(t)
	withExp(t, g, 10000, 1, save.Upgrades{"focused-practice": {CurrentLevel: 2}})
	require.Equal(t, 3.0, g.ClickMultiplier())
	require.True(t, g.CanLevelUp())

	require.True(t, g.LevelUp())
	assert.Equal(t, 2, g.Level())
	assert.Zero(t, g.Exp())
	assert.Equal(t, 6.0, g.ClickMultiplier())
	assert.Equal(t, 1e6, g.LevelUpCost())
	assert.False(t, g.LevelUp())
}

func TestClickText(t *testing.T) {
	g, _ := newTestGame(t)
	assert.Equal(t, "click me", g.ClickText())

	g.Click()
	assert.Equal(t, "", g.ClickText())

	withExp(t, g, 50, 1, nil)
	assert.Equal(t, "upgrade available", g.ClickText())

	withExp(t, g, 10000, 1, nil)
	assert.Equal(t, "level up available", g.ClickText())
}

func TestGates(t *testing.T) {
	g, _ := newTestGame(t)
	assert.False(t, g.ShowHeader())
	assert.False(t, g.ShowTraining())

	err := g.Gate(engine.FeatureTraining)
	var ge engine.GateError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, engine.FeatureTraining, ge.Feature)

	withExp(t, g, 60, 3, nil)
	assert.True(t, g.ShowHeader())
	assert.True(t, g.ShowMenu())
	assert.True(t, g.ShowUpgrades())
	assert.NoError(t, g.Gate(engine.FeatureTraining))
	assert.NoError(t, g.Gate(engine.FeatureStats))
	assert.Error(t, g.Gate(engine.FeatureMeditation))

	for _, st := range stats.Physical {
		_, err := g.IncreaseStat(st, 4)
		require.NoError(t, err)
	}
	assert.True(t, g.ShowMeditation())
	g.Advance()
	assert.True(t, g.SaveState().MeditationUnlocked)
	assert.NoError(t, g.Gate(engine.FeatureMeditation))
}

func TestReflectionCompletesOnAdvance(t *testing.T) {
	g, clock := newTestGame(t)
	spent, ok := g.StartAction(idle.GroupTraining, idle.ReflectionActionID)
	require.True(t, ok)
	assert.Zero(t, spent)

	clock.Advance(15 * time.Second)
	res := g.Advance()
	require.Len(t, res.Completions, 1)
	assert.Equal(t, idle.KindReflection, res.Completions[0].Kind)
	assert.Equal(t, 10.0, g.Exp())
	assert.Equal(t, 10.0, g.LifetimeExp())

	a, ok := g.ActiveAction(idle.GroupTraining)
	require.True(t, ok)
	assert.Equal(t, idle.ReflectionActionID, a.ID)
}

func TestStatTrainingChargesEachCycle(t *testing.T) {
	g, clock := newTestGame(t)
	withExp(t, g, 100, 2, nil)
	require.Equal(t, 10.0, g.TrainingCost(stats.Strength))

	spent, ok := g.StartAction(idle.GroupTraining, "study-athletics")
	require.True(t, ok)
	assert.Equal(t, 10.0, spent)
	assert.Equal(t, 90.0, g.Exp())

	clock.Advance(15 * time.Second)
	res := g.Advance()
	require.Len(t, res.Completions, 1)
	c := res.Completions[0]
	assert.Equal(t, stats.Strength, c.Stat)
	assert.Equal(t, 10.0, c.StatExpGained)
	assert.Equal(t, 10.0, c.ExpCost)
	assert.Equal(t, 80.0, g.Exp())
	assert.Equal(t, 10.0, g.Stats().Exp[stats.Strength])
	assert.Equal(t, 100.0, g.LifetimeExp(), "spending never lowers lifetime EXP")
}

func TestStartActionRefusedWhenBroke(t *testing.T) {
	g, _ := newTestGame(t)
	_, ok := g.StartAction(idle.GroupMeditation, idle.MeditateFutureActionID)
	assert.False(t, ok)
	_, ok = g.StartAction(idle.GroupTraining, "no-such-action")
	assert.False(t, ok)
	assert.Zero(t, g.Exp())
}

func TestMeditationUnlocksAdventure(t *testing.T) {
	g, clock := newTestGame(t)
	withExp(t, g, 50, 1, nil)

	spent, ok := g.StartAction(idle.GroupMeditation, idle.MeditateFutureActionID)
	require.True(t, ok)
	assert.Equal(t, idle.MeditateFutureCost, spent)
	assert.Zero(t, g.Exp())

	clock.Advance(time.Minute)
	res := g.Advance()
	require.Len(t, res.Completions, 1)
	assert.True(t, g.AdventureUnlocked())
	assert.True(t, g.ShowAdventure())

	withExp(t, g, 500, 1, nil)
	_, ok = g.StartAction(idle.GroupMeditation, idle.MeditateFutureActionID)
	assert.False(t, ok, "one-time meditation never restarts")
}

func TestPassiveIdleExp(t *testing.T) {
	defs := []engine.Upgrade{{
		ID: "daydream", Name: "Daydream", BaseCost: 10, CostMultiplier: 1.5, MaxLevel: 10,
		Category: engine.CategorySpecial, EffectType: engine.EffectIdleExp, EffectValue: 2,
	}}
	g, clock := newTestGame(t, WithUpgrades(defs))
	withExp(t, g, 0, 1, save.Upgrades{"daydream": {CurrentLevel: 1}})
	require.Equal(t, 2.0, g.IdleExpRate())

	clock.Advance(10 * time.Second)
	res := g.Advance()
	assert.Equal(t, 20.0, res.IdleExp)
	assert.Equal(t, 20.0, g.Exp())

	res = g.Advance()
	assert.Zero(t, res.IdleExp)
}

func TestJournalUnlocksOnAdvance(t *testing.T) {
	g, _ := newTestGame(t)
	g.Click()
	res := g.Advance()
	require.NotEmpty(t, res.Unlocked)
	assert.Equal(t, "ch1-awakening", res.Unlocked[0].ID)
	assert.Equal(t, 1, res.Unread)

	assert.True(t, g.DismissEntry("ch1-awakening"))
	assert.Equal(t, 1, g.UnreadCount(), "a dismissed entry stays unread")
	en, ok := g.JournalEntry("ch1-awakening")
	require.True(t, ok)
	assert.False(t, en.Acknowledged, "dismissing is not acknowledging")

	ack := g.AcknowledgeEntry("ch1-awakening")
	assert.True(t, ack.OK)
	assert.Zero(t, g.UnreadCount())
	assert.Len(t, g.Journal(), 1)
	assert.Equal(t, []int{1}, g.UnlockedChapters())

	require.NoError(t, g.SetName("Wren"))
	g.Advance()
	en, _ = g.JournalEntry("ch1-name")
	assert.True(t, en.Unlocked)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g, clock := newTestGame(t)
	withExp(t, g, 20000, 2, save.Upgrades{"focused-practice": {CurrentLevel: 3}, "flow-state": {CurrentLevel: 2}})
	require.NoError(t, g.SetName("Wren"))
	_, err := g.IncreaseStat(stats.Agility, 2)
	require.NoError(t, err)
	_, ok := g.StartAction(idle.GroupTraining, idle.ReflectionActionID)
	require.True(t, ok)
	clock.Advance(5 * time.Second)
	g.Advance()

	st := g.SaveState()
	other, _ := newTestGame(t)
	require.NoError(t, other.LoadState(st))
	assert.Equal(t, st, other.SaveState())
	assert.Equal(t, g.ClickMultiplier(), other.ClickMultiplier())

	a, ok := other.ActiveAction(idle.GroupTraining)
	require.True(t, ok)
	assert.Greater(t, a.Progress, 0.0)
}

func TestLoadStateIsAtomic(t *testing.T) {
	g, _ := newTestGame(t)
	g.Click()
	before := g.SaveState()

	bad := before
	bad.Exp = before.LifetimeExp + 1
	assert.Error(t, g.LoadState(bad))

	bad = before
	bad.Level = 0
	assert.Error(t, g.LoadState(bad))

	assert.Equal(t, before, g.SaveState())
}

func TestLoadStateRederivesSavedMultipliers(t *testing.T) {
	g, _ := newTestGame(t)
	st := g.SaveState()
	st.ClickMultiplier = 9999
	st.CritChance = 1
	require.NoError(t, g.LoadState(st))
	assert.Equal(t, 1.0, g.ClickMultiplier())
	assert.Zero(t, g.CritChance())
}

func TestHardReset(t *testing.T) {
	g, _ := newTestGame(t)
	require.NoError(t, g.SetName("Wren"))
	withExp(t, g, 500, 2, nil)

	g.HardReset(true)
	assert.Equal(t, "Wren", g.Name())
	assert.Zero(t, g.Exp())
	assert.Equal(t, 1, g.Level())

	g.HardReset(false)
	assert.Equal(t, engine.DefaultPlayerName, g.Name())
}

func TestSetName(t *testing.T) {
	g, _ := newTestGame(t)
	assert.Error(t, g.SetName("   "))
	assert.Error(t, g.SetName("a name far too long to fit inside the ledger"))
	require.NoError(t, g.SetName("  Wren  "))
	assert.Equal(t, "Wren", g.Name())
}
