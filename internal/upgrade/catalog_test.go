package upgrade

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
)

type testWallet struct{ exp float64 }

func (w *testWallet) Exp() float64         { return w.exp }
func (w *testWallet) Spend(amount float64) { w.exp -= amount }

func testDefs() []engine.Upgrade {
	return []engine.Upgrade{
		{ID: "focused-practice", Name: "Focused Practice", BaseCost: 50, CostMultiplier: 1.15, MaxLevel: 100, EffectType: engine.EffectClickMultiplier, EffectValue: 1},
		{ID: "cost-reduction", Name: "Cost Reduction", BaseCost: 15000, CostMultiplier: 1.35, MaxLevel: 2, EffectType: engine.EffectStudyingCost, EffectValue: 0.2, MinLevel: 3},
		{ID: "discipline", Name: "Discipline", BaseCost: 1000, CostMultiplier: 1.5, MaxLevel: 10, EffectType: engine.EffectDiscipline, EffectValue: 5, Unfloored: true},
	}
}

func TestCost(t *testing.T) {
	w := &testWallet{}
	c := NewCatalog(testDefs(), w)

	assert.Zero(t, c.Cost("nope"))
	assert.Equal(t, 50.0, c.Cost("focused-practice"))

	c.Migrate(map[string]engine.Upgrade{"focused-practice": {CurrentLevel: 10}})
	assert.Equal(t, 202.0, c.Cost("focused-practice"))
}

func TestPurchase(t *testing.T) {
	w := &testWallet{exp: 60}
	c := NewCatalog(testDefs(), w)

	require.True(t, c.CanPurchase("focused-practice"))
	res := c.Purchase("focused-practice")
	require.True(t, res.OK)
	assert.Equal(t, 50.0, res.Spent)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 10.0, w.exp)

	u, ok := c.Get("focused-practice")
	require.True(t, ok)
	assert.Equal(t, 1, u.CurrentLevel)
}

func TestPurchaseFailuresAreAtomic(t *testing.T) {
	w := &testWallet{exp: 100000}
	c := NewCatalog(testDefs(), w)
	c.Migrate(map[string]engine.Upgrade{"cost-reduction": {CurrentLevel: 2}})

	before := c.Snapshot()

	res := c.Purchase("missing")
	assert.False(t, res.OK)
	assert.Equal(t, ReasonNotFound, res.Reason)

	res = c.Purchase("cost-reduction")
	assert.False(t, res.OK)
	assert.Equal(t, ReasonMaxLevel, res.Reason)

	w.exp = 10
	expBefore := w.exp
	res = c.Purchase("focused-practice")
	assert.False(t, res.OK)
	assert.Equal(t, ReasonCannotAfford, res.Reason)
	assert.False(t, c.CanAfford("focused-practice"))

	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, expBefore, w.exp)
	assert.True(t, res.Reason.IsValid())
}

func TestUnflooredPurchaseSpendsFractionalCost(t *testing.T) {
	w := &testWallet{exp: 1e6}
	c := NewCatalog(testDefs(), w)
	c.Migrate(map[string]engine.Upgrade{"discipline": {CurrentLevel: 3}})

	res := c.Purchase("discipline")
	require.True(t, res.OK)
	assert.Equal(t, 3375.0, res.Spent)

	res = c.Purchase("discipline")
	require.True(t, res.OK)
	assert.Equal(t, 5062.5, res.Spent)
}

func TestMigrate(t *testing.T) {
	c := NewCatalog(testDefs(), &testWallet{})

	c.Migrate(c.Snapshot())
	for _, u := range c.List() {
		assert.Zero(t, u.CurrentLevel, u.ID)
	}

	saved := map[string]engine.Upgrade{
		"focused-practice": {ID: "focused-practice", CurrentLevel: 7, BaseCost: 1, MaxLevel: 1},
		"removed-upgrade":  {ID: "removed-upgrade", CurrentLevel: 4},
	}
	c.Migrate(saved)
	c.Migrate(c.Snapshot())

	u, _ := c.Get("focused-practice")
	assert.Equal(t, 7, u.CurrentLevel)
	assert.Equal(t, 50.0, u.BaseCost, "definition fields come from the current catalog")
	assert.Equal(t, 100, u.MaxLevel)

	_, ok := c.Get("removed-upgrade")
	assert.False(t, ok)

	d, _ := c.Get("discipline")
	assert.Zero(t, d.CurrentLevel)
}

func TestVisibleAndList(t *testing.T) {
	c := NewCatalog(testDefs(), &testWallet{})
	ids := func(ups []engine.Upgrade) []string {
		var out []string
		for _, u := range ups {
			out = append(out, u.ID)
		}
		return out
	}
	assert.Equal(t, []string{"cost-reduction", "discipline", "focused-practice"}, ids(c.List()))
	assert.Equal(t, []string{"discipline", "focused-practice"}, ids(c.Visible(1)))
	assert.Len(t, c.Visible(3), 3)
}

func TestDefaultDefinitions(t *testing.T) {
	defs, err := DefaultDefinitions()
	require.NoError(t, err)
	require.NotEmpty(t, defs)

	byID := map[string]engine.Upgrade{}
	for _, d := range defs {
		byID[d.ID] = d
		assert.True(t, d.EffectType.IsValid(), d.ID)
		assert.True(t, d.Category.IsValid(), d.ID)
	}
	assert.True(t, byID[DisciplineID].Unfloored)
	assert.False(t, byID["focused-practice"].Unfloored)
	assert.Equal(t, 1.15, byID["focused-practice"].CostMultiplier)
}

func TestLoadDefinitionsValidation(t *testing.T) {
	bad := `
upgrades:
  - id: broken
    name: Broken
    category: click
    baseCost: 0
    costMultiplier: 1.1
    maxLevel: 3
    effectType: clickMultiplier
  - id: weird
    name: Weird
    category: click
    baseCost: 5
    costMultiplier: 1.1
    maxLevel: 3
    effectType: teleport
`
	_, err := LoadDefinitions(strings.NewReader(bad))
	var de *DefinitionError
	require.True(t, errors.As(err, &de))
	assert.Len(t, de.Problems, 2)

	legacy := `
upgrades:
  - id: discipline
    name: Discipline
    category: special
    baseCost: 1000
    costMultiplier: 100
    maxLevel: 10
    effectType: discipline
    effectValue: 5
  - id: flow-state
    name: Flow State
    category: research
    baseCost: 300
    costMultiplier: 1.2
    maxLevel: 50
    effectType: osmosisSpeed
    effectValue: 0.02
`
	defs, err := LoadDefinitions(strings.NewReader(legacy))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.True(t, defs[0].Unfloored, "discipline defaults to unfloored")
	assert.Equal(t, engine.EffectResearchSpeed, defs[1].EffectType)
}
