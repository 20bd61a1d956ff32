package stats

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
)

func TestNewLedgerStartsAtLevelOne(t *testing.T) {
	l := NewLedger()
	for _, st := range All {
		assert.Equal(t, 1, l.Get(st), st)
		assert.Zero(t, l.Exp(st), st)
	}
	assert.Equal(t, 100.0, l.LevelCost(Strength))
}

func TestIncrease(t *testing.T) {
	l := NewLedger()

	res, err := l.Increase(Strength, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, 225.0, res.ExpCost)

	res, err = l.Increase(Strength, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewLevel)

	_, err = l.Increase(Strength, -1)
	var ve engine.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 3, l.Get(Strength), "negative increase must not mutate")

	_, err = l.Increase(Stat("luck"), 1)
	require.Error(t, err)
}

func TestSetClampsToOne(t *testing.T) {
	l := NewLedger()
	l.Set(Agility, -4)
	assert.Equal(t, 1, l.Get(Agility))
	l.Set(Agility, 0)
	assert.Equal(t, 1, l.Get(Agility))
	l.Set(Agility, 250)
	assert.Equal(t, 250, l.Get(Agility))
}

func TestReplaceAllCopies(t *testing.T) {
	snap := NewSnapshot()
	snap.Levels[Willpower] = 7
	snap.Exp[Willpower] = 12.5

	l := NewLedger()
	l.ReplaceAll(snap)
	snap.Levels[Willpower] = 99
	snap.Exp[Willpower] = 0

	assert.Equal(t, 7, l.Get(Willpower))
	assert.Equal(t, 12.5, l.Exp(Willpower))

	out := l.Snapshot()
	out.Levels[Willpower] = 1
	assert.Equal(t, 7, l.Get(Willpower), "snapshot must not alias ledger state")

	all := l.All()
	all[Willpower] = 1
	assert.Equal(t, 7, l.Get(Willpower))
}

func TestAddExpCarriesRemainder(t *testing.T) {
	l := NewLedger()

	res, err := l.AddExp(Endurance, 60, 10)
	require.NoError(t, err)
	assert.False(t, res.LeveledUp)
	assert.Equal(t, 60.0, res.NewExp)

	res, err = l.AddExp(Endurance, 60, 10)
	require.NoError(t, err)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 20.0, res.NewExp)

	// 20 + 400 crosses 150 (level 2) and 225 (level 3).
	res, err = l.AddExp(Endurance, 400, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Levels)
	assert.Equal(t, 4, res.NewLevel)
	assert.Equal(t, 45.0, res.NewExp)
}

func TestAddExpRespectsCap(t *testing.T) {
	l := NewLedger()
	res, err := l.AddExp(Strength, 10000, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewLevel)
	assert.True(t, res.AtCap)

	res, err = l.AddExp(Strength, 50, 3)
	require.NoError(t, err)
	assert.True(t, res.AtCap)
	assert.Zero(t, res.Added)

	_, err = l.AddExp(Strength, -1, 3)
	require.Error(t, err)
}

func TestSnapshotJSON(t *testing.T) {
	snap := NewSnapshot()
	snap.Levels[Strength] = 4
	snap.Exp[Strength] = 33.25

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var flat map[string]float64
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, 4.0, flat["strength"])
	assert.Equal(t, 33.25, flat["strengthExp"])

	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, snap, back)
}

func TestSnapshotJSONLegacyKeys(t *testing.T) {
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"strength":2,"dexterity":6,"intelligence":3,"wisdom":0}`), &snap))
	assert.Equal(t, 2, snap.Levels[Strength])
	assert.Equal(t, 6, snap.Levels[Agility])
	assert.Equal(t, 3, snap.Levels[Intelligence])
	assert.Equal(t, 1, snap.Levels[Wisdom], "levels below 1 are clamped")

	require.NoError(t, json.Unmarshal([]byte(`{"agility":4,"dexterity":9}`), &snap))
	assert.Equal(t, 4, snap.Levels[Agility], "current key wins over legacy alias")
}
