package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
)

type Stat string

const (
	Strength     Stat = "strength"
	Agility      Stat = "agility"
	Willpower    Stat = "willpower"
	Endurance    Stat = "endurance"
	Intelligence Stat = "intelligence"
	Wisdom       Stat = "wisdom"
)

// All lists every tracked stat in display order.
var All = []Stat{Strength, Agility, Willpower, Endurance, Intelligence, Wisdom}

// Physical are the stats trained by study actions and read by stat gates.
var Physical = []Stat{Strength, Agility, Willpower, Endurance}

// legacyNames maps stat keys found in older saves.
var legacyNames = map[string]Stat{
	"dexterity": Agility,
}

func (s Stat) IsValid() bool {
	switch s {
	case Strength, Agility, Willpower, Endurance, Intelligence, Wisdom:
		return true
	default:
		return false
	}
}

// Parse resolves a stat name, including legacy names.
func Parse(name string) (Stat, bool) {
	if s, ok := legacyNames[name]; ok {
		return s, true
	}
	s := Stat(name)
	return s, s.IsValid()
}

// Snapshot is a value copy of every stat level and its progress toward the next level.
// It marshals to the flat {"strength": 3, "strengthExp": 12.5} layout used by saves.
type Snapshot struct {
	Levels map[Stat]int
	Exp    map[Stat]float64
}

// NewSnapshot returns every stat at level 1 with no progress.
func NewSnapshot() Snapshot {
	s := Snapshot{Levels: make(map[Stat]int, len(All)), Exp: make(map[Stat]float64, len(All))}
	for _, st := range All {
		s.Levels[st] = 1
		s.Exp[st] = 0
	}
	return s
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{Levels: make(map[Stat]int, len(s.Levels)), Exp: make(map[Stat]float64, len(s.Exp))}
	for k, v := range s.Levels {
		out.Levels[k] = v
	}
	for k, v := range s.Exp {
		out.Exp[k] = v
	}
	return out
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	flat := make(map[string]float64, len(s.Levels)+len(s.Exp))
	for k, v := range s.Levels {
		flat[string(k)] = float64(v)
	}
	for k, v := range s.Exp {
		flat[string(k)+"Exp"] = v
	}
	return json.Marshal(flat)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var flat map[string]float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	out := NewSnapshot()
	for k, v := range flat {
		name, isExp := strings.CutSuffix(k, "Exp")
		st, ok := Parse(name)
		if !ok {
			continue
		}
		// A current key wins over its legacy alias.
		if string(st) != name {
			if _, dup := flat[strings.Replace(k, name, string(st), 1)]; dup {
				continue
			}
		}
		if isExp {
			out.Exp[st] = math.Max(0, v)
		} else {
			out.Levels[st] = clampLevel(int(v))
		}
	}
	*s = out
	return nil
}

func clampLevel(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// IncreaseResult is returned by Ledger.Increase.
type IncreaseResult struct {
	NewLevel int
	// ExpCost is the cost of the next level, for display.
	ExpCost float64
}

// ExpResult is returned by Ledger.AddExp.
type ExpResult struct {
	Added     float64
	LeveledUp bool
	Levels    int
	NewLevel  int
	NewExp    float64
	AtCap     bool
}

// Ledger owns stat levels and stat experience.
type Ledger struct {
	s Snapshot
}

func NewLedger() *Ledger {
	return &Ledger{s: NewSnapshot()}
}

// Get returns the level of st, or 0 for an unknown stat.
func (l *Ledger) Get(st Stat) int {
	return l.s.Levels[st]
}

// Exp returns the progress of st toward its next level.
func (l *Ledger) Exp(st Stat) float64 {
	return l.s.Exp[st]
}

// All returns a copy of every stat level.
func (l *Ledger) All() map[Stat]int {
	out := make(map[Stat]int, len(l.s.Levels))
	for k, v := range l.s.Levels {
		out[k] = v
	}
	return out
}

// PhysicalLevels returns the physical stat levels in Physical order.
func (l *Ledger) PhysicalLevels() []int {
	out := make([]int, 0, len(Physical))
	for _, st := range Physical {
		out = append(out, l.s.Levels[st])
	}
	return out
}

// LevelCost is the stat experience needed to leave the current level of st.
func (l *Ledger) LevelCost(st Stat) float64 {
	return engine.StatLevelCost(l.Get(st))
}

// Increase adds amount levels to st directly.
func (l *Ledger) Increase(st Stat, amount int) (IncreaseResult, error) {
	if !st.IsValid() {
		return IncreaseResult{}, engine.ValidationError{Field: "stat", Reason: fmt.Sprintf("unknown stat %q", st)}
	}
	if amount < 0 {
		return IncreaseResult{NewLevel: l.Get(st)}, engine.ValidationError{Field: "amount", Reason: "cannot increase stat by negative amount"}
	}
	l.s.Levels[st] += amount
	return IncreaseResult{NewLevel: l.s.Levels[st], ExpCost: l.LevelCost(st)}, nil
}

// Set overwrites the level of st. Values below 1 are clamped to 1.
func (l *Ledger) Set(st Stat, value int) {
	if !st.IsValid() {
		return
	}
	l.s.Levels[st] = clampLevel(value)
}

// ReplaceAll copies snap in. The ledger never keeps the caller's maps.
func (l *Ledger) ReplaceAll(snap Snapshot) {
	next := NewSnapshot()
	for k, v := range snap.Levels {
		if k.IsValid() {
			next.Levels[k] = clampLevel(v)
		}
	}
	for k, v := range snap.Exp {
		if k.IsValid() {
			next.Exp[k] = math.Max(0, v)
		}
	}
	l.s = next
}

// Snapshot returns a deep copy of the ledger state.
func (l *Ledger) Snapshot() Snapshot {
	return l.s.clone()
}

// AddExp adds stat experience to st, levelling up (carrying the remainder) for every
// threshold crossed until maxLevel is reached. At the cap nothing is added.
func (l *Ledger) AddExp(st Stat, amount float64, maxLevel int) (ExpResult, error) {
	if !st.IsValid() {
		return ExpResult{}, engine.ValidationError{Field: "stat", Reason: fmt.Sprintf("unknown stat %q", st)}
	}
	if amount < 0 {
		return ExpResult{}, engine.ValidationError{Field: "amount", Reason: "cannot add negative stat experience"}
	}
	lvl := l.s.Levels[st]
	if lvl >= maxLevel {
		return ExpResult{NewLevel: lvl, NewExp: l.s.Exp[st], AtCap: true}, nil
	}

	exp := l.s.Exp[st] + amount
	res := ExpResult{Added: amount}
	for lvl < maxLevel {
		cost := engine.StatLevelCost(lvl)
		if exp < cost {
			break
		}
		exp -= cost
		lvl++
		res.Levels++
	}
	if lvl >= maxLevel {
		res.AtCap = true
	}
	l.s.Levels[st] = lvl
	l.s.Exp[st] = exp
	res.LeveledUp = res.Levels > 0
	res.NewLevel = lvl
	res.NewExp = exp
	return res, nil
}
