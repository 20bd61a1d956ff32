package game

import (
	"strings"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/idle"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
)

// SaveState snapshots the whole game. Nothing in the result aliases live state.
func (g *Game) SaveState() save.GameState {
	s := g.s
	journal := s.journal.Serialize()
	return save.GameState{
		Name:                  s.name,
		Exp:                   s.exp,
		LifetimeExp:           s.lifetimeExp,
		Level:                 s.level,
		ClickMultiplier:       s.clickMultiplier,
		CritChance:            s.critChance,
		CritDamage:            s.critDamage,
		TrainingCritChance:    engine.StudyingCritChance(s.upgrades.List()),
		Upgrades:              save.Upgrades(s.upgrades.Snapshot()),
		Stats:                 s.ledger.Snapshot(),
		TrainingActions:       s.actions.Snapshot(idle.GroupTraining),
		MeditationActions:     s.actions.Snapshot(idle.GroupMeditation),
		IdleExpRate:           s.idleExpRate,
		AdventureModeUnlocked: s.adventureUnlocked,
		MeditationUnlocked:    s.meditationUnlocked,
		SaveIntegrity:         s.saveIntegrity,
		LastValidation:        s.lastValidation,
		Story:                 &journal,
	}
}

// LoadState replaces the game with st. Upgrades are migrated onto the current
// catalog before the actions so resumed actions see current speeds. Derived
// multipliers are recomputed rather than trusted. On error nothing changes.
func (g *Game) LoadState(st save.GameState) error {
	switch {
	case st.Exp < 0:
		return engine.ValidationError{Field: "exp", Reason: "must not be negative"}
	case st.LifetimeExp < st.Exp:
		return engine.ValidationError{Field: "exp", Reason: "exceeds lifetimeExp"}
	case st.Level < 1:
		return engine.ValidationError{Field: "level", Reason: "must be at least 1"}
	}

	name := strings.TrimSpace(st.Name)
	if name == "" {
		name = engine.DefaultPlayerName
	}
	next := g.newState(name)
	next.exp = st.Exp
	next.lifetimeExp = st.LifetimeExp
	next.level = st.Level
	next.adventureUnlocked = st.AdventureModeUnlocked
	next.meditationUnlocked = st.MeditationUnlocked
	if st.SaveIntegrity != "" {
		next.saveIntegrity = st.SaveIntegrity
	}
	if st.LastValidation != 0 {
		next.lastValidation = st.LastValidation
	}

	next.upgrades.Migrate(st.Upgrades)
	next.ledger.ReplaceAll(st.Stats)
	next.derive()
	next.actions.Migrate(idle.GroupTraining, st.TrainingActions)
	next.actions.Migrate(idle.GroupMeditation, st.MeditationActions)
	if st.Story != nil {
		next.journal.LoadState(*st.Story)
	}

	g.s = next
	return nil
}
