package engine

import "fmt"

const (
	HeaderUnlockExp   = 10.0
	MenuUnlockExp     = 50.0
	UpgradesUnlockExp = 50.0

	LevelTraining = 2
	LevelStats    = 3

	// MeditationStatLevel is the level every physical stat needs before meditation opens.
	MeditationStatLevel = 5
)

// Feature names a gated part of the game.
type Feature string

const (
	FeatureHeader     Feature = "header"
	FeatureMenu       Feature = "menu"
	FeatureUpgrades   Feature = "upgrades"
	FeatureTraining   Feature = "training"
	FeatureStats      Feature = "stats"
	FeatureMeditation Feature = "meditation"
	FeatureAdventure  Feature = "adventure"
)

func (f Feature) IsValid() bool {
	switch f {
	case FeatureHeader, FeatureMenu, FeatureUpgrades, FeatureTraining,
		FeatureStats, FeatureMeditation, FeatureAdventure:
		return true
	default:
		return false
	}
}

// Progress is the slice of player state the gates read.
type Progress struct {
	LifetimeExp       float64
	Level             int
	PhysicalStats     []int
	AdventureUnlocked bool
}

func ShowHeader(p Progress) bool   { return p.LifetimeExp >= HeaderUnlockExp }
func ShowMenu(p Progress) bool     { return p.LifetimeExp >= MenuUnlockExp }
func ShowUpgrades(p Progress) bool { return p.LifetimeExp >= UpgradesUnlockExp }
func ShowTraining(p Progress) bool { return p.Level >= LevelTraining }
func ShowStats(p Progress) bool    { return p.Level >= LevelStats }

func ShowMeditation(p Progress) bool {
	if len(p.PhysicalStats) == 0 {
		return false
	}
	for _, lvl := range p.PhysicalStats {
		if lvl < MeditationStatLevel {
			return false
		}
	}
	return true
}

func ShowAdventure(p Progress) bool { return p.AdventureUnlocked }

// Unlocked reports whether f is open for p.
func Unlocked(f Feature, p Progress) bool {
	switch f {
	case FeatureHeader:
		return ShowHeader(p)
	case FeatureMenu:
		return ShowMenu(p)
	case FeatureUpgrades:
		return ShowUpgrades(p)
	case FeatureTraining:
		return ShowTraining(p)
	case FeatureStats:
		return ShowStats(p)
	case FeatureMeditation:
		return ShowMeditation(p)
	case FeatureAdventure:
		return ShowAdventure(p)
	default:
		return false
	}
}

// Gate returns a GateError when f is still locked for p.
func Gate(f Feature, p Progress) error {
	if Unlocked(f, p) {
		return nil
	}
	return GateError{Feature: f, Requirement: requirement(f)}
}

func requirement(f Feature) string {
	switch f {
	case FeatureHeader:
		return fmt.Sprintf("%.0f lifetime EXP", HeaderUnlockExp)
	case FeatureMenu:
		return fmt.Sprintf("%.0f lifetime EXP", MenuUnlockExp)
	case FeatureUpgrades:
		return fmt.Sprintf("%.0f lifetime EXP", UpgradesUnlockExp)
	case FeatureTraining:
		return fmt.Sprintf("level %d", LevelTraining)
	case FeatureStats:
		return fmt.Sprintf("level %d", LevelStats)
	case FeatureMeditation:
		return fmt.Sprintf("all physical stats at %d", MeditationStatLevel)
	case FeatureAdventure:
		return "completing 'Meditate on Your Future'"
	default:
		return ""
	}
}
