package engine

import (
	"math"
	"strings"
)

// EffectType selects which aggregate an upgrade feeds.
type EffectType string

const (
	EffectClickMultiplier        EffectType = "clickMultiplier"
	EffectClickMultiplierPercent EffectType = "clickMultiplierPercent"
	EffectCritChance             EffectType = "critChance"
	EffectCritDamage             EffectType = "critDamage"
	EffectIdleExp                EffectType = "idleExp"
	EffectGlobalIdleSpeed        EffectType = "globalIdleSpeed"
	EffectResearchSpeed          EffectType = "researchSpeed"
	EffectResearchPower          EffectType = "researchPower"
	EffectResearchPercent        EffectType = "researchMultiplierPercent"
	EffectResearchCrit           EffectType = "researchCrit"
	EffectResearchCritDamage     EffectType = "researchCritDamage"
	EffectStudyingSpeed          EffectType = "studyingSpeed"
	EffectStudyingCost           EffectType = "studyingCost"
	EffectStatGain               EffectType = "statGain"
	EffectStatGainPercent        EffectType = "statGainPercent"
	EffectStudyingCrit           EffectType = "studyingCrit"
	EffectStudyingCritDamage     EffectType = "studyingCritDamage"
	EffectDiscipline             EffectType = "discipline"
)

// legacyEffectNames maps effect names used by older catalogs onto current ones.
var legacyEffectNames = map[string]EffectType{
	"osmosisExp":      EffectResearchPower,
	"osmosisSpeed":    EffectResearchSpeed,
	"ruminateExp":     EffectResearchPower,
	"ruminateSpeed":   EffectResearchSpeed,
	"trainingSpeed":   EffectStudyingSpeed,
	"trainingCost":    EffectStudyingCost,
	"trainingCrit":    EffectStudyingCrit,
	"clickCrit":       EffectCritChance,
	"clickCritDamage": EffectCritDamage,
}

// ParseEffectType resolves current and legacy effect names.
func ParseEffectType(s string) (EffectType, bool) {
	s = strings.TrimSpace(s)
	if t, ok := legacyEffectNames[s]; ok {
		return t, true
	}
	t := EffectType(s)
	return t, t.IsValid()
}

// Combinator is how one effect type folds its upgrades together.
type Combinator int

const (
	// Additive: base + sum(value * level).
	Additive Combinator = iota + 1
	// Diminishing: product((1 - value) ^ level). Used for duration and cost reductions.
	Diminishing
	// Compounding: product(value ^ level).
	Compounding
)

type effectRule struct {
	combinator Combinator
	base       float64
}

func (t EffectType) rule() (effectRule, bool) {
	switch t {
	case EffectClickMultiplier, EffectClickMultiplierPercent, EffectGlobalIdleSpeed,
		EffectResearchSpeed, EffectResearchPercent, EffectStatGainPercent:
		return effectRule{combinator: Additive, base: 1}, true
	case EffectCritChance, EffectIdleExp, EffectResearchPower, EffectResearchCrit,
		EffectStatGain, EffectStudyingCrit:
		return effectRule{combinator: Additive, base: 0}, true
	case EffectCritDamage, EffectResearchCritDamage, EffectStudyingCritDamage:
		return effectRule{combinator: Additive, base: BaseCritDamage}, true
	case EffectStudyingSpeed, EffectStudyingCost:
		return effectRule{combinator: Diminishing, base: 1}, true
	case EffectDiscipline:
		return effectRule{combinator: Compounding, base: 1}, true
	default:
		return effectRule{}, false
	}
}

func (t EffectType) IsValid() bool {
	_, ok := t.rule()
	return ok
}

// Combinator returns the fold used for t, or 0 for an unknown type.
func (t EffectType) Combinator() Combinator {
	r, _ := t.rule()
	return r.combinator
}

// aggregate folds every upgrade tagged t. Callers pass upgrades in a stable order
// so repeated evaluation is bit-identical.
func aggregate(upgrades []Upgrade, t EffectType) float64 {
	r, ok := t.rule()
	if !ok {
		return 0
	}
	acc := r.base
	for _, u := range upgrades {
		if u.EffectType != t || u.CurrentLevel <= 0 {
			continue
		}
		lvl := float64(u.CurrentLevel)
		switch r.combinator {
		case Additive:
			acc += u.EffectValue * lvl
		case Diminishing:
			acc *= math.Pow(1-u.EffectValue, lvl)
		case Compounding:
			acc *= math.Pow(u.EffectValue, lvl)
		}
	}
	return acc
}

// ClickBonus is 1 + the flat per-level click effects.
func ClickBonus(upgrades []Upgrade) float64 { return aggregate(upgrades, EffectClickMultiplier) }

// ClickPercent is the percentage multiplier on click power (1.0 = +0%).
func ClickPercent(upgrades []Upgrade) float64 {
	return aggregate(upgrades, EffectClickMultiplierPercent)
}

func CritChance(upgrades []Upgrade) float64 { return aggregate(upgrades, EffectCritChance) }

func CritDamage(upgrades []Upgrade) float64 { return aggregate(upgrades, EffectCritDamage) }

// IdleExpRate is the passive EXP per second before the discipline multiplier.
func IdleExpRate(upgrades []Upgrade) float64 { return aggregate(upgrades, EffectIdleExp) }

// GlobalIdleSpeed divides every idle duration. Higher is faster.
func GlobalIdleSpeed(upgrades []Upgrade) float64 {
	return aggregate(upgrades, EffectGlobalIdleSpeed)
}

// ResearchSpeed divides the reflection duration. Higher is faster.
func ResearchSpeed(upgrades []Upgrade) float64 { return aggregate(upgrades, EffectResearchSpeed) }

// ResearchPower is the flat EXP added to each reflection completion.
func ResearchPower(upgrades []Upgrade) float64 { return aggregate(upgrades, EffectResearchPower) }

func ResearchPercent(upgrades []Upgrade) float64 {
	return aggregate(upgrades, EffectResearchPercent)
}

func ResearchCritChance(upgrades []Upgrade) float64 {
	return aggregate(upgrades, EffectResearchCrit)
}

func ResearchCritDamage(upgrades []Upgrade) float64 {
	return aggregate(upgrades, EffectResearchCritDamage)
}

// StudyingSpeed multiplies stat training duration. Lower is faster.
func StudyingSpeed(upgrades []Upgrade) float64 { return aggregate(upgrades, EffectStudyingSpeed) }

// StudyingCost multiplies stat training cost. Lower is cheaper.
func StudyingCost(upgrades []Upgrade) float64 { return aggregate(upgrades, EffectStudyingCost) }

func StatGainBonus(upgrades []Upgrade) float64 { return aggregate(upgrades, EffectStatGain) }

func StatGainPercent(upgrades []Upgrade) float64 {
	return aggregate(upgrades, EffectStatGainPercent)
}

func StudyingCritChance(upgrades []Upgrade) float64 {
	return aggregate(upgrades, EffectStudyingCrit)
}

func StudyingCritDamage(upgrades []Upgrade) float64 {
	return aggregate(upgrades, EffectStudyingCritDamage)
}

// DisciplineMultiplier is the product of value^level over discipline upgrades (5^lvl in
// the default catalog). It scales click power, idle EXP and reflection rewards.
func DisciplineMultiplier(upgrades []Upgrade) float64 {
	return aggregate(upgrades, EffectDiscipline)
}
