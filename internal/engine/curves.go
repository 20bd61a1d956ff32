package engine

import "math"

const (
	// LevelCostBase is the EXP needed to go from level 1 to level 2.
	LevelCostBase = 10000.0
	// LevelCostMultiplier scales each following level: 10k, 1M, 100M...
	LevelCostMultiplier = 100.0

	// StatCostBase is the stat experience needed for a stat's first level-up.
	StatCostBase = 100.0
	// StatCostMultiplier gives 100, 150, 225, 337...
	StatCostMultiplier = 1.5

	// TrainingBaseCost is the EXP charged to start (or restart) a level 1 stat session.
	TrainingBaseCost = 10.0

	// ReflectionBaseReward is the EXP granted by each reflection completion before bonuses.
	ReflectionBaseReward = 10.0
	// StatTrainingBaseReward is the stat experience granted per training completion before bonuses.
	StatTrainingBaseReward = 10.0

	// BaseCritDamage is +50%: a crit multiplies a reward by 1.5.
	BaseCritDamage = 0.5

	// LevelClickFactor multiplies click power once per character level above 1.
	LevelClickFactor = 2.0
	// LevelReflectionFactor multiplies reflection rewards once per character level above 1.
	LevelReflectionFactor = 10.0

	// StatCapPerLevel bounds stat levels at StatCapPerLevel * character level.
	StatCapPerLevel = 10
)

// LevelCost returns the EXP required to advance from the given character level.
// The result is not floored.
func LevelCost(level int) float64 {
	return LevelCostBase * math.Pow(LevelCostMultiplier, float64(level-1))
}

// UpgradeCost returns the price of the next level of u.
// Unfloored upgrades keep the fractional value so compounding costs stay exact.
func UpgradeCost(u Upgrade) float64 {
	raw := u.BaseCost * math.Pow(u.CostMultiplier, float64(u.CurrentLevel))
	if u.Unfloored {
		return raw
	}
	return math.Floor(raw)
}

// StatLevelCost returns the stat experience needed to leave the given stat level.
func StatLevelCost(level int) float64 {
	return math.Floor(StatCostBase * math.Pow(StatCostMultiplier, float64(level-1)))
}

// StatTrainingCost returns the EXP charged for one training session of a stat at the
// given level. costMult is the diminishing trainingCost aggregate (1.0 with no upgrades).
func StatTrainingCost(level int, costMult float64) float64 {
	if level < 1 {
		level = 1
	}
	return math.Floor(TrainingBaseCost * math.Pow(StatCostMultiplier, float64(level-1)) * costMult)
}

// LevelClickMultiplier is 2^(level-1) for level > 1 and 1 otherwise.
func LevelClickMultiplier(level int) float64 {
	if level <= 1 {
		return 1
	}
	return math.Pow(LevelClickFactor, float64(level-1))
}

// LevelReflectionMultiplier is 10^(level-1) for level > 1 and 1 otherwise.
func LevelReflectionMultiplier(level int) float64 {
	if level <= 1 {
		return 1
	}
	return math.Pow(LevelReflectionFactor, float64(level-1))
}

// MaxStatLevel returns the stat cap for a character level.
func MaxStatLevel(characterLevel int) int {
	if characterLevel < 1 {
		characterLevel = 1
	}
	return StatCapPerLevel * characterLevel
}
