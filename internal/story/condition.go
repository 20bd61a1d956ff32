package story

import (
	"gopkg.in/yaml.v3"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
)

type ConditionType string

const (
	CondExp         ConditionType = "exp"
	CondLifetimeExp ConditionType = "lifetimeExp"
	CondLevel       ConditionType = "level"

	CondUpgradeOwned ConditionType = "upgradeOwned"
	CondUpgradeLevel ConditionType = "upgradeLevel"

	CondStatLevel     ConditionType = "statLevel"
	CondAllStatsLevel ConditionType = "allStatsLevel"
	CondAnyStatLevel  ConditionType = "anyStatLevel"
	CondTotalStats    ConditionType = "totalStats"

	CondAdventureUnlocked ConditionType = "adventureUnlocked"
	CondQuestingUnlocked  ConditionType = "questingUnlocked"
	CondTomesUnlocked     ConditionType = "tomesUnlocked"
	CondNameSet           ConditionType = "nameSet"

	CondStoryUnlocked ConditionType = "storyUnlocked"

	CondAdventureCompleted ConditionType = "adventureCompleted"
	CondChestOpened        ConditionType = "chestOpened"
	CondItemDuplicate      ConditionType = "itemDuplicate"
	CondGearMaxed          ConditionType = "gearMaxed"

	CondMaxLevelReached    ConditionType = "maxLevelReached"
	CondRetreatAvailable   ConditionType = "retreatAvailable"
	CondRetreatCompleted   ConditionType = "retreatCompleted"
	CondPreviousMaxReached ConditionType = "previousMaxReached"

	CondQuestCompleted ConditionType = "questCompleted"

	CondTomeChapter   ConditionType = "tomeChapter"
	CondTomeCompleted ConditionType = "tomeCompleted"

	CondAll ConditionType = "all"
	CondAny ConditionType = "any"

	CondManual ConditionType = "manual"
)

func (t ConditionType) IsValid() bool {
	switch t {
	case CondExp, CondLifetimeExp, CondLevel,
		CondUpgradeOwned, CondUpgradeLevel,
		CondStatLevel, CondAllStatsLevel, CondAnyStatLevel, CondTotalStats,
		CondAdventureUnlocked, CondQuestingUnlocked, CondTomesUnlocked, CondNameSet,
		CondStoryUnlocked,
		CondAdventureCompleted, CondChestOpened, CondItemDuplicate, CondGearMaxed,
		CondMaxLevelReached, CondRetreatAvailable, CondRetreatCompleted, CondPreviousMaxReached,
		CondQuestCompleted,
		CondTomeChapter, CondTomeCompleted,
		CondAll, CondAny,
		CondManual:
		return true
	default:
		return false
	}
}

// Comparator applies to level conditions. The zero value means at-least.
type Comparator string

const (
	CompareGTE Comparator = "gte"
	CompareEQ  Comparator = "eq"
)

// Condition is a trigger. Which fields matter depends on Type.
type Condition struct {
	Type       ConditionType `yaml:"type"`
	Threshold  float64       `yaml:"threshold,omitempty"`
	Operator   Comparator    `yaml:"operator,omitempty"`
	UpgradeID  string        `yaml:"upgradeId,omitempty"`
	Level      int           `yaml:"level,omitempty"`
	Stat       string        `yaml:"stat,omitempty"`
	Total      int           `yaml:"total,omitempty"`
	EntryID    string        `yaml:"entryId,omitempty"`
	Count      int           `yaml:"count,omitempty"`
	QuestLevel int           `yaml:"questLevel,omitempty"`
	TomeID     string        `yaml:"tomeId,omitempty"`
	Chapter    int           `yaml:"chapter,omitempty"`
	Conditions []Condition   `yaml:"conditions,omitempty"`
	EventID    string        `yaml:"eventId,omitempty"`
}

// UnmarshalYAML turns trigger types this build does not know into manual triggers,
// so newer story files still load.
func (c *Condition) UnmarshalYAML(value *yaml.Node) error {
	type plain Condition
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Condition(p)
	if !c.Type.IsValid() {
		c.EventID = string(c.Type)
		c.Type = CondManual
	}
	return nil
}

// All builds a condition that holds when every sub-condition does.
func All(conds ...Condition) Condition { return Condition{Type: CondAll, Conditions: conds} }

// Any builds a condition that holds when at least one sub-condition does.
func Any(conds ...Condition) Condition { return Condition{Type: CondAny, Conditions: conds} }

func compareLevel(op Comparator, level, threshold int) bool {
	if op == CompareEQ {
		return level == threshold
	}
	return level >= threshold
}

// evaluate checks c against live state. unlocked resolves references to other entries.
func evaluate(c Condition, st State, unlocked func(id string) bool) bool {
	switch c.Type {
	case CondExp:
		return st.Exp() >= c.Threshold
	case CondLifetimeExp:
		return st.LifetimeExp() >= c.Threshold
	case CondLevel:
		return compareLevel(c.Operator, st.Level(), int(c.Threshold))

	case CondUpgradeOwned:
		lvl, ok := st.UpgradeLevel(c.UpgradeID)
		return ok && lvl > 0
	case CondUpgradeLevel:
		lvl, ok := st.UpgradeLevel(c.UpgradeID)
		return ok && lvl >= c.Level

	case CondStatLevel:
		s, ok := stats.Parse(c.Stat)
		return ok && st.StatLevel(s) >= c.Level
	case CondAllStatsLevel:
		for _, s := range stats.Physical {
			if st.StatLevel(s) < c.Level {
				return false
			}
		}
		return true
	case CondAnyStatLevel:
		for _, s := range stats.Physical {
			if st.StatLevel(s) >= c.Level {
				return true
			}
		}
		return false
	case CondTotalStats:
		total := 0
		for _, s := range stats.Physical {
			total += st.StatLevel(s)
		}
		return total >= c.Total

	case CondAdventureUnlocked:
		return st.AdventureUnlocked()
	case CondNameSet:
		name := st.PlayerName()
		return name != "" && name != engine.DefaultPlayerName

	case CondStoryUnlocked:
		return unlocked(c.EntryID)

	case CondAdventureCompleted, CondChestOpened, CondItemDuplicate, CondGearMaxed:
		return evaluateAdventure(c, st)
	case CondMaxLevelReached:
		return st.Level() >= c.Level
	case CondRetreatAvailable, CondRetreatCompleted, CondPreviousMaxReached:
		return evaluateRetreat(c, st)
	case CondQuestCompleted, CondQuestingUnlocked:
		return evaluateQuest(c, st)
	case CondTomeChapter, CondTomeCompleted, CondTomesUnlocked:
		return evaluateTome(c, st)

	case CondAll:
		for _, sub := range c.Conditions {
			if !evaluate(sub, st, unlocked) {
				return false
			}
		}
		return true
	case CondAny:
		for _, sub := range c.Conditions {
			if evaluate(sub, st, unlocked) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

func evaluateAdventure(c Condition, st State) bool {
	p, ok := st.(AdventureProgress)
	if !ok {
		return false
	}
	switch c.Type {
	case CondAdventureCompleted:
		return p.AdventureCount() >= c.Count
	case CondChestOpened:
		return p.ChestCount() >= c.Count
	case CondItemDuplicate:
		return p.DuplicateCount() >= c.Count
	default:
		return p.GearMaxed()
	}
}

func evaluateRetreat(c Condition, st State) bool {
	p, ok := st.(RetreatProgress)
	if !ok {
		return false
	}
	switch c.Type {
	case CondRetreatAvailable:
		return p.CanRetreat()
	case CondRetreatCompleted:
		return p.RetreatCount() >= c.Count
	default:
		prev := p.PreviousMaxLevel()
		return prev > 0 && st.Level() >= prev
	}
}

func evaluateQuest(c Condition, st State) bool {
	p, ok := st.(QuestProgress)
	if !ok {
		return false
	}
	if c.Type == CondQuestingUnlocked {
		return p.QuestingUnlocked()
	}
	return p.QuestCount(c.QuestLevel) >= c.Count
}

func evaluateTome(c Condition, st State) bool {
	p, ok := st.(TomeProgress)
	if !ok {
		return false
	}
	switch c.Type {
	case CondTomeChapter:
		return p.TomeChapter(c.TomeID) >= c.Chapter
	case CondTomeCompleted:
		return p.TomeCompleted(c.TomeID)
	default:
		return p.TomesUnlocked()
	}
}
