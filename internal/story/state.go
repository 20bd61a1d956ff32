package story

import "github.com/eaglerock1337/tomeclicker-sub000/internal/stats"

// State is the live game state triggers read from.
type State interface {
	Exp() float64
	LifetimeExp() float64
	Level() int
	StatLevel(st stats.Stat) int
	// UpgradeLevel reports false for ids the catalog does not know.
	UpgradeLevel(id string) (int, bool)
	PlayerName() string
	AdventureUnlocked() bool
}

// The interfaces below cover systems a State may not implement yet. Conditions
// over a missing capability evaluate to false.

type AdventureProgress interface {
	AdventureCount() int
	ChestCount() int
	DuplicateCount() int
	GearMaxed() bool
}

type RetreatProgress interface {
	RetreatCount() int
	CanRetreat() bool
	PreviousMaxLevel() int
}

type QuestProgress interface {
	// QuestCount counts completed quests of at least the given level; 0 counts all.
	QuestCount(minLevel int) int
	QuestingUnlocked() bool
}

type TomeProgress interface {
	TomeChapter(tomeID string) int
	TomeCompleted(tomeID string) bool
	TomesUnlocked() bool
}
