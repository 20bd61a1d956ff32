package storage

import "time"

type SaveRecord struct {
	Key       string
	Data      string
	UpdatedAt time.Time
}

type HistoryEntry struct {
	ID          string
	SaveKey     string
	Version     string
	Data        string
	Exp         float64
	LifetimeExp float64
	Level       int
	CreatedAt   time.Time
}

type CompletionRecord struct {
	ID          int64
	SessionID   string
	Group       string
	ActionID    string
	Kind        string
	ExpGained   float64
	Stat        string
	StatExp     float64
	ExpCost     float64
	Crit        bool
	StatLevelUp bool
	Unlocks     string
	CompletedAt time.Time
}
