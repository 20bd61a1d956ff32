package idle

import (
	"encoding/json"
	"math"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
)

// Durations are in milliseconds.
const (
	ReflectionBaseDuration int64 = 15000
	StudyingBaseDuration   int64 = 15000
	MeditateFutureDuration int64 = 60000
	DisassociateDuration   int64 = 30000
)

const (
	MeditateFutureCost = 50.0
	DisassociateCost   = 100.0

	ReflectionActionID     = "study-research"
	MeditateFutureActionID = "meditate-future"
	DisassociateActionID   = "disassociate"

	UnlockAdventureMode = "adventureMode"
)

type Group string

const (
	GroupTraining   Group = "training"
	GroupMeditation Group = "meditation"
)

// Groups lists the groups in update order.
var Groups = []Group{GroupTraining, GroupMeditation}

func (g Group) IsValid() bool {
	return g == GroupTraining || g == GroupMeditation
}

// Kind decides how a completion is rewarded.
type Kind string

const (
	KindReflection   Kind = "reflection"
	KindStatTraining Kind = "statTraining"
	KindMeditation   Kind = "meditation"
)

// Action is one progress-bar task. Times are epoch milliseconds.
type Action struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Kind         Kind       `json:"kind"`
	Progress     float64    `json:"progress"`
	BaseDuration int64      `json:"baseDuration"`
	Duration     int64      `json:"duration"`
	ExpCost      float64    `json:"expCost"`
	IsActive     bool       `json:"isActive"`
	LastUpdate   int64      `json:"lastUpdate"`
	TrainsStat   stats.Stat `json:"trainsStat,omitempty"`
	OneTime      bool       `json:"oneTime,omitempty"`
	Completed    bool       `json:"completed,omitempty"`
	Unlocks      string     `json:"unlocks,omitempty"`
}

// UnmarshalJSON accepts the fractional durations and timestamps older saves wrote.
func (a *Action) UnmarshalJSON(data []byte) error {
	type plain Action
	var aux struct {
		plain
		BaseDuration float64 `json:"baseDuration"`
		Duration     float64 `json:"duration"`
		LastUpdate   float64 `json:"lastUpdate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Action(aux.plain)
	a.BaseDuration = int64(math.Floor(aux.BaseDuration))
	a.Duration = int64(math.Floor(aux.Duration))
	a.LastUpdate = int64(math.Floor(aux.LastUpdate))
	return nil
}

// legacyActionIDs lists, per current id, the ids older saves used for it. When a
// save holds more than one of them the first listed wins.
var legacyActionIDs = map[string][]string{
	ReflectionActionID:  {"practice-osmosis", "practice-ruminate"},
	"study-athletics":   {"train-strength"},
	"study-kinetics":    {"train-dexterity", "train-agility"},
	"study-selfdefense": {"train-willpower"},
	"study-fitness":     {"train-endurance"},
}

func studyAction(id, name, desc string, st stats.Stat) Action {
	return Action{
		ID:           id,
		Name:         name,
		Description:  desc,
		Kind:         KindStatTraining,
		BaseDuration: StudyingBaseDuration,
		Duration:     StudyingBaseDuration,
		ExpCost:      engine.TrainingBaseCost,
		TrainsStat:   st,
	}
}

func trainingCatalog() []Action {
	return []Action{
		{
			ID:           ReflectionActionID,
			Name:         "Research",
			Description:  "Study academic texts to gain experience and insights.",
			Kind:         KindReflection,
			BaseDuration: ReflectionBaseDuration,
			Duration:     ReflectionBaseDuration,
		},
		studyAction("study-athletics", "Study Athletics", "Theoretical athletic techniques.", stats.Strength),
		studyAction("study-kinetics", "Study Kinetics", "Kinetic reflex methodologies.", stats.Agility),
		studyAction("study-selfdefense", "Study Self-Defense", "Academic principles of defensive tactics.", stats.Willpower),
		studyAction("study-fitness", "Study Fitness", "Application of physical fitness theory.", stats.Endurance),
	}
}

func meditationCatalog() []Action {
	return []Action{
		{
			ID:           MeditateFutureActionID,
			Name:         "Meditate on Your Future",
			Description:  "Contemplate what lies beyond the library walls.",
			Kind:         KindMeditation,
			BaseDuration: MeditateFutureDuration,
			Duration:     MeditateFutureDuration,
			ExpCost:      MeditateFutureCost,
			OneTime:      true,
			Unlocks:      UnlockAdventureMode,
		},
		{
			ID:           DisassociateActionID,
			Name:         "Disassociate",
			Description:  "Take a mental health day. Increases offline progress time.",
			Kind:         KindMeditation,
			BaseDuration: DisassociateDuration,
			Duration:     DisassociateDuration,
			ExpCost:      DisassociateCost,
		},
	}
}

func catalogFor(g Group) []Action {
	switch g {
	case GroupTraining:
		return trainingCatalog()
	case GroupMeditation:
		return meditationCatalog()
	default:
		return nil
	}
}
