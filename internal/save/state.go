package save

import (
	"encoding/json"
	"fmt"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/idle"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/stats"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/story"
)

const (
	CurrentVersion = "0.2.0"
	LegacyVersion  = "0.1.0"

	// StorageKey is the backend key the current save lives under.
	StorageKey = "tomeclicker_save"
)

// Save integrity markers.
const (
	IntegrityValid       = "valid"
	IntegrityUnencrypted = "unencrypted-import"
)

// GameState is the persisted snapshot of a game.
type GameState struct {
	Name                  string                 `json:"name"`
	Exp                   float64                `json:"exp"`
	LifetimeExp           float64                `json:"lifetimeExp"`
	Level                 int                    `json:"level" validate:"gte=1"`
	ClickMultiplier       float64                `json:"clickMultiplier" validate:"gte=0"`
	CritChance            float64                `json:"critChance" validate:"gte=0"`
	CritDamage            float64                `json:"critDamage" validate:"gte=0"`
	TrainingCritChance    float64                `json:"trainingCritChance,omitempty"`
	Upgrades              Upgrades               `json:"upgrades"`
	Stats                 stats.Snapshot         `json:"stats"`
	TrainingActions       map[string]idle.Action `json:"trainingActions"`
	MeditationActions     map[string]idle.Action `json:"meditationActions"`
	IdleExpRate           float64                `json:"idleExpRate" validate:"gte=0"`
	AdventureModeUnlocked bool                   `json:"adventureModeUnlocked"`
	MeditationUnlocked    bool                   `json:"meditationUnlocked"`
	SaveIntegrity         string                 `json:"saveIntegrity"`
	LastValidation        int64                  `json:"lastValidation"`
	Story                 *story.Progress        `json:"story,omitempty"`
}

// Envelope wraps a GameState with its format version and export time (epoch ms).
type Envelope struct {
	Version   string    `json:"version"`
	Timestamp int64     `json:"timestamp"`
	GameState GameState `json:"gameState"`
}

// Upgrades maps upgrade ids to their saved record. Only CurrentLevel is read back
// on load. Very old saves stored a bare level number per id; both shapes decode.
type Upgrades map[string]engine.Upgrade

func (u *Upgrades) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Upgrades, len(raw))
	for id, v := range raw {
		var lvl float64
		if err := json.Unmarshal(v, &lvl); err == nil {
			out[id] = engine.Upgrade{ID: id, CurrentLevel: int(lvl)}
			continue
		}
		var up engine.Upgrade
		if err := json.Unmarshal(v, &up); err != nil {
			return fmt.Errorf("upgrade %q: %w", id, err)
		}
		if up.ID == "" {
			up.ID = id
		}
		out[id] = up
	}
	*u = out
	return nil
}
