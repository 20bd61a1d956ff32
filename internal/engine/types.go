package engine

// Category groups upgrades for display only.
type Category string

const (
	CategoryClick    Category = "click"
	CategoryResearch Category = "research"
	CategoryStudying Category = "studying"
	CategorySpecial  Category = "special"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryClick, CategoryResearch, CategoryStudying, CategorySpecial:
		return true
	default:
		return false
	}
}

// Upgrade is a levelable purchase. CurrentLevel is the only field mutated after creation.
type Upgrade struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Effect         string     `json:"effect"`
	BaseCost       float64    `json:"baseCost"`
	CostMultiplier float64    `json:"costMultiplier"`
	MaxLevel       int        `json:"maxLevel"`
	CurrentLevel   int        `json:"currentLevel"`
	Category       Category   `json:"category"`
	EffectType     EffectType `json:"effectType"`
	EffectValue    float64    `json:"effectValue"`
	MinLevel       int        `json:"minLevel,omitempty"`
	Unfloored      bool       `json:"unfloored,omitempty"`
}

// Maxed reports whether no further level can be bought.
func (u Upgrade) Maxed() bool {
	return u.CurrentLevel >= u.MaxLevel
}

// DefaultPlayerName is the name of a player who has not introduced themselves.
const DefaultPlayerName = "A Stranger"
