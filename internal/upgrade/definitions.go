package upgrade

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// DisciplineID is the upgrade whose cost stays unfloored when a catalog omits the flag.
const DisciplineID = "discipline"

// Definition is one catalog record as written in YAML.
type Definition struct {
	ID             string  `yaml:"id" validate:"required"`
	Name           string  `yaml:"name" validate:"required"`
	Description    string  `yaml:"description"`
	Effect         string  `yaml:"effect"`
	Category       string  `yaml:"category" validate:"required,oneof=click research studying special"`
	BaseCost       float64 `yaml:"baseCost" validate:"gt=0"`
	CostMultiplier float64 `yaml:"costMultiplier" validate:"gt=0"`
	MaxLevel       int     `yaml:"maxLevel" validate:"gt=0"`
	EffectType     string  `yaml:"effectType" validate:"required"`
	EffectValue    float64 `yaml:"effectValue"`
	MinLevel       int     `yaml:"minLevel" validate:"gte=0"`
	Unfloored      *bool   `yaml:"unfloored"`
}

type catalogFile struct {
	Upgrades []Definition `yaml:"upgrades"`
}

// DefinitionError reports every problem found in a catalog.
type DefinitionError struct {
	Problems []string
}

func (e *DefinitionError) Error() string {
	return "invalid upgrade catalog: " + strings.Join(e.Problems, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadDefinitions parses and validates a YAML catalog.
func LoadDefinitions(r io.Reader) ([]engine.Upgrade, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode upgrade catalog: %w", err)
	}

	var problems []string
	seen := make(map[string]bool, len(f.Upgrades))
	out := make([]engine.Upgrade, 0, len(f.Upgrades))
	for i, d := range f.Upgrades {
		if err := validate.Struct(d); err != nil {
			problems = append(problems, fmt.Sprintf("upgrade[%d] %q: %v", i, d.ID, err))
			continue
		}
		if seen[d.ID] {
			problems = append(problems, fmt.Sprintf("upgrade %q: duplicate id", d.ID))
			continue
		}
		seen[d.ID] = true

		effect, ok := engine.ParseEffectType(d.EffectType)
		if !ok {
			problems = append(problems, fmt.Sprintf("upgrade %q: unknown effectType %q", d.ID, d.EffectType))
			continue
		}
		unfloored := d.ID == DisciplineID
		if d.Unfloored != nil {
			unfloored = *d.Unfloored
		}
		out = append(out, engine.Upgrade{
			ID:             d.ID,
			Name:           d.Name,
			Description:    d.Description,
			Effect:         d.Effect,
			BaseCost:       d.BaseCost,
			CostMultiplier: d.CostMultiplier,
			MaxLevel:       d.MaxLevel,
			Category:       engine.Category(d.Category),
			EffectType:     effect,
			EffectValue:    d.EffectValue,
			MinLevel:       d.MinLevel,
			Unfloored:      unfloored,
		})
	}
	if len(problems) > 0 {
		return nil, &DefinitionError{Problems: problems}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var (
	defaultOnce sync.Once
	defaultDefs []engine.Upgrade
	defaultErr  error
)

// DefaultDefinitions returns the embedded catalog. The slice is a fresh copy.
func DefaultDefinitions() ([]engine.Upgrade, error) {
	defaultOnce.Do(func() {
		defaultDefs, defaultErr = LoadDefinitions(bytes.NewReader(defaultCatalog))
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	out := make([]engine.Upgrade, len(defaultDefs))
	copy(out, defaultDefs)
	return out, nil
}
