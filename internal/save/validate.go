package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the structure of a raw game state object and reports every
// violation it finds:
//   - name is a string
//   - exp, lifetimeExp and clickMultiplier are numbers
//   - level, when present, is a number
//   - upgrades is an object; stats and both action groups are objects when present
//   - 0 <= exp <= lifetimeExp
func Validate(payload []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return &ImportError{Kind: KindParse, Reason: "save data is not a JSON object", Err: err}
	}

	var problems []string
	if _, ok := raw["name"].(string); !ok {
		problems = append(problems, "name must be a string")
	}
	exp, expOK := raw["exp"].(float64)
	if !expOK {
		problems = append(problems, "exp must be a number")
	}
	lifetime, lifetimeOK := raw["lifetimeExp"].(float64)
	if !lifetimeOK {
		problems = append(problems, "lifetimeExp must be a number")
	}
	if _, ok := raw["clickMultiplier"].(float64); !ok {
		problems = append(problems, "clickMultiplier must be a number")
	}
	if v, ok := raw["level"]; ok && v != nil {
		if _, isNum := v.(float64); !isNum {
			problems = append(problems, "level must be a number")
		}
	}
	if _, ok := raw["upgrades"].(map[string]any); !ok {
		problems = append(problems, "upgrades must be an object")
	}
	for _, key := range []string{"stats", "trainingActions", "meditationActions"} {
		if v, ok := raw[key]; ok && v != nil {
			if _, isObj := v.(map[string]any); !isObj {
				problems = append(problems, key+" must be an object")
			}
		}
	}

	if expOK && exp < 0 {
		problems = append(problems, "exp must not be negative")
	}
	if lifetimeOK && lifetime < 0 {
		problems = append(problems, "lifetimeExp must not be negative")
	}
	if expOK && lifetimeOK && exp > lifetime {
		problems = append(problems, "exp must not exceed lifetimeExp")
	}

	if len(problems) > 0 {
		return &ImportError{Kind: KindValidation, Reason: "save data failed validation", Problems: problems}
	}
	return nil
}

// decodeState validates payload, decodes it and fills the defaults older saves omit.
func decodeState(payload []byte) (GameState, error) {
	if err := Validate(payload); err != nil {
		return GameState{}, err
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(payload, &present); err != nil {
		return GameState{}, &ImportError{Kind: KindParse, Reason: "save data is not a JSON object", Err: err}
	}
	var st GameState
	if err := json.Unmarshal(payload, &st); err != nil {
		return GameState{}, &ImportError{Kind: KindDecode, Reason: "save data has unexpected field types", Err: err}
	}
	if _, ok := present["level"]; !ok || st.Level == 0 {
		st.Level = 1
	}
	if _, ok := present["critDamage"]; !ok {
		st.CritDamage = engine.BaseCritDamage
	}
	if st.Upgrades == nil {
		st.Upgrades = Upgrades{}
	}

	if err := validate.Struct(st); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return GameState{}, &ImportError{Kind: KindValidation, Reason: "save data failed validation", Err: err}
		}
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
		return GameState{}, &ImportError{Kind: KindValidation, Reason: "save data failed validation", Problems: problems}
	}
	return st, nil
}
