package engine

import "fmt"

// GateError indicates a feature is still locked.
// This is returned by gate checks and should be shown to the user.
type GateError struct {
	Feature     Feature
	Requirement string
}

func (e GateError) Error() string {
	if e.Requirement == "" {
		return fmt.Sprintf("feature '%s' is locked", e.Feature)
	}
	return fmt.Sprintf("feature '%s' unlocks at %s", e.Feature, e.Requirement)
}

// ValidationError reports malformed input to a public operation. State is unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
