package schema

import "fmt"

// ValidationError reports a value rejected by the schema: an unknown or
// read-only key, a wrong type, an out of range number or an unknown choice.
type ValidationError struct {
	Key        string
	Value      interface{}
	Constraint string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Key, e.Constraint)
	}
	return fmt.Sprintf("invalid value %#v for %s: %s", e.Value, e.Key, e.Constraint)
}
