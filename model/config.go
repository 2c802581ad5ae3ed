package model

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is a data structure that represents the configuration of an agent.
// It maps a schema key name to its typed value (int, bool or string).
type Snapshot map[string]interface{}

// Keys returns the snapshot key names in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the snapshot. Values are scalars so a
// shallow copy is enough to detach it from the original.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// State selects what Apply does with the supplied keys.
type State string

const (
	// StatePresent writes the supplied values.
	StatePresent State = "present"
	// StateAbsent removes the stored values of the supplied keys so the agent
	// falls back to its defaults.
	StateAbsent State = "absent"
)

// ParseState converts a user supplied state, empty meaning present.
func ParseState(s string) (State, error) {
	switch State(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatePresent:
		return StatePresent, nil
	case StateAbsent:
		return StateAbsent, nil
	default:
		return "", fmt.Errorf("invalid state %q: expected %q or %q", s, StatePresent, StateAbsent)
	}
}

// DesiredState is the input of an apply: a subset of the schema keys and the
// action to take on them.
type DesiredState struct {
	State  State                  `yaml:"state" json:"state"`
	Config map[string]interface{} `yaml:"config" json:"config"`
}

// Result is returned by an apply.
type Result struct {
	Config          Snapshot `yaml:"config" json:"config"`
	Changed         bool     `yaml:"changed" json:"changed"`
	ChangedKeys     []string `yaml:"changed_keys,omitempty" json:"changed_keys,omitempty"`
	RestartRequired []string `yaml:"restart_required,omitempty" json:"restart_required,omitempty"`
	CheckMode       bool     `yaml:"check_mode,omitempty" json:"check_mode,omitempty"`
}
