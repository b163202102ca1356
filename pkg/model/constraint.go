package model

import (
	"encoding/json"
	"fmt"
)

// Relation is the comparison a Constraint expresses.
type Relation int

const (
	Equals Relation = iota
	InRange
	OneOf
)

// String returns the wire-level name of the relation.
func (r Relation) String() string {
	switch r {
	case Equals:
		return "equals"
	case InRange:
		return "in-range"
	case OneOf:
		return "one-of"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the relation as its wire-level name.
func (r Relation) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes a wire-level relation name, the inverse of String.
func (r *Relation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "equals":
		*r = Equals
	case "in-range":
		*r = InRange
	case "one-of":
		*r = OneOf
	default:
		return fmt.Errorf("unknown relation %q", s)
	}
	return nil
}

// Constraint is a single condition on a header or metadata field.
//
// A symbolic constraint is satisfiable by any installed control-plane entry
// of the right shape; the static model cannot know the concrete value. A
// resolved constraint carries the concrete values in Values, either because
// a condition node fixed them or because an earlier action on the same path
// assigned a constant to the field.
type Constraint struct {
	Field    string   `json:"field"`
	Relation Relation `json:"relation"`
	Values   []string `json:"values,omitempty"`
	Mask     string   `json:"mask,omitempty"`
	Symbolic bool     `json:"symbolic,omitempty"`
}

// PathStep is one step of a feasible path: the CFG node visited, the outcome
// taken to leave it, and the field constraints that outcome imposes.
type PathStep struct {
	Node        string       `json:"node"`
	Outcome     string       `json:"outcome"`
	Constraints []Constraint `json:"constraints,omitempty"`
}

// PathConstraintSet is the ordered conjunction of constraints along one
// feasible root-to-target path.
type PathConstraintSet struct {
	Steps []PathStep `json:"steps"`
}

// ConstraintResult is the solver's answer for one target node: a disjunction
// of per-path conjunctions. The target is reachable if ANY one path's
// conjunction is satisfied. Unreachable is an explicit, valid answer; it is
// never reported as an error and never as an ambiguous empty list.
type ConstraintResult struct {
	Target      string              `json:"target"`
	Unreachable bool                `json:"unreachable"`
	Paths       []PathConstraintSet `json:"paths,omitempty"`
}
