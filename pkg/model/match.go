package model

// MatchKind identifies the comparison semantics of a table key.
type MatchKind int

const (
	MatchExact MatchKind = iota
	MatchLPM
	MatchTernary
	MatchRange
	MatchOptional
)

// String returns the artifact-level name of the match kind.
func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchLPM:
		return "lpm"
	case MatchTernary:
		return "ternary"
	case MatchRange:
		return "range"
	case MatchOptional:
		return "optional"
	default:
		return "unknown"
	}
}

// MatchSpec is the closed set of match-kind variants. Each variant knows how
// to turn a table hit on its key into a field Constraint. The sealed method
// keeps the set closed: no match kinds exist outside this package.
type MatchSpec interface {
	Kind() MatchKind

	// HitConstraint produces the constraint a hit on this key imposes on
	// field. If bound is non-empty, a metadata binding from an earlier
	// action fixed the field to that value and the constraint resolves to
	// it. The second return is false when the kind imposes no constraint
	// (optional / don't-care).
	HitConstraint(field, bound string) (Constraint, bool)

	matchSpec()
}

// ExactMatch requires the field to equal a single installed value.
type ExactMatch struct{}

func (ExactMatch) Kind() MatchKind { return MatchExact }
func (ExactMatch) matchSpec()      {}

func (ExactMatch) HitConstraint(field, bound string) (Constraint, bool) {
	if bound != "" {
		return Constraint{Field: field, Relation: Equals, Values: []string{bound}}, true
	}
	return Constraint{Field: field, Relation: Equals, Symbolic: true}, true
}

// LPMMatch requires the field to fall inside an installed prefix.
type LPMMatch struct{}

func (LPMMatch) Kind() MatchKind { return MatchLPM }
func (LPMMatch) matchSpec()      {}

func (LPMMatch) HitConstraint(field, bound string) (Constraint, bool) {
	if bound != "" {
		return Constraint{Field: field, Relation: InRange, Values: []string{bound}}, true
	}
	return Constraint{Field: field, Relation: InRange, Symbolic: true}, true
}

// TernaryMatch requires the field to match an installed value under a mask.
// A static mask may be declared on the key itself in the artifact.
type TernaryMatch struct {
	Mask string // optional artifact-declared mask, hexstr
}

func (TernaryMatch) Kind() MatchKind { return MatchTernary }
func (TernaryMatch) matchSpec()      {}

func (m TernaryMatch) HitConstraint(field, bound string) (Constraint, bool) {
	c := Constraint{Field: field, Relation: OneOf, Mask: m.Mask, Symbolic: true}
	if bound != "" {
		c.Values = []string{bound}
		c.Symbolic = false
	}
	return c, true
}

// RangeMatch requires the field to fall inside an installed numeric range.
type RangeMatch struct{}

func (RangeMatch) Kind() MatchKind { return MatchRange }
func (RangeMatch) matchSpec()      {}

func (RangeMatch) HitConstraint(field, bound string) (Constraint, bool) {
	if bound != "" {
		return Constraint{Field: field, Relation: InRange, Values: []string{bound}}, true
	}
	return Constraint{Field: field, Relation: InRange, Symbolic: true}, true
}

// OptionalMatch is a wildcardable key: a hit imposes no constraint on the
// field unless the installed entry chose to constrain it, which the static
// model cannot see.
type OptionalMatch struct{}

func (OptionalMatch) Kind() MatchKind { return MatchOptional }
func (OptionalMatch) matchSpec()      {}

func (OptionalMatch) HitConstraint(field, bound string) (Constraint, bool) {
	return Constraint{}, false
}

// ParseMatchKind maps an artifact match_type string to its MatchSpec.
// The mask argument carries a static key mask when the artifact declares one.
func ParseMatchKind(s, mask string) (MatchSpec, bool) {
	switch s {
	case "exact":
		return ExactMatch{}, true
	case "lpm":
		return LPMMatch{}, true
	case "ternary":
		return TernaryMatch{Mask: mask}, true
	case "range":
		return RangeMatch{}, true
	case "optional":
		return OptionalMatch{}, true
	default:
		return nil, false
	}
}
