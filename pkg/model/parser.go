package model

// Reserved parser state names. "accept" and "reject" are terminals and never
// appear in the parse_states list; transitions name them as next states.
const (
	StateAccept = "accept"
	StateReject = "reject"
)

// IsTerminalState reports whether name is one of the terminal parser states.
func IsTerminalState(name string) bool {
	return name == StateAccept || name == StateReject
}

// TransitionCase is one (value-or-masked-value, next-state) case of a
// parser select. Value and Mask are artifact hexstr literals; an empty Value
// marks the default/no-match case.
type TransitionCase struct {
	Value string `json:"value,omitempty"`
	Mask  string `json:"mask,omitempty"`
	Next  string `json:"next"`
}

// Default reports whether the case is the default/no-match case.
func (c TransitionCase) Default() bool { return c.Value == "" }

// ParserState is one state of the header-parser state machine.
type ParserState struct {
	Name string

	// Extracts lists the header instances this state extracts, in order.
	Extracts []string

	// SelectFields is the select expression: the fully-qualified fields the
	// transition cases are keyed on. Empty when the state transitions
	// unconditionally.
	SelectFields []string

	// Cases holds the value cases followed by the default case (if any).
	// A state with no cases at all transitions to accept.
	Cases []TransitionCase
}

// Clone returns a deep copy of the state.
func (s *ParserState) Clone() *ParserState {
	out := *s
	out.Extracts = append([]string(nil), s.Extracts...)
	out.SelectFields = append([]string(nil), s.SelectFields...)
	out.Cases = append([]TransitionCase(nil), s.Cases...)
	return &out
}

// ParserProgram is the whole parser state machine.
type ParserProgram struct {
	Init   string // initial state name
	States map[string]*ParserState
	Order  []string // declaration order
}

// State returns the named state, or an UnknownStateError. Terminal states
// have no ParserState record and are reported as unknown here; callers that
// accept terminals check IsTerminalState first.
func (p *ParserProgram) State(name string) (*ParserState, error) {
	st, ok := p.States[name]
	if !ok {
		return nil, &UnknownStateError{State: name}
	}
	return st, nil
}
