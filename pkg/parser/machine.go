// Package parser models the header-parser state machine: per-state
// transition tables, finite root-to-terminal path enumeration, and header
// layout queries.
package parser

import (
	"strings"

	"github.com/p4lens/p4lens/pkg/model"
)

// Hop is one step of a parser path: the state visited and the transition
// case taken to leave it.
type Hop struct {
	State string               `json:"state"`
	Case  model.TransitionCase `json:"case"`
}

// Path is one finite root-to-terminal parser path.
type Path struct {
	Hops     []Hop    `json:"hops"`
	Terminal string   `json:"terminal"` // "accept" or "reject"
	Headers  []string `json:"headers"`  // header instances extracted, in order
}

// Machine answers parser state-machine queries against a loaded program.
type Machine struct {
	program *model.Program
}

// New builds a Machine over the loaded program model.
func New(program *model.Program) *Machine {
	return &Machine{program: program}
}

// Transitions returns the transition case table for a state: the exact
// value/range-to-next-state cases plus the default case. Callers use it to
// learn the header magic values a state requires.
func (m *Machine) Transitions(state string) (*model.ParserState, error) {
	return m.program.Parser.State(state)
}

// Paths enumerates every finite path from the initial state to a terminal
// state, depth-first in case declaration order. A state is never revisited
// within one path: a cycle in the parser graph truncates the path at the
// first repeat and the partial path is discarded, which guarantees
// termination and finite output. Output is deterministic for a fixed
// artifact.
func (m *Machine) Paths() []Path {
	var out []Path
	visited := map[string]bool{m.program.Parser.Init: true}
	m.walk(m.program.Parser.Init, visited, nil, nil, &out)
	return out
}

func (m *Machine) walk(state string, visited map[string]bool, hops []Hop, headers []string, out *[]Path) {
	st, ok := m.program.Parser.States[state]
	if !ok {
		return
	}

	headers = append(headers[:len(headers):len(headers)], st.Extracts...)

	// A state with no transition cases falls through to accept.
	if len(st.Cases) == 0 {
		*out = append(*out, finishPath(hops, Hop{State: state}, model.StateAccept, headers))
		return
	}

	for _, c := range st.Cases {
		hop := Hop{State: state, Case: c}
		if model.IsTerminalState(c.Next) {
			*out = append(*out, finishPath(hops, hop, c.Next, headers))
			continue
		}
		if visited[c.Next] {
			// Cycle: discard this branch rather than returning a partial
			// path.
			continue
		}
		visited[c.Next] = true
		m.walk(c.Next, visited, append(hops[:len(hops):len(hops)], hop), headers, out)
		delete(visited, c.Next)
	}
}

func finishPath(hops []Hop, last Hop, terminal string, headers []string) Path {
	full := make([]Hop, 0, len(hops)+1)
	full = append(full, hops...)
	full = append(full, last)
	hdrs := make([]string, len(headers))
	copy(hdrs, headers)
	return Path{Hops: full, Terminal: terminal, Headers: hdrs}
}

// HeaderDefinitions returns header name -> ordered field list with bit
// offsets and widths, in artifact declaration order.
func (m *Machine) HeaderDefinitions() []*model.Header {
	out := make([]*model.Header, 0, len(m.program.HeaderOrder))
	for _, name := range m.program.HeaderOrder {
		out = append(out, m.program.Headers[name])
	}
	return out
}

// HeaderBits resolves a field expression to its (bit offset, bit width)
// inside the owning header. Accepted spellings: the fully-qualified
// "<header>.<field>", an optional "hdr." prefix, a capitalized protocol name
// ("Ethernet.etherType"), and the "IPv4.proto" alias for ipv4.protocol.
func (m *Machine) HeaderBits(fieldExpr string) (model.HeaderField, error) {
	expr := strings.TrimPrefix(fieldExpr, "hdr.")
	if f, ok := m.program.Fields[expr]; ok {
		return f, nil
	}

	i := strings.Index(expr, ".")
	if i <= 0 {
		return model.HeaderField{}, &model.UnknownFieldError{Field: fieldExpr}
	}
	header := strings.ToLower(expr[:i])
	field := expr[i+1:]
	if header == "ipv4" && (field == "proto" || field == "protocol") {
		field = "protocol"
	}
	if f, ok := m.program.Fields[header+"."+field]; ok {
		return f, nil
	}
	return model.HeaderField{}, &model.UnknownFieldError{Field: fieldExpr}
}
