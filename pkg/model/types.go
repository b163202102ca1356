// Package model holds the normalized, immutable representation of a compiled
// packet-processing program: tables, actions, stateful objects, header layout,
// the parser state machine and the control-flow graphs. Everything here is
// built once by the loader and is read-only afterward.
package model

// Table is one match-action table as declared by the compiled program.
// Immutable once loaded.
type Table struct {
	Name          string
	Keys          []MatchKey // ordered match-key list
	Actions       []string   // ordered action names
	DefaultAction string
	Size          int
	Const         bool // table entries are compile-time constant
}

// Clone returns a deep copy of the table. Match specs are immutable values
// and are shared.
func (t *Table) Clone() *Table {
	out := *t
	out.Keys = append([]MatchKey(nil), t.Keys...)
	out.Actions = append([]string(nil), t.Actions...)
	return &out
}

// MatchKey is a single entry of a table's key list.
type MatchKey struct {
	Field string // fully-qualified field expression, e.g. "hdr.ipv4.dstAddr"
	Match MatchSpec
}

// ActionParam is one runtime parameter of an action.
type ActionParam struct {
	Name     string
	Bitwidth int
}

// OpArg is one argument of a primitive operation, kept as structured data
// extracted from the compiled-program description (never from source text).
type OpArg struct {
	Kind  string // "field", "hexstr", "runtime_data", "register", ...
	Field string // set when Kind == "field"
	Value string // set when Kind == "hexstr"
	Index int    // set when Kind == "runtime_data" or "register"
}

// PrimitiveOp is one primitive operation in an action body (assign,
// arithmetic, checksum update, ...).
type PrimitiveOp struct {
	Op   string
	Args []OpArg
}

// Action is a control-plane action: its runtime parameter signature plus the
// ordered primitive operations of its body.
type Action struct {
	Name       string
	Params     []ActionParam
	Primitives []PrimitiveOp
}

// Clone returns a deep copy of the action, including the primitive argument
// lists.
func (a *Action) Clone() *Action {
	out := *a
	out.Params = append([]ActionParam(nil), a.Params...)
	out.Primitives = append([]PrimitiveOp(nil), a.Primitives...)
	for i, op := range out.Primitives {
		out.Primitives[i].Args = append([]OpArg(nil), op.Args...)
	}
	return &out
}

// StatefulKind enumerates the kinds of stateful objects a program can declare.
type StatefulKind int

const (
	StatefulRegister StatefulKind = iota
	StatefulCounter
	StatefulMeter
)

// String returns the artifact-level name of the kind.
func (k StatefulKind) String() string {
	switch k {
	case StatefulRegister:
		return "register"
	case StatefulCounter:
		return "counter"
	case StatefulMeter:
		return "meter"
	default:
		return "unknown"
	}
}

// StatefulObject is a register, counter or meter array.
type StatefulObject struct {
	Kind     StatefulKind
	Name     string
	Bitwidth int
	Size     int
}

// Program is the fully-loaded program model. Maps are keyed by name; the
// *Order slices preserve artifact declaration order for deterministic output.
type Program struct {
	Name string

	Tables     map[string]*Table
	TableOrder []string

	Actions     map[string]*Action
	ActionOrder []string

	Headers     map[string]*Header
	HeaderOrder []string

	// Fields indexes every header field by fully-qualified name
	// ("<header>.<field>") for constraint validation and sizing.
	Fields map[string]HeaderField

	Parser *ParserProgram

	Stateful []StatefulObject

	// Graphs holds the control-flow graphs by p4c-graphs file stem
	// (e.g. "MyIngress").
	Graphs map[string]*ControlGraph
}

// Table returns the named table, or a NotFoundError.
func (p *Program) Table(name string) (*Table, error) {
	t, ok := p.Tables[name]
	if !ok {
		return nil, &NotFoundError{Kind: "table", Name: name}
	}
	return t, nil
}

// Action returns the named action, or a NotFoundError.
func (p *Program) Action(name string) (*Action, error) {
	a, ok := p.Actions[name]
	if !ok {
		return nil, &NotFoundError{Kind: "action", Name: name}
	}
	return a, nil
}

// Field resolves a fully-qualified field expression, or returns an
// UnknownFieldError.
func (p *Program) Field(expr string) (HeaderField, error) {
	f, ok := p.Fields[expr]
	if !ok {
		return HeaderField{}, &UnknownFieldError{Field: expr}
	}
	return f, nil
}
