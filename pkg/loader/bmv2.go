package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/p4lens/p4lens/pkg/model"
)

// Wire shapes of the BMv2 JSON compiled-program description. Only the
// sections the engine consumes are declared; everything else is ignored by
// the decoder.

type bmv2File struct {
	Program        string           `json:"program"`
	HeaderTypes    []bmv2HeaderType `json:"header_types"`
	Headers        []bmv2Header     `json:"headers"`
	Actions        []bmv2Action     `json:"actions"`
	Pipelines      []bmv2Pipeline   `json:"pipelines"`
	Parsers        []bmv2Parser     `json:"parsers"`
	RegisterArrays []bmv2Stateful   `json:"register_arrays"`
	CounterArrays  []bmv2Stateful   `json:"counter_arrays"`
	MeterArrays    []bmv2Stateful   `json:"meter_arrays"`
}

type bmv2HeaderType struct {
	Name string `json:"name"`
	// Fields entries are [name, bitwidth, signed] tuples; bitwidth may be
	// the string "*" for varbit fields, which the model does not size.
	Fields [][]json.RawMessage `json:"fields"`
}

type bmv2Header struct {
	Name       string `json:"name"`
	HeaderType string `json:"header_type"`
	Metadata   bool   `json:"metadata"`
}

type bmv2RuntimeData struct {
	Name     string `json:"name"`
	Bitwidth int    `json:"bitwidth"`
}

type bmv2Primitive struct {
	Op         string      `json:"op"`
	Parameters []bmv2Param `json:"parameters"`
}

type bmv2Param struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type bmv2Action struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	RuntimeData []bmv2RuntimeData `json:"runtime_data"`
	Primitives  []bmv2Primitive   `json:"primitives"`
}

type bmv2Pipeline struct {
	Name   string      `json:"name"`
	Tables []bmv2Table `json:"tables"`
}

type bmv2TableKey struct {
	MatchType string          `json:"match_type"`
	Target    json.RawMessage `json:"target"`
	Mask      *string         `json:"mask"`
}

type bmv2DefaultEntry struct {
	ActionID int `json:"action_id"`
}

type bmv2Table struct {
	Name         string            `json:"name"`
	Key          []bmv2TableKey    `json:"key"`
	Actions      []string          `json:"actions"`
	MaxSize      int               `json:"max_size"`
	IsConstTable bool              `json:"is_const_table"`
	DefaultEntry *bmv2DefaultEntry `json:"default_entry"`
}

type bmv2Parser struct {
	Name        string           `json:"name"`
	InitState   string           `json:"init_state"`
	ParseStates []bmv2ParseState `json:"parse_states"`
}

type bmv2ParseState struct {
	Name          string           `json:"name"`
	ParserOps     []bmv2Primitive  `json:"parser_ops"`
	TransitionKey []bmv2Param      `json:"transition_key"`
	Transitions   []bmv2Transition `json:"transitions"`
}

type bmv2Transition struct {
	Type      string  `json:"type"` // "hexstr" or "default"
	Value     *string `json:"value"`
	Mask      *string `json:"mask"`
	NextState *string `json:"next_state"`
}

type bmv2Stateful struct {
	Name     string `json:"name"`
	Bitwidth int    `json:"bitwidth"`
	Size     int    `json:"size"`
}

// buildProgram converts the decoded BMv2 JSON into the normalized program
// model. Cross-artifact validation happens later in Load; this step only
// rejects internally inconsistent programs.
func buildProgram(f *bmv2File) (*model.Program, error) {
	p := &model.Program{
		Name:    f.Program,
		Tables:  make(map[string]*model.Table),
		Actions: make(map[string]*model.Action),
		Headers: make(map[string]*model.Header),
		Fields:  make(map[string]model.HeaderField),
		Graphs:  make(map[string]*model.ControlGraph),
	}

	types := make(map[string]bmv2HeaderType, len(f.HeaderTypes))
	for _, ht := range f.HeaderTypes {
		types[ht.Name] = ht
	}

	for _, h := range f.Headers {
		ht, ok := types[h.HeaderType]
		if !ok {
			return nil, loadErrf(ArtifactProgram, "header %q references unknown header type %q", h.Name, h.HeaderType)
		}
		hdr := &model.Header{Name: h.Name, Type: h.HeaderType}
		offset := 0
		for _, raw := range ht.Fields {
			name, width, err := decodeHeaderField(raw)
			if err != nil {
				return nil, loadErrf(ArtifactProgram, "header type %q: %v", ht.Name, err)
			}
			field := model.HeaderField{
				Name:   h.Name + "." + name,
				Header: h.Name,
				Offset: offset,
				Width:  width,
			}
			hdr.Fields = append(hdr.Fields, field)
			p.Fields[field.Name] = field
			offset += width
		}
		p.Headers[h.Name] = hdr
		p.HeaderOrder = append(p.HeaderOrder, h.Name)
	}

	actionsByID := make(map[int]string, len(f.Actions))
	for _, a := range f.Actions {
		if _, dup := p.Actions[a.Name]; dup {
			return nil, loadErrf(ArtifactProgram, "duplicate action %q", a.Name)
		}
		act := &model.Action{Name: a.Name}
		for _, rd := range a.RuntimeData {
			act.Params = append(act.Params, model.ActionParam{Name: rd.Name, Bitwidth: rd.Bitwidth})
		}
		for _, prim := range a.Primitives {
			op := model.PrimitiveOp{Op: prim.Op}
			for _, param := range prim.Parameters {
				op.Args = append(op.Args, decodeOpArg(param))
			}
			act.Primitives = append(act.Primitives, op)
		}
		p.Actions[a.Name] = act
		p.ActionOrder = append(p.ActionOrder, a.Name)
		actionsByID[a.ID] = a.Name
	}

	for _, pipe := range f.Pipelines {
		for _, t := range pipe.Tables {
			if _, dup := p.Tables[t.Name]; dup {
				return nil, loadErrf(ArtifactProgram, "duplicate table %q", t.Name)
			}
			tbl := &model.Table{
				Name:    t.Name,
				Actions: t.Actions,
				Size:    t.MaxSize,
				Const:   t.IsConstTable,
			}
			for _, k := range t.Key {
				field, err := decodeFieldRef(k.Target)
				if err != nil {
					return nil, loadErrf(ArtifactProgram, "table %q key: %v", t.Name, err)
				}
				mask := ""
				if k.Mask != nil {
					mask = *k.Mask
				}
				spec, ok := model.ParseMatchKind(k.MatchType, mask)
				if !ok {
					return nil, loadErrf(ArtifactProgram, "table %q key %q: unknown match type %q", t.Name, field, k.MatchType)
				}
				tbl.Keys = append(tbl.Keys, model.MatchKey{Field: field, Match: spec})
			}
			if t.DefaultEntry != nil {
				name, ok := actionsByID[t.DefaultEntry.ActionID]
				if !ok {
					return nil, loadErrf(ArtifactProgram, "table %q default entry references unknown action id %d", t.Name, t.DefaultEntry.ActionID)
				}
				tbl.DefaultAction = name
			}
			p.Tables[t.Name] = tbl
			p.TableOrder = append(p.TableOrder, t.Name)
		}
	}

	parser, err := buildParser(f)
	if err != nil {
		return nil, err
	}
	p.Parser = parser

	for _, r := range f.RegisterArrays {
		p.Stateful = append(p.Stateful, model.StatefulObject{Kind: model.StatefulRegister, Name: r.Name, Bitwidth: r.Bitwidth, Size: r.Size})
	}
	for _, c := range f.CounterArrays {
		p.Stateful = append(p.Stateful, model.StatefulObject{Kind: model.StatefulCounter, Name: c.Name, Bitwidth: c.Bitwidth, Size: c.Size})
	}
	for _, m := range f.MeterArrays {
		p.Stateful = append(p.Stateful, model.StatefulObject{Kind: model.StatefulMeter, Name: m.Name, Bitwidth: m.Bitwidth, Size: m.Size})
	}

	return p, nil
}

func buildParser(f *bmv2File) (*model.ParserProgram, error) {
	pp := &model.ParserProgram{States: make(map[string]*model.ParserState)}
	if len(f.Parsers) == 0 {
		return pp, nil
	}
	// Multiple parsers never occur in the v1model programs this engine
	// targets; the first one is the packet parser.
	raw := f.Parsers[0]
	pp.Init = raw.InitState

	for _, st := range raw.ParseStates {
		if st.Name == "" {
			return nil, loadErrf(ArtifactProgram, "parser %q has an unnamed state", raw.Name)
		}
		if _, dup := pp.States[st.Name]; dup {
			return nil, loadErrf(ArtifactProgram, "duplicate parser state %q", st.Name)
		}
		ms := &model.ParserState{Name: st.Name}

		for _, op := range st.ParserOps {
			if op.Op != "extract" || len(op.Parameters) == 0 {
				continue
			}
			var inst string
			if err := json.Unmarshal(op.Parameters[0].Value, &inst); err == nil && inst != "" {
				ms.Extracts = append(ms.Extracts, inst)
			}
		}

		for _, k := range st.TransitionKey {
			if k.Type != "field" {
				continue
			}
			field, err := decodeFieldRef(k.Value)
			if err != nil {
				return nil, loadErrf(ArtifactProgram, "parser state %q transition key: %v", st.Name, err)
			}
			ms.SelectFields = append(ms.SelectFields, field)
		}

		var defaultCase *model.TransitionCase
		for _, tr := range st.Transitions {
			next := model.StateAccept
			if tr.NextState != nil {
				next = *tr.NextState
			}
			if tr.Type == "default" || tr.Value == nil {
				defaultCase = &model.TransitionCase{Next: next}
				continue
			}
			c := model.TransitionCase{Value: *tr.Value, Next: next}
			if tr.Mask != nil {
				c.Mask = *tr.Mask
			}
			if c.Value == "" {
				return nil, loadErrf(ArtifactProgram, "parser state %q has a value transition with an empty value", st.Name)
			}
			if err := checkCaseWidth(c, ms.SelectFields, f); err != nil {
				return nil, err
			}
			ms.Cases = append(ms.Cases, c)
		}
		// Keep the default case last so enumeration order matches match
		// order.
		if defaultCase != nil {
			ms.Cases = append(ms.Cases, *defaultCase)
		}

		pp.States[st.Name] = ms
		pp.Order = append(pp.Order, st.Name)
	}

	if pp.Init != "" {
		if _, ok := pp.States[pp.Init]; !ok && !model.IsTerminalState(pp.Init) {
			return nil, loadErrf(ArtifactProgram, "parser init state %q is not declared", pp.Init)
		}
	}
	for _, name := range pp.Order {
		for _, c := range pp.States[name].Cases {
			if model.IsTerminalState(c.Next) {
				continue
			}
			if _, ok := pp.States[c.Next]; !ok {
				return nil, loadErrf(ArtifactProgram, "parser state %q transitions to undeclared state %q", name, c.Next)
			}
		}
	}
	return pp, nil
}

// checkCaseWidth enforces the invariant that a transition case value fits
// the declared bit-width of its select field(s).
func checkCaseWidth(c model.TransitionCase, selectFields []string, f *bmv2File) error {
	width := selectWidth(selectFields, f)
	if width == 0 {
		return nil // unsized select (varbit or unknown field); nothing to check
	}
	bits, err := hexstrBits(c.Value)
	if err != nil {
		return loadErrf(ArtifactProgram, "transition value %q is not a hexstr", c.Value)
	}
	if bits > width {
		return loadErrf(ArtifactProgram, "transition value %q needs %d bits but select field(s) %s carry %d",
			c.Value, bits, strings.Join(selectFields, "++"), width)
	}
	return nil
}

func selectWidth(fields []string, f *bmv2File) int {
	types := make(map[string]bmv2HeaderType, len(f.HeaderTypes))
	for _, ht := range f.HeaderTypes {
		types[ht.Name] = ht
	}
	total := 0
	for _, fq := range fields {
		i := strings.Index(fq, ".")
		if i <= 0 {
			return 0
		}
		inst, field := fq[:i], fq[i+1:]
		var typeName string
		for _, h := range f.Headers {
			if h.Name == inst {
				typeName = h.HeaderType
				break
			}
		}
		ht, ok := types[typeName]
		if !ok {
			return 0
		}
		found := false
		for _, raw := range ht.Fields {
			name, width, err := decodeHeaderField(raw)
			if err == nil && name == field {
				total += width
				found = true
				break
			}
		}
		if !found {
			return 0
		}
	}
	return total
}

// hexstrBits returns the minimum number of bits needed to represent a
// BMv2 hexstr literal like "0x0800".
func hexstrBits(s string) (int, error) {
	t := strings.TrimPrefix(strings.ToLower(s), "0x")
	if t == "" {
		return 0, fmt.Errorf("empty hexstr")
	}
	for _, c := range t {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return 0, fmt.Errorf("invalid hex digit %q", c)
		}
	}
	t = strings.TrimLeft(t, "0")
	if t == "" {
		return 1, nil
	}
	first := t[0]
	var v int
	if first <= '9' {
		v = int(first - '0')
	} else {
		v = int(first-'a') + 10
	}
	lead := 0
	for v > 0 {
		lead++
		v >>= 1
	}
	return lead + 4*(len(t)-1), nil
}

// decodeHeaderField decodes one [name, bitwidth, ...] tuple. Varbit widths
// ("*") decode to width 0.
func decodeHeaderField(raw []json.RawMessage) (string, int, error) {
	if len(raw) < 2 {
		return "", 0, fmt.Errorf("field tuple has %d elements, want at least 2", len(raw))
	}
	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return "", 0, fmt.Errorf("field name: %w", err)
	}
	var width int
	if err := json.Unmarshal(raw[1], &width); err != nil {
		var star string
		if err2 := json.Unmarshal(raw[1], &star); err2 == nil && star == "*" {
			return name, 0, nil
		}
		return "", 0, fmt.Errorf("field %q bitwidth: %w", name, err)
	}
	return name, width, nil
}

// decodeFieldRef decodes a field reference that is either a ["header",
// "field"] pair or an already-joined string, normalizing to
// "<header>.<field>".
func decodeFieldRef(raw json.RawMessage) (string, error) {
	var pair []string
	if err := json.Unmarshal(raw, &pair); err == nil {
		if len(pair) != 2 {
			return "", fmt.Errorf("field reference has %d parts, want 2", len(pair))
		}
		return pair[0] + "." + pair[1], nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}
	return "", fmt.Errorf("unparsable field reference %s", string(raw))
}

// decodeOpArg converts one primitive parameter into the structured OpArg
// form. Unknown parameter types keep their kind with an empty payload so
// the op list stays complete.
func decodeOpArg(p bmv2Param) model.OpArg {
	arg := model.OpArg{Kind: p.Type}
	switch p.Type {
	case "field":
		if field, err := decodeFieldRef(p.Value); err == nil {
			arg.Field = field
		}
	case "hexstr":
		var s string
		if err := json.Unmarshal(p.Value, &s); err == nil {
			arg.Value = s
		}
	case "runtime_data", "register":
		var n int
		if err := json.Unmarshal(p.Value, &n); err == nil {
			arg.Index = n
		}
	default:
		var s string
		if err := json.Unmarshal(p.Value, &s); err == nil {
			arg.Value = s
		}
	}
	return arg
}
