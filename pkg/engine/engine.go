// Package engine is the query facade: the only surface external callers
// touch. An Engine is constructed once by Load, is immutable afterward, and
// is safe for any number of concurrent readers. It is always an explicit
// handle passed by reference, never a process-wide global.
package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/p4lens/p4lens/pkg/cfg"
	"github.com/p4lens/p4lens/pkg/loader"
	"github.com/p4lens/p4lens/pkg/logging"
	"github.com/p4lens/p4lens/pkg/metrics"
	"github.com/p4lens/p4lens/pkg/model"
	"github.com/p4lens/p4lens/pkg/parser"
	"github.com/p4lens/p4lens/pkg/solver"
	"github.com/p4lens/p4lens/pkg/topology"
)

// Engine answers every read-only query of the facade. All state is built in
// Load/New and never mutated, so methods need no locks.
type Engine struct {
	id      string
	program *model.Program
	topo    *topology.Topology

	graphOrder []string // sorted graph names
	indices    map[string]*cfg.Index
	solvers    map[string]*solver.Solver
	machine    *parser.Machine

	log logging.Logger
	reg *metrics.Registry
}

// Load reads the bundle manifest at path, loads and cross-validates all four
// artifacts and builds the facade. Any failure aborts the whole load; no
// partially-initialized engine is ever returned.
func Load(manifestPath string, log logging.Logger, reg *metrics.Registry) (*Engine, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	start := time.Now()
	m, err := loader.ReadManifest(manifestPath)
	if err != nil {
		reg.RecordLoad("error", time.Since(start))
		return nil, err
	}
	bundle, err := loader.Load(m, log)
	if err != nil {
		reg.RecordLoad("error", time.Since(start))
		return nil, err
	}

	e, err := New(bundle, log, reg)
	if err != nil {
		reg.RecordLoad("error", time.Since(start))
		return nil, err
	}
	reg.RecordLoad("success", time.Since(start))
	return e, nil
}

// New builds the facade over an already-loaded bundle: one CFG index and one
// solver per control graph, plus the parser machine. A cyclic control graph
// fails construction; ranks are undefined on it and the input program is
// malformed.
func New(bundle *loader.Bundle, log logging.Logger, reg *metrics.Registry) (*Engine, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	e := &Engine{
		id:      uuid.NewString(),
		program: bundle.Program,
		topo:    bundle.Topology,
		indices: make(map[string]*cfg.Index, len(bundle.Program.Graphs)),
		solvers: make(map[string]*solver.Solver, len(bundle.Program.Graphs)),
		machine: parser.New(bundle.Program),
		reg:     reg,
	}
	e.log = log.With(logging.ContextID(e.id))

	for name := range bundle.Program.Graphs {
		e.graphOrder = append(e.graphOrder, name)
	}
	sort.Strings(e.graphOrder)

	for _, name := range e.graphOrder {
		g := bundle.Program.Graphs[name]
		idx, err := cfg.New(bundle.Program, g)
		if err != nil {
			e.log.Error("control graph rejected", logging.Graph(name), logging.Error(err))
			return nil, err
		}
		e.indices[name] = idx
		e.solvers[name] = solver.New(bundle.Program, g)
	}

	reg.SetProgramStats(
		len(bundle.Program.Tables),
		len(bundle.Program.Actions),
		len(bundle.Program.Graphs),
		len(bundle.Topology.Hosts()),
	)
	e.log.Info("engine ready",
		logging.Program(bundle.Program.Name),
		logging.Int("graphs", len(e.graphOrder)),
	)
	return e, nil
}

// ID returns the unique id of this loaded bundle context.
func (e *Engine) ID() string { return e.id }

// ProgramName returns the loaded program's name.
func (e *Engine) ProgramName() string { return e.program.Name }

// Metrics returns the engine's metrics registry.
func (e *Engine) Metrics() *metrics.Registry { return e.reg }

// Graphs returns the control graph names in ascending order.
func (e *Engine) Graphs() []string {
	out := make([]string, len(e.graphOrder))
	copy(out, e.graphOrder)
	return out
}

func (e *Engine) observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.reg.RecordQuery(op, status, time.Since(start))
}

// ListTables returns every table name in artifact declaration order.
func (e *Engine) ListTables() []string {
	defer e.observe("list_tables", time.Now(), nil)
	out := make([]string, len(e.program.TableOrder))
	copy(out, e.program.TableOrder)
	return out
}

// GetTable returns the full definition of one table. The result is a copy;
// mutating it never touches the loaded program.
func (e *Engine) GetTable(name string) (t *model.Table, err error) {
	defer func(start time.Time) { e.observe("get_table", start, err) }(time.Now())
	tbl, err := e.program.Table(name)
	if err != nil {
		return nil, err
	}
	return tbl.Clone(), nil
}

// GetAction returns the full definition of one action: its parameter
// signature and the structured primitive operation list. The result is a
// copy.
func (e *Engine) GetAction(name string) (a *model.Action, err error) {
	defer func(start time.Time) { e.observe("get_action", start, err) }(time.Now())
	act, err := e.program.Action(name)
	if err != nil {
		return nil, err
	}
	return act.Clone(), nil
}

// JumpDict returns the (table, outcome) -> next-node mapping merged over all
// control graphs. The outer map is keyed by table name, the inner by action
// name or the miss sentinel.
func (e *Engine) JumpDict() map[string]map[string]string {
	defer e.observe("get_jump_dict", time.Now(), nil)
	out := make(map[string]map[string]string)
	for _, name := range e.graphOrder {
		for t, dests := range e.indices[name].JumpDict() {
			inner, ok := out[t]
			if !ok {
				inner = make(map[string]string, len(dests))
				out[t] = inner
			}
			for o, d := range dests {
				inner[o] = d
			}
		}
	}
	return out
}

// RankedTables returns every table ordered by ascending rank, ties broken by
// ascending table name. A table appearing in more than one graph keeps the
// rank of the first graph in ascending graph-name order.
func (e *Engine) RankedTables() []cfg.RankedTable {
	defer e.observe("ranked_tables", time.Now(), nil)
	seen := make(map[string]bool)
	var out []cfg.RankedTable
	for _, name := range e.graphOrder {
		for _, rt := range e.indices[name].RankedTables() {
			if seen[rt.Table] {
				continue
			}
			seen[rt.Table] = true
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Table < out[j].Table
	})
	return out
}

// PathConstraints returns, for the named target node, a disjunction of
// per-path constraint conjunctions sufficient to reach it. Graphs are probed
// in ascending name order and the first graph containing the node answers.
// An unreachable target is a normal result carrying the Unreachable marker;
// only an unknown node name is an error.
func (e *Engine) PathConstraints(target string) (res *model.ConstraintResult, err error) {
	defer func(start time.Time) { e.observe("path_constraints", start, err) }(time.Now())

	for _, name := range e.graphOrder {
		g := e.program.Graphs[name]
		if g.FindByName(target) == nil {
			continue
		}
		res, err = e.solvers[name].PathConstraints(target)
		if err != nil {
			return nil, err
		}
		e.reg.RecordPathsFound("path_constraints", len(res.Paths), res.Unreachable)
		e.log.Debug("path constraints computed",
			logging.Target(target),
			logging.Graph(name),
			logging.Count(len(res.Paths)),
		)
		return res, nil
	}
	return nil, &model.NotFoundError{Kind: "node", Name: target}
}

// StatefulObjects returns every register, counter and meter array in
// artifact declaration order.
func (e *Engine) StatefulObjects() []model.StatefulObject {
	defer e.observe("stateful_objects", time.Now(), nil)
	out := make([]model.StatefulObject, len(e.program.Stateful))
	copy(out, e.program.Stateful)
	return out
}

// HeaderDefinitions returns every header with its ordered field list. The
// headers are copies.
func (e *Engine) HeaderDefinitions() []*model.Header {
	defer e.observe("header_definitions", time.Now(), nil)
	defs := e.machine.HeaderDefinitions()
	out := make([]*model.Header, len(defs))
	for i, h := range defs {
		out[i] = h.Clone()
	}
	return out
}

// HeaderBits resolves a field expression to its bit offset and width.
func (e *Engine) HeaderBits(fieldExpr string) (f model.HeaderField, err error) {
	defer func(start time.Time) { e.observe("header_bits", start, err) }(time.Now())
	return e.machine.HeaderBits(fieldExpr)
}

// ParserPaths enumerates every finite root-to-terminal parser path.
func (e *Engine) ParserPaths() []parser.Path {
	defer e.observe("parser_paths", time.Now(), nil)
	paths := e.machine.Paths()
	e.reg.RecordPathsFound("parser_paths", len(paths), false)
	return paths
}

// ParserTransitions returns the transition case table of one parser state.
// The result is a copy.
func (e *Engine) ParserTransitions(state string) (st *model.ParserState, err error) {
	defer func(start time.Time) { e.observe("parser_transitions", start, err) }(time.Now())
	ps, err := e.machine.Transitions(state)
	if err != nil {
		return nil, err
	}
	return ps.Clone(), nil
}

// TopologyHosts returns all hosts in ascending id order. The records are
// copies.
func (e *Engine) TopologyHosts() []*topology.Host {
	defer e.observe("topology_hosts", time.Now(), nil)
	hosts := e.topo.Hosts()
	out := make([]*topology.Host, len(hosts))
	for i, h := range hosts {
		out[i] = h.Clone()
	}
	return out
}

// TopologyLinks returns all links in declaration order.
func (e *Engine) TopologyLinks() []topology.Link {
	defer e.observe("topology_links", time.Now(), nil)
	return e.topo.Links()
}

// HostInfo returns one host record, including the switch it connects to.
// The record is a copy.
func (e *Engine) HostInfo(hostID string) (h *topology.Host, err error) {
	defer func(start time.Time) { e.observe("host_info", start, err) }(time.Now())
	rec, err := e.topo.Host(hostID)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// ClassifyHostZone returns the zone tag of one host. An unresolvable zone is
// an AmbiguousZoneError, never a guess.
func (e *Engine) ClassifyHostZone(hostID string) (zone string, err error) {
	defer func(start time.Time) { e.observe("classify_host_zone", start, err) }(time.Now())
	return e.topo.ClassifyZone(hostID)
}

// DefaultHostPair picks the deterministic default host pair: the first pair
// spanning two distinct zones, else the first two hosts by ascending id.
// Both records are copies.
func (e *Engine) DefaultHostPair() (a, b *topology.Host, err error) {
	defer func(start time.Time) { e.observe("choose_default_host_pair", start, err) }(time.Now())
	a, b, err = e.topo.DefaultHostPair()
	if err != nil {
		return nil, nil, err
	}
	return a.Clone(), b.Clone(), nil
}
