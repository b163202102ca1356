// Package solver computes the header and metadata conditions required to
// reach a target node of the control-flow graph: backward path enumeration
// followed by forward constraint accumulation along each feasible path.
package solver

import (
	"github.com/p4lens/p4lens/pkg/model"
)

// Solver answers path-constraint queries against one control graph.
type Solver struct {
	program *model.Program
	graph   *model.ControlGraph
}

// New builds a Solver. The graph must already have passed the load-time
// acyclicity check; path enumeration relies on it being feed-forward.
func New(program *model.Program, graph *model.ControlGraph) *Solver {
	return &Solver{program: program, graph: graph}
}

// PathConstraints returns, for the named target node, a disjunction of
// per-path constraint conjunctions. The target is reachable if ANY one
// path's conjunction is satisfied; callers that need all-paths semantics
// can intersect the per-path sets themselves, which is why the paths are
// returned unmerged. An unreachable target is a normal result carrying the
// explicit Unreachable marker; only an unknown node name is an error.
func (s *Solver) PathConstraints(target string) (*model.ConstraintResult, error) {
	node := s.graph.FindByName(target)
	if node == nil {
		return nil, &model.NotFoundError{Kind: "node", Name: target}
	}

	paths := s.enumeratePaths(node.ID)
	res := &model.ConstraintResult{Target: target}
	if len(paths) == 0 {
		res.Unreachable = true
		return res, nil
	}

	for _, p := range paths {
		res.Paths = append(res.Paths, s.constrainPath(p))
	}
	return res, nil
}

// enumeratePaths lists every simple root-to-target path as an edge sequence,
// depth-first in edge declaration order. The per-path visited set is only a
// guard; on an acyclic graph it never fires.
func (s *Solver) enumeratePaths(targetID string) [][]*model.CFGEdge {
	var out [][]*model.CFGEdge
	if s.graph.Node(s.graph.Root) == nil {
		return out
	}
	if s.graph.Root == targetID {
		out = append(out, nil)
		return out
	}

	visited := map[string]bool{s.graph.Root: true}
	var walk func(id string, path []*model.CFGEdge)
	walk = func(id string, path []*model.CFGEdge) {
		for _, e := range s.graph.OutEdges(id) {
			if visited[e.To] {
				continue
			}
			next := append(path[:len(path):len(path)], e)
			if e.To == targetID {
				out = append(out, next)
				continue
			}
			visited[e.To] = true
			walk(e.To, next)
			delete(visited, e.To)
		}
	}
	walk(s.graph.Root, nil)
	return out
}

// constrainPath walks one path in execution order and accumulates per-step
// constraints. Metadata fields assigned a constant by an earlier action are
// folded forward: a later step whose key references the same field resolves
// its constraint to the bound value instead of staying symbolic. Within one
// path this is sound because the actions already taken statically determine
// those metadata values.
func (s *Solver) constrainPath(path []*model.CFGEdge) model.PathConstraintSet {
	var set model.PathConstraintSet
	bindings := make(map[string]string)

	for _, e := range path {
		from := s.graph.Node(e.From)
		if from == nil {
			continue
		}
		switch from.Kind {
		case model.NodeCondition:
			set.Steps = append(set.Steps, model.PathStep{
				Node:    from.Name,
				Outcome: e.Outcome,
				Constraints: []model.Constraint{{
					Field:    from.Name,
					Relation: model.Equals,
					Values:   []string{e.Outcome},
				}},
			})
		case model.NodeTable:
			set.Steps = append(set.Steps, s.tableStep(from.Name, e.Outcome, bindings))
		}
	}
	return set
}

func (s *Solver) tableStep(table, outcome string, bindings map[string]string) model.PathStep {
	step := model.PathStep{Node: table, Outcome: outcome}
	if outcome == model.OutcomeMiss {
		// A miss constrains the key only negatively (no installed entry
		// matches); the step's outcome carries that on its own.
		return step
	}

	t, ok := s.program.Tables[table]
	if !ok {
		return step
	}
	for _, k := range t.Keys {
		c, ok := k.Match.HitConstraint(k.Field, bindings[k.Field])
		if ok {
			step.Constraints = append(step.Constraints, c)
		}
	}

	// Fold the taken action's constant assignments forward for later steps.
	if a, ok := s.program.Actions[outcome]; ok {
		for field, value := range constantAssignments(a) {
			bindings[field] = value
		}
	}
	return step
}

// constantAssignments extracts "field := literal" effects from an action's
// structured primitive list. Arithmetic and register operations do not
// produce a statically known value and are skipped.
func constantAssignments(a *model.Action) map[string]string {
	out := make(map[string]string)
	for _, op := range a.Primitives {
		if op.Op != "assign" && op.Op != "modify_field" {
			continue
		}
		if len(op.Args) < 2 {
			continue
		}
		dst, src := op.Args[0], op.Args[1]
		if dst.Kind == "field" && src.Kind == "hexstr" {
			out[dst.Field] = src.Value
		}
	}
	return out
}
