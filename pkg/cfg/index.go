// Package cfg indexes a control-flow graph: the (table, outcome) jump
// dictionary and the topological rank of every node. Ranks exist only for
// acyclic graphs; a cycle in the input program is a load-time design error,
// never silently tolerated.
package cfg

import (
	"sort"

	"github.com/p4lens/p4lens/pkg/model"
)

// RankedTable pairs a table name with its topological rank.
type RankedTable struct {
	Table string `json:"table"`
	Rank  int    `json:"rank"`
}

// Index is the immutable CFG index for one control graph.
type Index struct {
	program *model.Program
	graph   *model.ControlGraph

	ranks map[string]int // node id -> rank, reachable nodes only
	jump  map[string]map[string]string
}

// New builds the index. It fails with a CyclicGraphError if the graph is not
// feed-forward.
func New(program *model.Program, graph *model.ControlGraph) (*Index, error) {
	idx := &Index{
		program: program,
		graph:   graph,
		jump:    make(map[string]map[string]string),
	}

	ranks, err := computeRanks(graph)
	if err != nil {
		return nil, err
	}
	idx.ranks = ranks

	for _, n := range graph.Nodes {
		if n.Kind != model.NodeTable {
			continue
		}
		dests := make(map[string]string)
		for _, e := range graph.OutEdges(n.ID) {
			to := graph.Node(e.To)
			if to == nil {
				continue
			}
			dests[e.Outcome] = to.Name
		}
		idx.jump[n.Name] = dests
	}

	return idx, nil
}

// Tables returns all table names in artifact declaration order.
func (idx *Index) Tables() []string {
	out := make([]string, len(idx.program.TableOrder))
	copy(out, idx.program.TableOrder)
	return out
}

// Table returns a single table's full definition.
func (idx *Index) Table(name string) (*model.Table, error) {
	return idx.program.Table(name)
}

// JumpDict returns the (table, outcome) -> next-node-name mapping. The outer
// map is keyed by table name, the inner by action name or model.OutcomeMiss.
func (idx *Index) JumpDict() map[string]map[string]string {
	out := make(map[string]map[string]string, len(idx.jump))
	for t, dests := range idx.jump {
		inner := make(map[string]string, len(dests))
		for o, d := range dests {
			inner[o] = d
		}
		out[t] = inner
	}
	return out
}

// Rank returns the topological rank of the named node and whether the node
// is reachable from the root.
func (idx *Index) Rank(name string) (int, bool) {
	n := idx.graph.FindByName(name)
	if n == nil {
		return 0, false
	}
	r, ok := idx.ranks[n.ID]
	return r, ok
}

// RankedTables returns the graph's tables ordered by ascending rank, ties
// broken by ascending table name for determinism. Tables that appear in the
// program but not in this graph are omitted.
func (idx *Index) RankedTables() []RankedTable {
	out := make([]RankedTable, 0, len(idx.jump))
	for _, n := range idx.graph.Nodes {
		if n.Kind != model.NodeTable {
			continue
		}
		r, ok := idx.ranks[n.ID]
		if !ok {
			continue
		}
		out = append(out, RankedTable{Table: n.Name, Rank: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Table < out[j].Table
	})
	return out
}

// computeRanks assigns rank(root) = 0 and rank(n) = 1 + max(rank(p)) over
// all predecessors p, relaxing in Kahn topological order. If the order does
// not cover every node reachable from the root, the graph has a cycle and a
// witness is extracted for the error.
func computeRanks(g *model.ControlGraph) (map[string]int, error) {
	reachable := reachableFrom(g, g.Root)

	inDegree := make(map[string]int, len(reachable))
	for id := range reachable {
		inDegree[id] = 0
	}
	for id := range reachable {
		for _, e := range g.OutEdges(id) {
			if _, ok := reachable[e.To]; ok {
				inDegree[e.To]++
			}
		}
	}

	// Deterministic processing order: seed queue sorted by id.
	queue := make([]string, 0, len(reachable))
	for id, d := range inDegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	ranks := make(map[string]int, len(reachable))
	for _, id := range queue {
		ranks[id] = 0
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++
		for _, e := range g.OutEdges(id) {
			if _, ok := reachable[e.To]; !ok {
				continue
			}
			if r := ranks[id] + 1; r > ranks[e.To] {
				ranks[e.To] = r
			}
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	if processed != len(reachable) {
		return nil, &model.CyclicGraphError{Graph: g.Name, Cycle: findCycle(g, reachable)}
	}
	return ranks, nil
}

func reachableFrom(g *model.ControlGraph, root string) map[string]struct{} {
	seen := make(map[string]struct{})
	if g.Node(root) == nil {
		return seen
	}
	stack := []string{root}
	seen[root] = struct{}{}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.OutEdges(id) {
			if _, ok := seen[e.To]; !ok {
				seen[e.To] = struct{}{}
				stack = append(stack, e.To)
			}
		}
	}
	return seen
}

// findCycle extracts one witness cycle using DFS with three-color marking:
// white = unvisited, gray = on the recursion stack, black = finished. A gray
// neighbor means a back edge, and the cycle is read off the parent chain.
func findCycle(g *model.ControlGraph, scope map[string]struct{}) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(scope))
	parent := make(map[string]string, len(scope))

	ids := make([]string, 0, len(scope))
	for id := range scope {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var cycle []string
	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, e := range g.OutEdges(id) {
			if _, ok := scope[e.To]; !ok {
				continue
			}
			switch color[e.To] {
			case white:
				parent[e.To] = id
				if dfs(e.To) {
					return true
				}
			case gray:
				// Back edge id -> e.To closes the cycle.
				names := []string{g.Node(e.To).Name}
				for cur := id; cur != e.To; cur = parent[cur] {
					names = append(names, g.Node(cur).Name)
				}
				// Reverse into execution order.
				for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
					names[i], names[j] = names[j], names[i]
				}
				cycle = names
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range ids {
		if color[id] == white && dfs(id) {
			break
		}
	}
	return cycle
}
