package model

// NodeKind classifies a control-flow graph node. The set is closed: every
// node of a loaded graph is exactly one of these.
type NodeKind int

const (
	NodeStart NodeKind = iota
	NodeTable
	NodeCondition
	NodeTerminal
)

// String returns the wire-level name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeStart:
		return "start"
	case NodeTable:
		return "table"
	case NodeCondition:
		return "condition"
	case NodeTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// OutcomeMiss is the edge discriminant for a table's default (no entry
// matched) branch.
const OutcomeMiss = "miss"

// CFGNode is one node of a control graph: a table application, a branch
// condition, or a terminal.
type CFGNode struct {
	ID   string // DOT node id
	Name string // table name, condition expression, or terminal label
	Kind NodeKind
}

// CFGEdge is one directed edge. Outcome discriminates the branch taken:
// an action name or OutcomeMiss for table nodes, "true"/"false" for
// condition nodes, empty for unconditional edges.
type CFGEdge struct {
	From    string
	To      string
	Outcome string
}

// ControlGraph is one rooted control-flow graph as loaded from a p4c-graphs
// DOT file. Adjacency is precomputed at load time; the structure is
// read-only afterward.
type ControlGraph struct {
	Name  string
	Root  string // id of the start node
	Exit  string // id of the exit node, may be empty
	Nodes map[string]*CFGNode
	Edges []*CFGEdge

	out map[string][]*CFGEdge
	in  map[string][]*CFGEdge
}

// NewControlGraph builds a graph and its adjacency indexes.
func NewControlGraph(name, root, exit string, nodes map[string]*CFGNode, edges []*CFGEdge) *ControlGraph {
	g := &ControlGraph{
		Name:  name,
		Root:  root,
		Exit:  exit,
		Nodes: nodes,
		Edges: edges,
		out:   make(map[string][]*CFGEdge),
		in:    make(map[string][]*CFGEdge),
	}
	for _, e := range edges {
		g.out[e.From] = append(g.out[e.From], e)
		g.in[e.To] = append(g.in[e.To], e)
	}
	return g
}

// Node returns the node with the given id, or nil.
func (g *ControlGraph) Node(id string) *CFGNode { return g.Nodes[id] }

// OutEdges returns the outgoing edges of a node in declaration order.
func (g *ControlGraph) OutEdges(id string) []*CFGEdge { return g.out[id] }

// InEdges returns the incoming edges of a node in declaration order.
func (g *ControlGraph) InEdges(id string) []*CFGEdge { return g.in[id] }

// FindByName returns the first node whose Name equals name, or nil.
// Node names are unique for tables; condition expressions may repeat, in
// which case declaration order wins.
func (g *ControlGraph) FindByName(name string) *CFGNode {
	// Deterministic: scan edges' declaration order via Edges is not enough,
	// so scan a stable snapshot of ids.
	var best *CFGNode
	for _, n := range g.Nodes {
		if n.Name != name {
			continue
		}
		if best == nil || n.ID < best.ID {
			best = n
		}
	}
	return best
}
