// Package dot parses the subset of the DOT language emitted by p4c-graphs:
// a single digraph whose node and edge statements may be nested inside
// subgraph clusters. Only node ids, labels, shapes and edge labels are
// retained; everything else is accepted and discarded.
package dot

// Node is one DOT node with the attributes the analysis cares about.
type Node struct {
	ID    string
	Label string
	Shape string
}

// Edge is one directed DOT edge.
type Edge struct {
	From  string
	To    string
	Label string
}

// Graph is a parsed digraph. Nodes and edges from nested subgraphs are
// flattened into the top-level graph, matching how p4c-graphs uses clusters
// purely for layout.
type Graph struct {
	Name  string
	Nodes map[string]*Node
	Edges []*Edge

	// NodeOrder preserves declaration order for deterministic iteration.
	NodeOrder []string
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node { return g.Nodes[id] }

// FindByLabel returns the id of the first node with the given label, in
// declaration order, or "".
func (g *Graph) FindByLabel(label string) string {
	for _, id := range g.NodeOrder {
		if g.Nodes[id].Label == label {
			return id
		}
	}
	return ""
}
