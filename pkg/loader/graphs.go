package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/p4lens/p4lens/pkg/dot"
	"github.com/p4lens/p4lens/pkg/model"
)

// Special node labels in p4c-graphs output.
const (
	labelStart = "__START__"
	labelExit  = "__EXIT__"
)

// readGraphs parses every .dot file in dir into a control graph, keyed by
// file stem.
func readGraphs(dir string, tables map[string]*model.Table) (map[string]*model.ControlGraph, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, loadErr(ArtifactGraphs, "read directory "+dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".dot") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, loadErrf(ArtifactGraphs, "no .dot files in %s", dir)
	}

	out := make(map[string]*model.ControlGraph, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, loadErr(ArtifactGraphs, "read "+path, err)
		}
		g, err := dot.Parse(string(raw))
		if err != nil {
			return nil, loadErr(ArtifactGraphs, "parse "+path, err)
		}
		stem := strings.TrimSuffix(name, ".dot")
		cg, err := convertGraph(stem, g, tables)
		if err != nil {
			return nil, err
		}
		out[stem] = cg
	}
	return out, nil
}

// convertGraph classifies DOT nodes into the closed CFG node-kind set and
// normalizes edge discriminants.
func convertGraph(name string, g *dot.Graph, tables map[string]*model.Table) (*model.ControlGraph, error) {
	nodes := make(map[string]*model.CFGNode, len(g.Nodes))
	root, exit := "", ""

	for _, id := range g.NodeOrder {
		n := g.Nodes[id]
		cn := &model.CFGNode{ID: id, Name: n.Label}
		if cn.Name == "" {
			cn.Name = id
		}
		switch {
		case n.Label == labelStart:
			cn.Kind = model.NodeStart
			root = id
		case n.Label == labelExit:
			cn.Kind = model.NodeTerminal
			exit = id
		default:
			cn.Kind = classifyNode(n, tables)
		}
		nodes[id] = cn
	}

	if root == "" {
		// Graphs without the __START__ marker root at the first node with
		// no incoming edges, in declaration order.
		hasIn := make(map[string]bool)
		for _, e := range g.Edges {
			hasIn[e.To] = true
		}
		for _, id := range g.NodeOrder {
			if !hasIn[id] {
				root = id
				break
			}
		}
		if root == "" {
			return nil, loadErrf(ArtifactGraphs, "graph %q has no root node", name)
		}
	}

	edges := make([]*model.CFGEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		from, ok := nodes[e.From]
		if !ok {
			return nil, loadErrf(ArtifactGraphs, "graph %q: edge from undeclared node %q", name, e.From)
		}
		if _, ok := nodes[e.To]; !ok {
			return nil, loadErrf(ArtifactGraphs, "graph %q: edge to undeclared node %q", name, e.To)
		}
		edges = append(edges, &model.CFGEdge{
			From:    e.From,
			To:      e.To,
			Outcome: normalizeOutcome(from, e.Label),
		})
	}

	return model.NewControlGraph(name, root, exit, nodes, edges), nil
}

// classifyNode maps a DOT node to table or condition. p4c draws tables as
// ellipses and branch conditions as rectangles; when the shape is missing,
// a label that names a program table wins, everything else is a condition.
func classifyNode(n *dot.Node, tables map[string]*model.Table) model.NodeKind {
	switch strings.ToLower(n.Shape) {
	case "ellipse", "oval", "circle":
		return model.NodeTable
	case "rectangle", "box", "diamond":
		return model.NodeCondition
	}
	if _, ok := tables[n.Label]; ok {
		return model.NodeTable
	}
	if n.Label == "drop" || n.Label == "accept" {
		return model.NodeTerminal
	}
	return model.NodeCondition
}

// normalizeOutcome maps DOT edge labels to the canonical discriminants:
// action names or the miss sentinel for table nodes, "true"/"false" for
// condition nodes.
func normalizeOutcome(from *model.CFGNode, label string) string {
	switch from.Kind {
	case model.NodeTable:
		if label == "" || label == "__MISS__" || strings.EqualFold(label, "miss") {
			return model.OutcomeMiss
		}
		return label
	case model.NodeCondition:
		return strings.ToLower(label)
	default:
		return label
	}
}
