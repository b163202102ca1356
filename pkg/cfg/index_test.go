package cfg

import (
	"errors"
	"testing"

	"github.com/p4lens/p4lens/pkg/model"
)

// diamondProgram builds the classic diamond:
//
//	start -> acl -> {forward, nat} -> accept
//
// acl reaches accept both directly through nat and through forward, so
// accept's rank is driven by the longest path.
func diamondProgram() (*model.Program, *model.ControlGraph) {
	nodes := map[string]*model.CFGNode{
		"n0": {ID: "n0", Name: "start", Kind: model.NodeStart},
		"n1": {ID: "n1", Name: "acl", Kind: model.NodeTable},
		"n2": {ID: "n2", Name: "forward", Kind: model.NodeTable},
		"n3": {ID: "n3", Name: "nat", Kind: model.NodeTable},
		"n4": {ID: "n4", Name: "accept", Kind: model.NodeTerminal},
	}
	edges := []*model.CFGEdge{
		{From: "n0", To: "n1"},
		{From: "n1", To: "n2", Outcome: "permit"},
		{From: "n1", To: "n3", Outcome: model.OutcomeMiss},
		{From: "n2", To: "n4", Outcome: "set_egress"},
		{From: "n3", To: "n4", Outcome: "rewrite"},
	}
	g := model.NewControlGraph("ingress", "n0", "n4", nodes, edges)
	p := &model.Program{
		Tables: map[string]*model.Table{
			"acl":     {Name: "acl"},
			"forward": {Name: "forward"},
			"nat":     {Name: "nat"},
		},
		TableOrder: []string{"acl", "forward", "nat"},
		Graphs:     map[string]*model.ControlGraph{"ingress": g},
	}
	return p, g
}

func TestRanks(t *testing.T) {
	p, g := diamondProgram()
	idx, err := New(p, g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := map[string]int{
		"start":   0,
		"acl":     1,
		"forward": 2,
		"nat":     2,
		"accept":  3,
	}
	for name, rank := range want {
		r, ok := idx.Rank(name)
		if !ok {
			t.Errorf("Rank(%s): unreachable", name)
			continue
		}
		if r != rank {
			t.Errorf("Rank(%s) = %d, want %d", name, r, rank)
		}
	}

	if _, ok := idx.Rank("nonexistent"); ok {
		t.Error("Rank of unknown node must report not found")
	}
}

// Every edge must strictly increase rank.
func TestRankMonotonicity(t *testing.T) {
	p, g := diamondProgram()
	idx, err := New(p, g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, e := range g.Edges {
		ra, aok := idx.Rank(g.Node(e.From).Name)
		rb, bok := idx.Rank(g.Node(e.To).Name)
		if !aok || !bok {
			t.Fatalf("edge %s->%s touches an unranked node", e.From, e.To)
		}
		if rb < ra+1 {
			t.Errorf("edge %s->%s: rank %d -> %d violates monotonicity", e.From, e.To, ra, rb)
		}
	}
}

func TestRankedTablesOrder(t *testing.T) {
	p, g := diamondProgram()
	idx, err := New(p, g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ranked := idx.RankedTables()
	want := []RankedTable{
		{Table: "acl", Rank: 1},
		{Table: "forward", Rank: 2},
		{Table: "nat", Rank: 2},
	}
	if len(ranked) != len(want) {
		t.Fatalf("got %d ranked tables, want %d", len(ranked), len(want))
	}
	for i := range want {
		if ranked[i] != want[i] {
			t.Errorf("ranked[%d] = %+v, want %+v", i, ranked[i], want[i])
		}
	}
}

func TestJumpDict(t *testing.T) {
	p, g := diamondProgram()
	idx, err := New(p, g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	jd := idx.JumpDict()
	if jd["acl"]["permit"] != "forward" {
		t.Errorf("acl/permit = %q, want forward", jd["acl"]["permit"])
	}
	if jd["acl"][model.OutcomeMiss] != "nat" {
		t.Errorf("acl/miss = %q, want nat", jd["acl"][model.OutcomeMiss])
	}
	if jd["forward"]["set_egress"] != "accept" {
		t.Errorf("forward/set_egress = %q", jd["forward"]["set_egress"])
	}

	// Mutating the returned map must not leak into the index.
	jd["acl"]["permit"] = "corrupted"
	delete(jd, "nat")
	again := idx.JumpDict()
	if again["acl"]["permit"] != "forward" {
		t.Error("JumpDict result is not a copy")
	}
	if _, ok := again["nat"]; !ok {
		t.Error("JumpDict result is not a copy")
	}
}

func TestTables(t *testing.T) {
	p, g := diamondProgram()
	idx, err := New(p, g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tables := idx.Tables()
	want := []string{"acl", "forward", "nat"}
	if len(tables) != len(want) {
		t.Fatalf("Tables = %v", tables)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Errorf("Tables[%d] = %q, want %q", i, tables[i], want[i])
		}
	}

	if _, err := idx.Table("acl"); err != nil {
		t.Errorf("Table(acl) = %v", err)
	}
	if _, err := idx.Table("bogus"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Table(bogus) = %v, want ErrNotFound", err)
	}
}

func TestCyclicGraphRejected(t *testing.T) {
	nodes := map[string]*model.CFGNode{
		"n0": {ID: "n0", Name: "start", Kind: model.NodeStart},
		"n1": {ID: "n1", Name: "a", Kind: model.NodeTable},
		"n2": {ID: "n2", Name: "b", Kind: model.NodeTable},
	}
	edges := []*model.CFGEdge{
		{From: "n0", To: "n1"},
		{From: "n1", To: "n2"},
		{From: "n2", To: "n1"},
	}
	g := model.NewControlGraph("looped", "n0", "", nodes, edges)

	_, err := New(&model.Program{}, g)
	if !errors.Is(err, model.ErrCyclicGraph) {
		t.Fatalf("New = %v, want ErrCyclicGraph", err)
	}

	var ce *model.CyclicGraphError
	if !errors.As(err, &ce) {
		t.Fatal("errors.As failed")
	}
	if ce.Graph != "looped" {
		t.Errorf("Graph = %q, want looped", ce.Graph)
	}
	if len(ce.Cycle) < 2 {
		t.Fatalf("Cycle witness = %v, want at least two nodes", ce.Cycle)
	}
	// The witness must actually be a cycle in the graph.
	for i := 0; i < len(ce.Cycle); i++ {
		from := g.FindByName(ce.Cycle[i])
		to := g.FindByName(ce.Cycle[(i+1)%len(ce.Cycle)])
		if from == nil || to == nil {
			t.Fatalf("witness names unknown node: %v", ce.Cycle)
		}
		found := false
		for _, e := range g.OutEdges(from.ID) {
			if e.To == to.ID {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("witness edge %s -> %s does not exist", ce.Cycle[i], ce.Cycle[(i+1)%len(ce.Cycle)])
		}
	}
}

func TestUnreachableCycleIsIgnored(t *testing.T) {
	// A cycle disconnected from the root does not poison the index.
	nodes := map[string]*model.CFGNode{
		"n0": {ID: "n0", Name: "start", Kind: model.NodeStart},
		"n1": {ID: "n1", Name: "a", Kind: model.NodeTable},
		"n8": {ID: "n8", Name: "orphan1", Kind: model.NodeTable},
		"n9": {ID: "n9", Name: "orphan2", Kind: model.NodeTable},
	}
	edges := []*model.CFGEdge{
		{From: "n0", To: "n1"},
		{From: "n8", To: "n9"},
		{From: "n9", To: "n8"},
	}
	g := model.NewControlGraph("ingress", "n0", "", nodes, edges)

	idx, err := New(&model.Program{}, g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := idx.Rank("orphan1"); ok {
		t.Error("unreachable node must have no rank")
	}
	if r, ok := idx.Rank("a"); !ok || r != 1 {
		t.Errorf("Rank(a) = %d, %v", r, ok)
	}
}
