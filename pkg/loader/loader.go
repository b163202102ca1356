// Package loader parses the four artifact payloads of a compiled program
// bundle and builds the normalized program model and topology registry.
// Loading is all-or-nothing: any unreadable file, syntax error, or dangling
// cross-reference fails the whole load and no partially-initialized model is
// ever exposed.
package loader

import (
	"encoding/json"
	"os"

	"github.com/p4lens/p4lens/pkg/logging"
	"github.com/p4lens/p4lens/pkg/model"
	"github.com/p4lens/p4lens/pkg/p4info"
	"github.com/p4lens/p4lens/pkg/topology"
)

// Bundle is a fully-loaded, cross-validated artifact bundle.
type Bundle struct {
	Program  *model.Program
	Topology *topology.Topology
}

// Load reads and cross-validates all four artifacts named by the manifest.
func Load(m *Manifest, log logging.Logger) (*Bundle, error) {
	timer := logging.StartTimer(log, "artifact bundle loaded", logging.String("program_path", m.Program))

	prog, err := loadProgram(m.Program)
	if err != nil {
		return nil, err
	}

	graphs, err := readGraphs(m.Graphs, prog.Tables)
	if err != nil {
		return nil, err
	}
	prog.Graphs = graphs

	info, err := loadP4Info(m.P4Info)
	if err != nil {
		return nil, err
	}

	topo, err := loadTopology(m.Topology)
	if err != nil {
		return nil, err
	}

	if err := crossValidate(prog, info); err != nil {
		return nil, err
	}

	timer.End()
	log.Info("program model ready",
		logging.Program(prog.Name),
		logging.Count(len(prog.Tables)),
		logging.Int("actions", len(prog.Actions)),
		logging.Int("graphs", len(prog.Graphs)),
		logging.Int("hosts", len(topo.Hosts())),
	)
	return &Bundle{Program: prog, Topology: topo}, nil
}

func loadProgram(path string) (*model.Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(ArtifactProgram, "read "+path, err)
	}
	var f bmv2File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, loadErr(ArtifactProgram, "parse "+path, err)
	}
	return buildProgram(&f)
}

func loadP4Info(path string) (*p4info.Info, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(ArtifactP4Info, "read "+path, err)
	}
	info, err := p4info.Parse(string(raw))
	if err != nil {
		return nil, loadErr(ArtifactP4Info, "parse "+path, err)
	}
	return info, nil
}

func loadTopology(path string) (*topology.Topology, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(ArtifactTopology, "read "+path, err)
	}
	var doc topology.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, loadErr(ArtifactTopology, "parse "+path, err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, loadErr(ArtifactTopology, "validate "+path, err)
	}
	topo, err := topology.Build(&doc)
	if err != nil {
		return nil, loadErr(ArtifactTopology, "build registry", err)
	}
	return topo, nil
}

// crossValidate enforces the cross-artifact invariants:
//   - every table node in a graph names a program table, and every program
//     table appears in at least one graph;
//   - every table-edge discriminant names an action of its source table (or
//     the miss sentinel);
//   - every action referenced by a table exists and its parameter signature
//     matches the p4info signature description.
func crossValidate(prog *model.Program, info *p4info.Info) error {
	seenTables := make(map[string]bool, len(prog.Tables))

	for gname, g := range prog.Graphs {
		for _, n := range g.Nodes {
			if n.Kind != model.NodeTable {
				continue
			}
			if _, ok := prog.Tables[n.Name]; !ok {
				return loadErrf(ArtifactGraphs, "graph %q references table %q which the program does not define", gname, n.Name)
			}
			seenTables[n.Name] = true
		}
		for _, e := range g.Edges {
			from := g.Node(e.From)
			if from == nil || from.Kind != model.NodeTable || e.Outcome == model.OutcomeMiss {
				continue
			}
			t := prog.Tables[from.Name]
			if !tableHasAction(t, e.Outcome) {
				return loadErrf(ArtifactGraphs, "graph %q: edge out of table %q names outcome %q, which is not one of its actions", gname, from.Name, e.Outcome)
			}
		}
	}
	for name := range prog.Tables {
		if !seenTables[name] {
			return loadErrf(ArtifactProgram, "table %q does not appear in any control graph", name)
		}
	}

	for _, t := range prog.Tables {
		for _, aname := range t.Actions {
			act, ok := prog.Actions[aname]
			if !ok {
				return loadErrf(ArtifactProgram, "table %q references undefined action %q", t.Name, aname)
			}
			sig, ok := info.Action(aname)
			if !ok {
				return loadErrf(ArtifactP4Info, "action %q has no signature entry", aname)
			}
			if err := checkSignature(act, sig); err != nil {
				return err
			}
		}
		if t.DefaultAction != "" && !tableHasAction(t, t.DefaultAction) {
			return loadErrf(ArtifactProgram, "table %q default action %q is not in its action list", t.Name, t.DefaultAction)
		}
	}
	return nil
}

func tableHasAction(t *model.Table, name string) bool {
	for _, a := range t.Actions {
		if a == name {
			return true
		}
	}
	return false
}

func checkSignature(act *model.Action, sig *p4info.Action) error {
	if len(act.Params) != len(sig.Params) {
		return loadErrf(ArtifactP4Info, "action %q has %d parameters but its signature declares %d",
			act.Name, len(act.Params), len(sig.Params))
	}
	for i, p := range act.Params {
		sp := sig.Params[i]
		if p.Name != sp.Name || p.Bitwidth != sp.Bitwidth {
			return loadErrf(ArtifactP4Info, "action %q parameter %d is %s:%d but its signature declares %s:%d",
				act.Name, i, p.Name, p.Bitwidth, sp.Name, sp.Bitwidth)
		}
	}
	return nil
}
