// p4lens loads a compiled-program artifact bundle and runs one query against
// it, printing the result as JSON.
//
// Usage:
//
//	p4lens -bundle bundle.yaml <command> [arg]
//
// Commands: tables, table <name>, action <name>, jump-dict, ranked,
// constraints <node>, stateful, headers, header-bits <field>, parser-paths,
// parser <state>, hosts, links, host <id>, zone <id>, host-pair.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/p4lens/p4lens/pkg/api"
	"github.com/p4lens/p4lens/pkg/engine"
	"github.com/p4lens/p4lens/pkg/logging"
)

func main() {
	bundle := flag.String("bundle", "bundle.yaml", "Path to the artifact bundle manifest")
	verbose := flag.Bool("v", false, "Verbose logging to stderr")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	level := logging.ErrorLevel
	if *verbose {
		level = logging.DebugLevel
	}
	log := logging.NewJSONLogger(os.Stderr, level)

	eng, err := engine.Load(*bundle, log, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}

	result, err := runCommand(eng, flag.Arg(0), flag.Args()[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func runCommand(eng *engine.Engine, cmd string, args []string) (any, error) {
	switch cmd {
	case "tables":
		return eng.ListTables(), nil

	case "table":
		name, err := oneArg(cmd, args)
		if err != nil {
			return nil, err
		}
		t, err := eng.GetTable(name)
		if err != nil {
			return nil, err
		}
		return api.TableToResponse(t), nil

	case "action":
		name, err := oneArg(cmd, args)
		if err != nil {
			return nil, err
		}
		a, err := eng.GetAction(name)
		if err != nil {
			return nil, err
		}
		return api.ActionToResponse(a), nil

	case "jump-dict":
		return eng.JumpDict(), nil

	case "ranked":
		return eng.RankedTables(), nil

	case "constraints":
		target, err := oneArg(cmd, args)
		if err != nil {
			return nil, err
		}
		return eng.PathConstraints(target)

	case "stateful":
		return api.StatefulToResponse(eng.StatefulObjects()), nil

	case "headers":
		return eng.HeaderDefinitions(), nil

	case "header-bits":
		field, err := oneArg(cmd, args)
		if err != nil {
			return nil, err
		}
		return eng.HeaderBits(field)

	case "parser-paths":
		return eng.ParserPaths(), nil

	case "parser":
		state, err := oneArg(cmd, args)
		if err != nil {
			return nil, err
		}
		return eng.ParserTransitions(state)

	case "hosts":
		return eng.TopologyHosts(), nil

	case "links":
		return eng.TopologyLinks(), nil

	case "host":
		id, err := oneArg(cmd, args)
		if err != nil {
			return nil, err
		}
		return eng.HostInfo(id)

	case "zone":
		id, err := oneArg(cmd, args)
		if err != nil {
			return nil, err
		}
		zone, err := eng.ClassifyHostZone(id)
		if err != nil {
			return nil, err
		}
		return map[string]string{"host": id, "zone": zone}, nil

	case "host-pair":
		a, b, err := eng.DefaultHostPair()
		if err != nil {
			return nil, err
		}
		return map[string]any{"a": a, "b": b}, nil

	default:
		usage()
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func oneArg(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: p4lens %s <arg>", cmd)
	}
	return args[0], nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: p4lens -bundle bundle.yaml <command> [arg]

Commands:
  tables               List all table names
  table <name>         Full definition of one table
  action <name>        Full definition of one action
  jump-dict            (table, outcome) -> next node mapping
  ranked               Tables by ascending topological rank
  constraints <node>   Path constraints to reach a CFG node
  stateful             Registers, counters and meters
  headers              Header layouts
  header-bits <field>  Bit offset and width of a field
  parser-paths         All root-to-terminal parser paths
  parser <state>       Transition cases of a parser state
  hosts                Topology hosts
  links                Topology links
  host <id>            One host record
  zone <id>            Zone classification of a host
  host-pair            Deterministic default host pair`)
}
