package p4info

import "testing"

const sampleInfo = `# generated by p4c
pkg_info {
  arch: "v1model"
}
tables {
  preamble {
    id: 33574068
    name: "MyIngress.ipv4_lpm"
  }
  match_fields {
    id: 1
    name: "hdr.ipv4.dstAddr"
    bitwidth: 32
    match_type: LPM
  }
}
actions {
  preamble {
    id: 16805608
    name: "MyIngress.ipv4_forward"
    alias: "ipv4_forward"
  }
  params {
    id: 1
    name: "dstAddr"
    bitwidth: 48
  }
  params {
    id: 2
    name: "port"
    bitwidth: 9
  }
}
actions {
  preamble {
    id: 16800567
    name: "MyIngress.drop"
    alias: "drop"
  }
}
`

func TestParse(t *testing.T) {
	info, err := Parse(sampleInfo)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(info.Actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(info.Actions))
	}
	if info.Order[0] != "MyIngress.ipv4_forward" || info.Order[1] != "MyIngress.drop" {
		t.Errorf("Order = %v", info.Order)
	}

	fwd := info.Actions["MyIngress.ipv4_forward"]
	if fwd.Alias != "ipv4_forward" {
		t.Errorf("Alias = %q", fwd.Alias)
	}
	if len(fwd.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fwd.Params))
	}
	if p := fwd.Params[0]; p.ID != 1 || p.Name != "dstAddr" || p.Bitwidth != 48 {
		t.Errorf("param[0] = %+v", p)
	}
	if p := fwd.Params[1]; p.Name != "port" || p.Bitwidth != 9 {
		t.Errorf("param[1] = %+v", p)
	}

	drop := info.Actions["MyIngress.drop"]
	if len(drop.Params) != 0 {
		t.Errorf("drop params = %v, want none", drop.Params)
	}
}

func TestActionLookupByAlias(t *testing.T) {
	info, err := Parse(sampleInfo)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a, ok := info.Action("MyIngress.drop"); !ok || a.Alias != "drop" {
		t.Errorf("lookup by full name: %v, %v", a, ok)
	}
	if a, ok := info.Action("ipv4_forward"); !ok || a.Name != "MyIngress.ipv4_forward" {
		t.Errorf("lookup by alias: %v, %v", a, ok)
	}
	if _, ok := info.Action("nope"); ok {
		t.Error("lookup of unknown name must fail")
	}
}

func TestParseSkipsUnknownBlocks(t *testing.T) {
	info, err := Parse(`
registers {
  preamble { id: 1 name: "r" }
  type_spec { bitstring { bit { bitwidth: 32 } } }
  size: 1024
}
actions {
  preamble { name: "a" }
}
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(info.Actions) != 1 {
		t.Errorf("got %d actions, want 1", len(info.Actions))
	}
}

func TestParseErrors(t *testing.T) {
	bad := map[string]string{
		"missing preamble name": `actions { params { id: 1 name: "x" bitwidth: 8 } }`,
		"duplicate action":      `actions { preamble { name: "a" } } actions { preamble { name: "a" } }`,
		"bad bitwidth":          `actions { preamble { name: "a" } params { bitwidth: wide } }`,
		"unterminated block":    `actions { preamble { name: "a" }`,
		"unterminated string":   `actions { preamble { name: "a }`,
	}
	for name, in := range bad {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(in); err == nil {
				t.Errorf("Parse succeeded, want failure")
			}
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	info, err := Parse("# nothing but a comment\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(info.Actions) != 0 {
		t.Errorf("got %d actions, want 0", len(info.Actions))
	}
}
