package topology

import (
	"errors"
	"testing"
)

func sampleDoc() *Document {
	return &Document{
		Hosts: map[string]HostDoc{
			"h1": {IP: "10.0.1.1/24", MAC: "08:00:00:00:01:11"},
			"h2": {IP: "10.0.2.2/24", MAC: "08:00:00:00:02:22"},
			"h3": {IP: "10.0.3.3/24", MAC: "08:00:00:00:03:33", Zone: "dmz"},
		},
		Links: [][]string{
			{"h1", "s1-p1"},
			{"h2", "s2-p1"},
			{"s1-p2", "s2-p2"},
			{"s2-p3", "h3"},
		},
		Zones: map[string][]string{
			"inside":  {"10.0.1.0/24"},
			"outside": {"10.0.2.0/24"},
		},
	}
}

func TestBuildAndHosts(t *testing.T) {
	topo, err := Build(sampleDoc())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	hosts := topo.Hosts()
	if len(hosts) != 3 {
		t.Fatalf("got %d hosts, want 3", len(hosts))
	}
	// Ascending id order.
	for i, want := range []string{"h1", "h2", "h3"} {
		if hosts[i].ID != want {
			t.Errorf("hosts[%d].ID = %q, want %q", i, hosts[i].ID, want)
		}
	}

	h1, err := topo.Host("h1")
	if err != nil {
		t.Fatalf("Host(h1): %v", err)
	}
	if h1.Switch != "s1" {
		t.Errorf("h1.Switch = %q, want s1", h1.Switch)
	}

	if _, err := topo.Host("h9"); !errors.Is(err, ErrHostNotFound) {
		t.Errorf("Host(h9) = %v, want ErrHostNotFound", err)
	}
}

func TestLinksOrderAndEndpoints(t *testing.T) {
	topo, err := Build(sampleDoc())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	links := topo.Links()
	if len(links) != 4 {
		t.Fatalf("got %d links, want 4", len(links))
	}
	if links[0].A.Node != "h1" || links[0].B.Node != "s1" || links[0].B.Port != "p1" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[2].A.Port != "p2" || links[2].B.Port != "p2" {
		t.Errorf("links[2] = %+v", links[2])
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		node string
		port string
	}{
		{"s1-p2", "s1", "p2"},
		{"h1", "h1", ""},
		{"leaf-1-p10", "leaf-1", "p10"},
	}
	for _, tt := range tests {
		ep := ParseEndpoint(tt.in)
		if ep.Node != tt.node || ep.Port != tt.port {
			t.Errorf("ParseEndpoint(%q) = %+v, want {%s %s}", tt.in, ep, tt.node, tt.port)
		}
	}
}

func TestClassifyZone(t *testing.T) {
	topo, err := Build(sampleDoc())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Resolved from subnet membership.
	if z, err := topo.ClassifyZone("h1"); err != nil || z != "inside" {
		t.Errorf("ClassifyZone(h1) = %q, %v", z, err)
	}
	if z, err := topo.ClassifyZone("h2"); err != nil || z != "outside" {
		t.Errorf("ClassifyZone(h2) = %q, %v", z, err)
	}
	// Explicit tag wins even though no subnet matches.
	if z, err := topo.ClassifyZone("h3"); err != nil || z != "dmz" {
		t.Errorf("ClassifyZone(h3) = %q, %v", z, err)
	}
	if _, err := topo.ClassifyZone("h9"); !errors.Is(err, ErrHostNotFound) {
		t.Errorf("ClassifyZone(h9) = %v, want ErrHostNotFound", err)
	}
}

func TestClassifyZoneIsStable(t *testing.T) {
	topo, err := Build(sampleDoc())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	first, err := topo.ClassifyZone("h1")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		z, err := topo.ClassifyZone("h1")
		if err != nil || z != first {
			t.Fatalf("call %d: got %q, %v; first was %q", i, z, err, first)
		}
	}
}

func TestClassifyZoneAmbiguous(t *testing.T) {
	doc := &Document{
		Hosts: map[string]HostDoc{
			"h1": {IP: "10.0.0.5/24"},
			"h2": {IP: "192.168.1.1/24"},
		},
		Zones: map[string][]string{
			"a": {"10.0.0.0/16"},
			"b": {"10.0.0.0/24"},
		},
	}
	topo, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// h1 matches two zones.
	_, err = topo.ClassifyZone("h1")
	if !errors.Is(err, ErrAmbiguousZone) {
		t.Fatalf("ClassifyZone(h1) = %v, want ErrAmbiguousZone", err)
	}
	var az *AmbiguousZoneError
	if !errors.As(err, &az) || az.Host != "h1" {
		t.Errorf("error detail = %v", err)
	}

	// h2 matches no zone.
	if _, err := topo.ClassifyZone("h2"); !errors.Is(err, ErrAmbiguousZone) {
		t.Errorf("ClassifyZone(h2) = %v, want ErrAmbiguousZone", err)
	}
}

func TestClassifyZoneNoZonesDeclared(t *testing.T) {
	topo, err := Build(&Document{Hosts: map[string]HostDoc{"h1": {IP: "10.0.0.1"}}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := topo.ClassifyZone("h1"); !errors.Is(err, ErrAmbiguousZone) {
		t.Errorf("ClassifyZone = %v, want ErrAmbiguousZone", err)
	}
}

func TestDefaultHostPairCrossZone(t *testing.T) {
	topo, err := Build(sampleDoc())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a, b, err := topo.DefaultHostPair()
	if err != nil {
		t.Fatalf("DefaultHostPair: %v", err)
	}
	// h1 (inside) and h2 (outside) are the first cross-zone pair by id.
	if a.ID != "h1" || b.ID != "h2" {
		t.Errorf("pair = %s, %s; want h1, h2", a.ID, b.ID)
	}

	for i := 0; i < 20; i++ {
		x, y, err := topo.DefaultHostPair()
		if err != nil || x.ID != a.ID || y.ID != b.ID {
			t.Fatalf("call %d: pair = %v, %v, %v", i, x, y, err)
		}
	}
}

func TestDefaultHostPairFallback(t *testing.T) {
	// No zones at all: first two hosts by id.
	topo, err := Build(&Document{Hosts: map[string]HostDoc{
		"h2": {IP: "10.0.0.2"},
		"h1": {IP: "10.0.0.1"},
		"h3": {IP: "10.0.0.3"},
	}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a, b, err := topo.DefaultHostPair()
	if err != nil {
		t.Fatalf("DefaultHostPair: %v", err)
	}
	if a.ID != "h1" || b.ID != "h2" {
		t.Errorf("pair = %s, %s; want h1, h2", a.ID, b.ID)
	}
}

func TestDefaultHostPairTooFew(t *testing.T) {
	topo, err := Build(&Document{Hosts: map[string]HostDoc{"h1": {IP: "10.0.0.1"}}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, _, err := topo.DefaultHostPair(); !errors.Is(err, ErrTooFewHosts) {
		t.Errorf("DefaultHostPair = %v, want ErrTooFewHosts", err)
	}
}

func TestBuildErrors(t *testing.T) {
	t.Run("bad host ip", func(t *testing.T) {
		_, err := Build(&Document{Hosts: map[string]HostDoc{"h1": {IP: "not-an-ip"}}})
		if err == nil {
			t.Error("Build succeeded, want failure")
		}
	})
	t.Run("bad zone subnet", func(t *testing.T) {
		_, err := Build(&Document{
			Hosts: map[string]HostDoc{"h1": {IP: "10.0.0.1"}},
			Zones: map[string][]string{"a": {"10.0.0.1"}},
		})
		if err == nil {
			t.Error("Build succeeded, want failure")
		}
	})
	t.Run("link to undeclared host", func(t *testing.T) {
		_, err := Build(&Document{
			Hosts: map[string]HostDoc{"h1": {IP: "10.0.0.1"}},
			Links: [][]string{{"h9", "s1-p1"}},
		})
		if err == nil {
			t.Error("Build succeeded, want failure")
		}
	})
	t.Run("malformed link", func(t *testing.T) {
		_, err := Build(&Document{
			Hosts: map[string]HostDoc{"h1": {IP: "10.0.0.1"}},
			Links: [][]string{{"h1"}},
		})
		if err == nil {
			t.Error("Build succeeded, want failure")
		}
	})
}

func TestBareAddressHost(t *testing.T) {
	topo, err := Build(&Document{
		Hosts: map[string]HostDoc{"h1": {IP: "10.0.1.7"}},
		Zones: map[string][]string{"edge": {"10.0.1.0/24"}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if z, err := topo.ClassifyZone("h1"); err != nil || z != "edge" {
		t.Errorf("ClassifyZone = %q, %v", z, err)
	}
}
