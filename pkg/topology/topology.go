// Package topology holds the network topology a program runs on: hosts,
// links and zone classification. The registry is built once at load time and
// never mutated afterward; every query is a pure function of the loaded
// artifact.
package topology

import (
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strings"
)

// Sentinel errors for topology queries.
var (
	ErrHostNotFound  = errors.New("host not found")
	ErrAmbiguousZone = errors.New("zone cannot be determined")
	ErrTooFewHosts   = errors.New("topology has fewer than two hosts")
)

// AmbiguousZoneError reports a host whose zone is resolvable neither from an
// explicit tag nor from the declared zone subnets. The registry never
// guesses a zone.
type AmbiguousZoneError struct {
	Host   string
	Reason string
}

func (e *AmbiguousZoneError) Error() string {
	return fmt.Sprintf("zone for host %q cannot be determined: %s", e.Host, e.Reason)
}

func (e *AmbiguousZoneError) Is(target error) bool { return target == ErrAmbiguousZone }

// Host is one topology host.
type Host struct {
	ID       string   `json:"id"`
	IP       string   `json:"ip"` // CIDR form as declared, e.g. "10.0.1.1/24"
	MAC      string   `json:"mac"`
	Zone     string   `json:"zone,omitempty"` // resolved zone tag, "" when unresolved
	Switch   string   `json:"switch,omitempty"`
	Commands []string `json:"commands,omitempty"`

	addr       netip.Addr
	zoneReason string
}

// Clone returns a deep copy of the host record.
func (h *Host) Clone() *Host {
	out := *h
	out.Commands = append([]string(nil), h.Commands...)
	return &out
}

// Endpoint is one end of a link: a node id plus an optional port id
// ("s1-p2" means node s1, port p2; host endpoints carry no port).
type Endpoint struct {
	Node string `json:"node"`
	Port string `json:"port,omitempty"`
}

// Link is one bidirectional topology link.
type Link struct {
	A Endpoint `json:"a"`
	B Endpoint `json:"b"`
}

// Topology is the loaded registry. All fields are read-only after Build.
type Topology struct {
	hosts     map[string]*Host
	hostOrder []string // ascending host id
	links     []Link
	zones     map[string][]netip.Prefix
	zoneOrder []string
}

// Hosts returns all hosts in ascending id order.
func (t *Topology) Hosts() []*Host {
	out := make([]*Host, 0, len(t.hostOrder))
	for _, id := range t.hostOrder {
		out = append(out, t.hosts[id])
	}
	return out
}

// Links returns all links in declaration order.
func (t *Topology) Links() []Link {
	out := make([]Link, len(t.links))
	copy(out, t.links)
	return out
}

// Host returns the host record for id.
func (t *Topology) Host(id string) (*Host, error) {
	h, ok := t.hosts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrHostNotFound, id)
	}
	return h, nil
}

// ClassifyZone returns the zone tag for a host. The result is fixed at load
// time, so repeated calls always agree. An unresolvable zone is an
// AmbiguousZoneError, never a guess.
func (t *Topology) ClassifyZone(hostID string) (string, error) {
	h, err := t.Host(hostID)
	if err != nil {
		return "", err
	}
	if h.Zone == "" {
		return "", &AmbiguousZoneError{Host: hostID, Reason: h.zoneReason}
	}
	return h.Zone, nil
}

// DefaultHostPair picks, deterministically, the first host pair spanning two
// distinct zones; when no such pair exists (no zones declared, or all hosts
// share a zone) it falls back to the first two distinct hosts. Ties always
// break by ascending host id, so repeated calls on the same topology return
// the same pair.
func (t *Topology) DefaultHostPair() (*Host, *Host, error) {
	if len(t.hostOrder) < 2 {
		return nil, nil, ErrTooFewHosts
	}
	for i := 0; i < len(t.hostOrder); i++ {
		a := t.hosts[t.hostOrder[i]]
		if a.Zone == "" {
			continue
		}
		for j := i + 1; j < len(t.hostOrder); j++ {
			b := t.hosts[t.hostOrder[j]]
			if b.Zone != "" && b.Zone != a.Zone {
				return a, b, nil
			}
		}
	}
	return t.hosts[t.hostOrder[0]], t.hosts[t.hostOrder[1]], nil
}

// Document is the JSON shape of the topology artifact.
type Document struct {
	Hosts map[string]HostDoc  `json:"hosts" validate:"required,min=1"`
	Links [][]string          `json:"links"`
	Zones map[string][]string `json:"zones,omitempty"`
}

// HostDoc is one host entry of the artifact.
type HostDoc struct {
	IP       string   `json:"ip" validate:"required"`
	MAC      string   `json:"mac"`
	Zone     string   `json:"zone,omitempty"`
	Commands []string `json:"commands,omitempty"`
}

// ParseEndpoint splits a link endpoint string into node and port. The
// "<node>-p<port>" convention comes from the Mininet topology files the
// artifact mirrors; a bare id is a host endpoint.
func ParseEndpoint(s string) Endpoint {
	if i := strings.LastIndex(s, "-p"); i > 0 {
		return Endpoint{Node: s[:i], Port: s[i+1:]}
	}
	return Endpoint{Node: s}
}

// Build validates a topology document and constructs the immutable registry.
// Every host referenced by a link must exist; zone subnets must parse; host
// zones are resolved here once so later queries are pure lookups.
func Build(doc *Document) (*Topology, error) {
	t := &Topology{
		hosts: make(map[string]*Host),
		zones: make(map[string][]netip.Prefix),
	}

	for id, hd := range doc.Hosts {
		h := &Host{ID: id, IP: hd.IP, MAC: hd.MAC, Commands: hd.Commands}
		pfx, err := netip.ParsePrefix(hd.IP)
		if err != nil {
			// Accept a bare address too; zone-by-subnet still works.
			addr, aerr := netip.ParseAddr(hd.IP)
			if aerr != nil {
				return nil, fmt.Errorf("host %q: invalid ip %q", id, hd.IP)
			}
			h.addr = addr
		} else {
			h.addr = pfx.Addr()
		}
		if hd.Zone != "" {
			h.Zone = hd.Zone
		}
		t.hosts[id] = h
		t.hostOrder = append(t.hostOrder, id)
	}
	sort.Strings(t.hostOrder)

	for zone, cidrs := range doc.Zones {
		for _, c := range cidrs {
			pfx, err := netip.ParsePrefix(c)
			if err != nil {
				return nil, fmt.Errorf("zone %q: invalid subnet %q", zone, c)
			}
			t.zones[zone] = append(t.zones[zone], pfx)
		}
	}
	t.zoneOrder = make([]string, 0, len(t.zones))
	for zone := range t.zones {
		t.zoneOrder = append(t.zoneOrder, zone)
	}
	sort.Strings(t.zoneOrder)

	for i, raw := range doc.Links {
		if len(raw) != 2 {
			return nil, fmt.Errorf("link %d: expected two endpoints, got %d", i, len(raw))
		}
		a, b := ParseEndpoint(raw[0]), ParseEndpoint(raw[1])
		// A bare endpoint must be a declared host; switch endpoints always
		// carry a port in this format.
		for _, ep := range []Endpoint{a, b} {
			if ep.Port == "" {
				if _, ok := t.hosts[ep.Node]; !ok {
					return nil, fmt.Errorf("link %d: host %q not declared", i, ep.Node)
				}
			}
		}
		t.links = append(t.links, Link{A: a, B: b})

		// Derive host-to-switch adjacency.
		if h, ok := t.hosts[a.Node]; ok && a.Port == "" && b.Port != "" {
			h.Switch = b.Node
		}
		if h, ok := t.hosts[b.Node]; ok && b.Port == "" && a.Port != "" {
			h.Switch = a.Node
		}
	}

	// Resolve zones once: explicit tag wins, then unique subnet membership.
	for _, id := range t.hostOrder {
		h := t.hosts[id]
		if h.Zone != "" {
			continue
		}
		h.Zone, h.zoneReason = t.resolveZoneBySubnet(h)
	}

	return t, nil
}

func (t *Topology) resolveZoneBySubnet(h *Host) (zone, reason string) {
	if len(t.zones) == 0 {
		return "", "no explicit tag and no zone subnets declared"
	}
	var matches []string
	for _, z := range t.zoneOrder {
		for _, pfx := range t.zones[z] {
			if pfx.Contains(h.addr) {
				matches = append(matches, z)
				break
			}
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], ""
	case 0:
		return "", fmt.Sprintf("ip %s is in none of the declared zone subnets", h.IP)
	default:
		return "", fmt.Sprintf("ip %s is in multiple zones: %s", h.IP, strings.Join(matches, ", "))
	}
}
