package reclaim

import (
	"fmt"
	"sort"
	"sync"

	"github.com/netreclaim/reclaim/pkg/routeros"
	"github.com/netreclaim/reclaim/pkg/util"
)

// Category names an IP set that can be annotated with reachability.
type Category string

const (
	// CategoryFree annotates FreeIPs.
	CategoryFree Category = "free"

	// CategoryInPlan annotates InPlanIPs.
	CategoryInPlan Category = "in-plan"
)

// Categories lists every annotatable category.
var Categories = []Category{CategoryFree, CategoryInPlan}

// ParseCategory converts a category name to a Category.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q: %w", name, util.ErrInvalidArgument)
}

// Inventory counts what the analysis looked at.
type Inventory struct {
	Bridges     int `json:"bridges" yaml:"bridges"`
	BridgePorts int `json:"bridge_ports" yaml:"bridge_ports"`
	Vlans       int `json:"vlans" yaml:"vlans"`
	Eoips       int `json:"eoips" yaml:"eoips"`
	Bondings    int `json:"bondings" yaml:"bondings"`
	PPPSecrets  int `json:"ppp_secrets" yaml:"ppp_secrets"`
	IPAddresses int `json:"ip_addresses" yaml:"ip_addresses"`
}

// Snapshot is the result of one analysis. The derived sets are fixed at
// construction and must be treated as read-only. Reachability is the only
// mutable part, changed through Annotate. A Snapshot is safe for concurrent
// use.
type Snapshot struct {
	Identity  string
	Inventory Inventory

	EmptyBridges         Set
	SinglePortBridges    Set
	SingleInterfaceKinds map[string]Kind
	FreeVlans            Set
	FreeEoips            Set
	FreeIPs              Set
	InPlanIPs            Set

	// Skipped carries the statements the parser dropped.
	Skipped []routeros.Skipped

	mu sync.Mutex

	// reach maps category → address → reachable. An address is absent
	// until a prober reports on it.
	reach map[Category]map[string]bool
}

func (s *Snapshot) universe(category Category) (Set, error) {
	switch category {
	case CategoryFree:
		return s.FreeIPs, nil
	case CategoryInPlan:
		return s.InPlanIPs, nil
	}
	return nil, fmt.Errorf("unknown category %q: %w", category, util.ErrInvalidArgument)
}

// IPs returns a copy of the IP set category annotates.
func (s *Snapshot) IPs(category Category) (Set, error) {
	ips, err := s.universe(category)
	if err != nil {
		return nil, err
	}
	return ips.Clone(), nil
}

// Annotate records one probing event for category. reachable and unreachable
// are merged into the existing partition; an address reported again moves to
// the partition of the latest report.
//
// The whole call is rejected, and nothing recorded, if any address is not in
// the category's IP set or appears in both lists.
func (s *Snapshot) Annotate(category Category, reachable, unreachable []string) error {
	ips, err := s.universe(category)
	if err != nil {
		return err
	}

	var unknown []string
	for _, list := range [][]string{reachable, unreachable} {
		for _, a := range list {
			if !ips.Has(a) {
				unknown = append(unknown, a)
			}
		}
	}
	if len(unknown) > 0 {
		return util.NewAnnotationError(string(category), "address not in category", unknown...)
	}

	up := NewSet(reachable...)
	var conflict []string
	for _, a := range unreachable {
		if up.Has(a) {
			conflict = append(conflict, a)
		}
	}
	if len(conflict) > 0 {
		return util.NewAnnotationError(string(category), "reported both reachable and unreachable", conflict...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.reach[category]
	if part == nil {
		part = make(map[string]bool)
		s.reach[category] = part
	}
	for _, a := range reachable {
		part[a] = true
	}
	for _, a := range unreachable {
		part[a] = false
	}
	return nil
}

func (s *Snapshot) partition(category Category, want bool) Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := NewSet()
	for a, up := range s.reach[category] {
		if up == want {
			out.Add(a)
		}
	}
	return out
}

// Reachable returns the addresses of category confirmed reachable.
func (s *Snapshot) Reachable(category Category) Set { return s.partition(category, true) }

// Unreachable returns the addresses of category confirmed unreachable.
func (s *Snapshot) Unreachable(category Category) Set { return s.partition(category, false) }

// Unannotated returns the addresses of category no prober has reported on.
func (s *Snapshot) Unannotated(category Category) Set {
	ips, err := s.universe(category)
	if err != nil {
		return NewSet()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := NewSet()
	for a := range ips {
		if _, ok := s.reach[category][a]; !ok {
			out.Add(a)
		}
	}
	return out
}

// Partition is the reachability of one category in a Record.
type Partition struct {
	Reachable   []string `json:"reachable" yaml:"reachable"`
	Unreachable []string `json:"unreachable" yaml:"unreachable"`
}

// Record is a plain, sorted copy of a Snapshot for reporting and storage.
// Records of equal snapshots are deep-equal.
type Record struct {
	Identity          string                 `json:"identity,omitempty" yaml:"identity,omitempty"`
	Inventory         Inventory              `json:"inventory" yaml:"inventory"`
	EmptyBridges      []string               `json:"empty_bridges" yaml:"empty_bridges"`
	SinglePortBridges []string               `json:"single_port_bridges" yaml:"single_port_bridges"`
	SingleInterfaces  map[string]Kind        `json:"single_interfaces" yaml:"single_interfaces"`
	FreeVlans         []string               `json:"free_vlans" yaml:"free_vlans"`
	FreeEoips         []string               `json:"free_eoips" yaml:"free_eoips"`
	FreeIPs           []string               `json:"free_ips" yaml:"free_ips"`
	InPlanIPs         []string               `json:"in_plan_ips" yaml:"in_plan_ips"`
	Reachability      map[Category]Partition `json:"reachability" yaml:"reachability"`
	Skipped           int                    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Record returns a copy of the snapshot's current state. Both partitions of
// every category are read under one lock, so they are always disjoint.
func (s *Snapshot) Record() Record {
	kinds := make(map[string]Kind, len(s.SingleInterfaceKinds))
	for k, v := range s.SingleInterfaceKinds {
		kinds[k] = v
	}
	rec := Record{
		Identity:          s.Identity,
		Inventory:         s.Inventory,
		EmptyBridges:      s.EmptyBridges.Sorted(),
		SinglePortBridges: s.SinglePortBridges.Sorted(),
		SingleInterfaces:  kinds,
		FreeVlans:         s.FreeVlans.Sorted(),
		FreeEoips:         s.FreeEoips.Sorted(),
		FreeIPs:           s.FreeIPs.Sorted(),
		InPlanIPs:         s.InPlanIPs.Sorted(),
		Reachability:      make(map[Category]Partition, len(Categories)),
		Skipped:           len(s.Skipped),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range Categories {
		up, down := NewSet(), NewSet()
		for a, ok := range s.reach[c] {
			if ok {
				up.Add(a)
			} else {
				down.Add(a)
			}
		}
		rec.Reachability[c] = Partition{Reachable: up.Sorted(), Unreachable: down.Sorted()}
	}
	return rec
}

// SingleInterfaceNames returns the single-interface names in lexical order.
func (r Record) SingleInterfaceNames() []string {
	out := make([]string, 0, len(r.SingleInterfaces))
	for n := range r.SingleInterfaces {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
