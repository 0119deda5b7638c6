package reclaim

import "github.com/netreclaim/reclaim/pkg/routeros"

// Kind is the interface type of a lone bridge port.
type Kind string

const (
	KindEoip    Kind = "eoip"
	KindVlan    Kind = "vlan"
	KindUnknown Kind = ""
)

// BridgeTopology is the classification of the bridges that carry no address
// of their own. Bridges with two or more ports are in use and appear in none
// of its fields.
type BridgeTopology struct {
	Empty      Set
	SinglePort Set

	// SingleInterfaces maps the lone port of a single-port bridge to its
	// kind. Ports that carry an address or are bonded are left out.
	SingleInterfaces map[string]Kind
}

// AnalyzeBridges classifies the bridges of cfg.
func AnalyzeBridges(cfg *routeros.Config, bonding BondingResolver) BridgeTopology {
	withIP := NewSet(cfg.InterfacesWithIP()...)
	eoips := NewSet(cfg.EoipNames()...)
	vlans := NewSet(cfg.VlanNames()...)

	candidates := NewSet(cfg.BridgeNames()...).Minus(withIP)

	// A (bridge, interface) pair exported twice is still one port.
	ports := make(map[string]Set, len(candidates))
	for b := range candidates {
		ports[b] = NewSet()
	}
	for _, p := range cfg.BridgePortPairs() {
		if members, ok := ports[p.Bridge]; ok {
			members.Add(p.Interface)
		}
	}

	topo := BridgeTopology{
		Empty:            NewSet(),
		SinglePort:       NewSet(),
		SingleInterfaces: make(map[string]Kind),
	}
	for bridge, members := range ports {
		switch members.Len() {
		case 0:
			topo.Empty.Add(bridge)
		case 1:
			topo.SinglePort.Add(bridge)
			port := members.Sorted()[0]
			if withIP.Has(port) || bonding.IsSlave(port) {
				continue
			}
			kind := KindUnknown
			if eoips.Has(port) {
				kind = KindEoip
			} else if vlans.Has(port) {
				kind = KindVlan
			}
			topo.SingleInterfaces[port] = kind
		}
	}
	return topo
}
