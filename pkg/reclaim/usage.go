package reclaim

import "github.com/netreclaim/reclaim/pkg/routeros"

// interfaceUsage is every way an interface can be claimed short of bonding:
// carrying an address, backing a bridge port, or being a VLAN's base link.
func interfaceUsage(cfg *routeros.Config) Set {
	used := NewSet(cfg.InterfacesWithIP()...)
	used.Add(cfg.BridgePortInterfaces()...)
	used.Add(cfg.VlanBaseInterfaces()...)
	return used
}

// FreeVlans returns the VLANs that carry no address, sit in no bridge, are
// the base of no other VLAN and are not bonded.
func FreeVlans(cfg *routeros.Config, bonding BondingResolver) Set {
	return bonding.Exclude(NewSet(cfg.VlanNames()...).Minus(interfaceUsage(cfg)))
}

// FreeEoips returns the EOIP tunnels that carry no address, sit in no
// bridge, carry no VLAN and are not bonded.
func FreeEoips(cfg *routeros.Config, bonding BondingResolver) Set {
	return bonding.Exclude(NewSet(cfg.EoipNames()...).Minus(interfaceUsage(cfg)))
}
