package routeros

import "github.com/netreclaim/reclaim/pkg/util"

// sectionParser appends the records one statement yields to cfg and returns
// a non-empty reason when the statement yielded nothing.
type sectionParser func(cfg *Config, st Statement) string

// sectionParsers maps each known section header to its parser.
var sectionParsers map[string]sectionParser

// sectionOrder fixes the order sections are parsed in so Skipped is stable.
var sectionOrder = []string{
	SectionIdentity,
	SectionBridge,
	SectionBridgePort,
	SectionVlan,
	SectionEoip,
	SectionBonding,
	SectionIPAddress,
	SectionPPPSecret,
}

func init() {
	sectionParsers = map[string]sectionParser{
		SectionIdentity: func(cfg *Config, st Statement) string {
			if !st.Has("name") {
				return "no name"
			}
			cfg.Identity = st.Get("name")
			return ""
		},
		SectionBridge: func(cfg *Config, st Statement) string {
			if !st.Has("name") {
				return "no name"
			}
			cfg.Bridges = append(cfg.Bridges, Bridge{Name: st.Get("name")})
			return ""
		},
		SectionBridgePort: func(cfg *Config, st Statement) string {
			if !st.Has("interface") && !st.Has("bridge") {
				return "no bridge or interface"
			}
			cfg.BridgePorts = append(cfg.BridgePorts, BridgePort{
				Bridge:    st.Get("bridge"),
				Interface: st.Get("interface"),
			})
			return ""
		},
		SectionVlan: func(cfg *Config, st Statement) string {
			if !st.Has("name") && !st.Has("interface") {
				return "no name or interface"
			}
			cfg.Vlans = append(cfg.Vlans, Vlan{
				Name:      st.Get("name"),
				Interface: st.Get("interface"),
				VlanID:    st.Get("vlan-id"),
			})
			return ""
		},
		SectionEoip: func(cfg *Config, st Statement) string {
			e := Eoip{
				Name:          st.Get("name"),
				LocalAddress:  util.LeadingIPv4(st.Get("local-address")),
				RemoteAddress: util.LeadingIPv4(st.Get("remote-address")),
				TunnelID:      st.Get("tunnel-id"),
			}
			if e.Name == "" && e.LocalAddress == "" && e.RemoteAddress == "" {
				return "no name or addresses"
			}
			cfg.Eoips = append(cfg.Eoips, e)
			return ""
		},
		SectionBonding: func(cfg *Config, st Statement) string {
			targets := util.ExtractIPv4s(st.Get("arp-ip-targets"))
			if !st.Has("slaves") && len(targets) == 0 {
				return "no slaves"
			}
			cfg.Bondings = append(cfg.Bondings, BondingGroup{
				Name:       st.Get("name"),
				Slaves:     st.Get("slaves"),
				ARPTargets: targets,
			})
			return ""
		},
		SectionIPAddress: func(cfg *Config, st Statement) string {
			addr := util.LeadingIPv4(st.Get("address"))
			if !st.Has("interface") && addr == "" {
				return "no interface or address"
			}
			cfg.IPAddresses = append(cfg.IPAddresses, IPAddress{
				Interface: st.Get("interface"),
				Address:   addr,
			})
			return ""
		},
		SectionPPPSecret: func(cfg *Config, st Statement) string {
			addr := util.LeadingIPv4(st.Get("remote-address"))
			if addr == "" {
				return "no remote-address"
			}
			cfg.PPPSecrets = append(cfg.PPPSecrets, PPPSecret{
				Name:          st.Get("name"),
				RemoteAddress: addr,
			})
			return ""
		},
	}
}

// Parse converts export text into a Config. Absent sections produce empty
// lists; statements that carry none of the fields their section extracts
// are recorded in Skipped and otherwise ignored.
func Parse(text string) *Config {
	cfg := &Config{}
	bodies := ExtractSections(text, sectionOrder...)
	for _, name := range sectionOrder {
		parse := sectionParsers[name]
		verb := "add"
		if name == SectionIdentity {
			verb = "set"
		}
		for _, st := range Statements(bodies[name], verb) {
			if reason := parse(cfg, st); reason != "" {
				cfg.Skipped = append(cfg.Skipped, Skipped{Section: name, Line: st.Raw, Reason: reason})
			}
		}
	}
	return cfg
}

// BridgeNames returns the name of every bridge.
func (c *Config) BridgeNames() []string {
	out := make([]string, 0, len(c.Bridges))
	for _, b := range c.Bridges {
		out = append(out, b.Name)
	}
	return out
}

// BridgePortPairs returns the ports that name both bridge and interface.
func (c *Config) BridgePortPairs() []BridgePort {
	var out []BridgePort
	for _, p := range c.BridgePorts {
		if p.Bridge != "" && p.Interface != "" {
			out = append(out, p)
		}
	}
	return out
}

// BridgePortInterfaces returns every interface plugged into some bridge.
func (c *Config) BridgePortInterfaces() []string {
	var out []string
	for _, p := range c.BridgePorts {
		if p.Interface != "" {
			out = append(out, p.Interface)
		}
	}
	return out
}

// VlanNames returns the name of every VLAN.
func (c *Config) VlanNames() []string {
	var out []string
	for _, v := range c.Vlans {
		if v.Name != "" {
			out = append(out, v.Name)
		}
	}
	return out
}

// VlanBaseInterfaces returns the base link of every VLAN.
func (c *Config) VlanBaseInterfaces() []string {
	var out []string
	for _, v := range c.Vlans {
		if v.Interface != "" {
			out = append(out, v.Interface)
		}
	}
	return out
}

// EoipNames returns the name of every EOIP tunnel.
func (c *Config) EoipNames() []string {
	var out []string
	for _, e := range c.Eoips {
		if e.Name != "" {
			out = append(out, e.Name)
		}
	}
	return out
}

// EoipLocalAddresses returns every EOIP local-address.
func (c *Config) EoipLocalAddresses() []string {
	var out []string
	for _, e := range c.Eoips {
		if e.LocalAddress != "" {
			out = append(out, e.LocalAddress)
		}
	}
	return out
}

// EoipRemoteAddresses returns every EOIP remote-address.
func (c *Config) EoipRemoteAddresses() []string {
	var out []string
	for _, e := range c.Eoips {
		if e.RemoteAddress != "" {
			out = append(out, e.RemoteAddress)
		}
	}
	return out
}

// InterfacesWithIP returns every interface that carries an address.
func (c *Config) InterfacesWithIP() []string {
	var out []string
	for _, a := range c.IPAddresses {
		if a.Interface != "" {
			out = append(out, a.Interface)
		}
	}
	return out
}

// BondingSlaveLists returns the raw slave list of every bonding group.
func (c *Config) BondingSlaveLists() []string {
	var out []string
	for _, b := range c.Bondings {
		if b.Slaves != "" {
			out = append(out, b.Slaves)
		}
	}
	return out
}

// PPPRemoteAddresses returns every PPP secret remote-address.
func (c *Config) PPPRemoteAddresses() []string {
	out := make([]string, 0, len(c.PPPSecrets))
	for _, s := range c.PPPSecrets {
		out = append(out, s.RemoteAddress)
	}
	return out
}
