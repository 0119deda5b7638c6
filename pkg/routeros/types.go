package routeros

// Records are parsed once and never mutated. A record keeps every field its
// statement carried; fields the statement lacked stay "". Extraction helpers
// on Config skip records missing the field they extract, so no partial row
// is ever reported for that field.

// Bridge is an `/interface bridge` entry.
type Bridge struct {
	Name string `json:"name"`
}

// BridgePort is an `/interface bridge port` entry.
type BridgePort struct {
	Bridge    string `json:"bridge"`
	Interface string `json:"interface"`
}

// Vlan is an `/interface vlan` entry. Interface is the base link.
type Vlan struct {
	Name      string `json:"name"`
	Interface string `json:"interface"`
	VlanID    string `json:"vlan_id,omitempty"`
}

// Eoip is an `/interface eoip` tunnel.
type Eoip struct {
	Name          string `json:"name"`
	LocalAddress  string `json:"local_address,omitempty"`
	RemoteAddress string `json:"remote_address,omitempty"`
	TunnelID      string `json:"tunnel_id,omitempty"`
}

// IPAddress is an `/ip address` binding. Address has its mask stripped.
type IPAddress struct {
	Interface string `json:"interface"`
	Address   string `json:"address"`
}

// BondingGroup is an `/interface bonding` entry. Slaves is the raw
// comma-separated slave list as exported.
type BondingGroup struct {
	Name       string   `json:"name"`
	Slaves     string   `json:"slaves"`
	ARPTargets []string `json:"arp_targets,omitempty"`
}

// PPPSecret is a `/ppp secret` entry.
type PPPSecret struct {
	Name          string `json:"name,omitempty"`
	RemoteAddress string `json:"remote_address"`
}

// Skipped records a statement that yielded nothing for its section.
type Skipped struct {
	Section string `json:"section"`
	Line    string `json:"line"`
	Reason  string `json:"reason"`
}

// Config is the typed view of one export.
type Config struct {
	Identity    string         `json:"identity,omitempty"`
	Bridges     []Bridge       `json:"bridges"`
	BridgePorts []BridgePort   `json:"bridge_ports"`
	Vlans       []Vlan         `json:"vlans"`
	Eoips       []Eoip         `json:"eoips"`
	IPAddresses []IPAddress    `json:"ip_addresses"`
	Bondings    []BondingGroup `json:"bondings"`
	PPPSecrets  []PPPSecret    `json:"ppp_secrets"`

	// Skipped lists statements dropped for lack of every field their
	// section extracts. Parsing never fails because of them.
	Skipped []Skipped `json:"skipped,omitempty"`
}
