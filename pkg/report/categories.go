// Package report renders a reclaim.Record as command-ready listings.
package report

import (
	"strings"

	"github.com/netreclaim/reclaim/pkg/reclaim"
)

// Category keys accepted by Options.Only.
const (
	KeyEmpty       = "empty"
	KeySingle      = "single"
	KeyIntSingle   = "intsingle"
	KeyVlansFree   = "vlans_free"
	KeyEoipFree    = "eoip_free"
	KeyIPFree      = "ip_free"
	KeyICMPFalse   = "icmp_false"
	KeyICMPTrue    = "icmp_true"
	KeyInPlan      = "in_plan"
	KeyInPlanFalse = "in_plan_false"
	KeyInPlanTrue  = "in_plan_true"
)

// Command templates. {name} is the member, {kind} the interface kind of a
// lone bridge port.
const (
	bridgePrint   = `/interface bridge port print where bridge="{name}"`
	bridgeDisable = `/interface bridge disable [find where name="{name}"]`
	kindPrint     = `/interface {kind} print where name="{name}"`
	kindDisable   = `/interface {kind} disable [find where name="{name}"]`
	vlanPrint     = `/interface vlan print where name="{name}"`
	vlanDisable   = `/interface vlan disable [find where name="{name}"]`
	eoipPrint     = `/interface eoip print where name="{name}"`
	eoipDisable   = `/interface eoip disable [find where name="{name}"]`
	remotePrint   = `/interface eoip print where remote-address={name}`
	remoteDisable = `/interface eoip disable [find where remote-address={name}]`
)

// category describes one report section and where its members come from.
type category struct {
	key         string
	description string
	print       string
	disable     string
	members     func(rec reclaim.Record) []string
}

var categories = []category{
	{KeyEmpty, "Bridges without ports", bridgePrint, bridgeDisable,
		func(r reclaim.Record) []string { return r.EmptyBridges }},
	{KeySingle, "Bridges with a single port", bridgePrint, bridgeDisable,
		func(r reclaim.Record) []string { return r.SinglePortBridges }},
	{KeyIntSingle, "Lone interfaces of single-port bridges", kindPrint, kindDisable,
		func(r reclaim.Record) []string { return r.SingleInterfaceNames() }},
	{KeyVlansFree, "VLANs not used by any bridge, IP address or bonding", vlanPrint, vlanDisable,
		func(r reclaim.Record) []string { return r.FreeVlans }},
	{KeyEoipFree, "EOIP tunnels not used by any bridge, VLAN or bonding", eoipPrint, eoipDisable,
		func(r reclaim.Record) []string { return r.FreeEoips }},
	{KeyIPFree, "PPP and EOIP remote addresses absent from the address plan and active sessions", remotePrint, remoteDisable,
		func(r reclaim.Record) []string { return r.FreeIPs }},
	{KeyICMPFalse, "Free remote addresses not answering ICMP", remotePrint, remoteDisable,
		func(r reclaim.Record) []string { return r.Reachability[reclaim.CategoryFree].Unreachable }},
	{KeyICMPTrue, "Free remote addresses answering ICMP", remotePrint, remoteDisable,
		func(r reclaim.Record) []string { return r.Reachability[reclaim.CategoryFree].Reachable }},
	{KeyInPlan, "PPP and EOIP remote addresses listed in the address plan", remotePrint, remoteDisable,
		func(r reclaim.Record) []string { return r.InPlanIPs }},
	{KeyInPlanFalse, "Planned remote addresses not answering ICMP", remotePrint, remoteDisable,
		func(r reclaim.Record) []string { return r.Reachability[reclaim.CategoryInPlan].Unreachable }},
	{KeyInPlanTrue, "Planned remote addresses answering ICMP", remotePrint, remoteDisable,
		func(r reclaim.Record) []string { return r.Reachability[reclaim.CategoryInPlan].Reachable }},
}

// Keys returns every category key in report order.
func Keys() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.key
	}
	return out
}

// Description returns the description of key, or "" for an unknown key.
func Description(key string) string {
	for _, c := range categories {
		if c.key == key {
			return c.description
		}
	}
	return ""
}

// render fills a command template. An unknown kind drops the kind path
// element so the command addresses the generic interface menu.
func render(tmpl, name string, kind reclaim.Kind) string {
	if kind == reclaim.KindUnknown {
		tmpl = strings.ReplaceAll(tmpl, " {kind}", "")
	}
	return strings.NewReplacer("{name}", name, "{kind}", string(kind)).Replace(tmpl)
}
