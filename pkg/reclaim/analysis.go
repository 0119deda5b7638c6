package reclaim

import "github.com/netreclaim/reclaim/pkg/routeros"

// Analysis pairs one parsed configuration with the reference data it is
// reconciled against. Analyses share nothing and may run concurrently.
type Analysis struct {
	cfg *routeros.Config
	ref ReferenceDataset
}

// NewAnalysis creates an analysis of cfg against ref. A nil cfg is treated as
// an empty configuration.
func NewAnalysis(cfg *routeros.Config, ref ReferenceDataset) *Analysis {
	if cfg == nil {
		cfg = &routeros.Config{}
	}
	return &Analysis{cfg: cfg, ref: ref}
}

// Config returns the parsed configuration under analysis.
func (a *Analysis) Config() *routeros.Config { return a.cfg }

// Snapshot computes a fresh snapshot. Each call returns a new snapshot with
// no reachability recorded.
func (a *Analysis) Snapshot() *Snapshot {
	cfg := a.cfg
	bonding := NewBondingResolver(cfg.BondingSlaveLists())
	topo := AnalyzeBridges(cfg, bonding)
	free, inPlan := ResolveEndpoints(cfg, a.ref)

	return &Snapshot{
		Identity: cfg.Identity,
		Inventory: Inventory{
			Bridges:     NewSet(cfg.BridgeNames()...).Len(),
			BridgePorts: NewSet(cfg.BridgePortInterfaces()...).Len(),
			Vlans:       NewSet(cfg.VlanNames()...).Len(),
			Eoips:       NewSet(cfg.EoipNames()...).Len(),
			Bondings:    NewSet(cfg.BondingSlaveLists()...).Len(),
			PPPSecrets:  len(cfg.PPPSecrets),
			IPAddresses: len(cfg.IPAddresses),
		},
		EmptyBridges:         topo.Empty,
		SinglePortBridges:    topo.SinglePort,
		SingleInterfaceKinds: topo.SingleInterfaces,
		FreeVlans:            FreeVlans(cfg, bonding),
		FreeEoips:            FreeEoips(cfg, bonding),
		FreeIPs:              free,
		InPlanIPs:            inPlan,
		Skipped:              append([]routeros.Skipped(nil), cfg.Skipped...),
		reach:                make(map[Category]map[string]bool),
	}
}

// AnalyzeText parses export text and analyzes it against ref.
func AnalyzeText(text string, ref ReferenceDataset) *Snapshot {
	return NewAnalysis(routeros.Parse(text), ref).Snapshot()
}
