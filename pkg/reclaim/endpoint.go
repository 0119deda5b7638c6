package reclaim

import "github.com/netreclaim/reclaim/pkg/routeros"

// RemoteCandidates returns the remote addresses of every PPP secret and EOIP
// tunnel in cfg.
func RemoteCandidates(cfg *routeros.Config) Set {
	out := NewSet(cfg.PPPRemoteAddresses()...)
	out.Add(cfg.EoipRemoteAddresses()...)
	return out
}

// ResolveEndpoints splits the remote candidates of cfg into those nothing
// claims (free) and those the address plan claims (in plan). An address in
// the active-session set but not in the plan is in neither.
func ResolveEndpoints(cfg *routeros.Config, ref ReferenceDataset) (free, inPlan Set) {
	candidates := RemoteCandidates(cfg)
	free = candidates.Minus(ref.addressPlan).Minus(ref.activeSessions)
	inPlan = candidates.Intersect(ref.addressPlan)
	return free, inPlan
}
