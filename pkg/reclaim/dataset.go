package reclaim

import "github.com/netreclaim/reclaim/pkg/util"

// ReferenceDataset holds the two externally supplied address sets the
// endpoint resolver reconciles against. Either may be empty. A dataset is
// never modified after construction; the With* methods return copies.
type ReferenceDataset struct {
	addressPlan    Set
	activeSessions Set
}

// NewReferenceDataset extracts dotted-quad addresses from an address-plan
// text and an active-session text, e.g. the output of `/ppp active print`.
// Order and duplicates in either text are irrelevant.
func NewReferenceDataset(planText, activeText string) ReferenceDataset {
	return ReferenceDataset{
		addressPlan:    NewSet(util.ExtractIPv4s(planText)...),
		activeSessions: NewSet(util.ExtractIPv4s(activeText)...),
	}
}

// WithAddressPlan returns a copy of r whose address plan is plan.
func (r ReferenceDataset) WithAddressPlan(plan Set) ReferenceDataset {
	r.addressPlan = plan.Clone()
	return r
}

// WithActiveSessions returns a copy of r whose active sessions are active.
// Use it when the session list was already collected as a set.
func (r ReferenceDataset) WithActiveSessions(active Set) ReferenceDataset {
	r.activeSessions = active.Clone()
	return r
}

// AddressPlan returns a copy of the address plan.
func (r ReferenceDataset) AddressPlan() Set { return r.addressPlan.Clone() }

// ActiveSessions returns a copy of the active-session set.
func (r ReferenceDataset) ActiveSessions() Set { return r.activeSessions.Clone() }
