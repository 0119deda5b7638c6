package reclaim

import "strings"

// BondingResolver decides whether an interface is enslaved by a bonding
// group.
//
// A name counts as enslaved when it occurs as a substring of any group's raw
// slave list. "ether1" is therefore reported as enslaved by a group whose
// slaves are "ether10,ether11". Reports that already exist depend on this
// reading, so it is kept rather than tokenized.
type BondingResolver struct {
	slaveLists []string
}

// NewBondingResolver creates a resolver over the raw slave-list strings of
// every bonding group.
func NewBondingResolver(slaveLists []string) BondingResolver {
	return BondingResolver{slaveLists: append([]string(nil), slaveLists...)}
}

// IsSlave reports whether name is enslaved by some bonding group.
func (b BondingResolver) IsSlave(name string) bool {
	if name == "" {
		return false
	}
	for _, slaves := range b.slaveLists {
		if strings.Contains(slaves, name) {
			return true
		}
	}
	return false
}

// Exclude returns names without the members IsSlave reports.
func (b BondingResolver) Exclude(names Set) Set {
	out := make(Set, len(names))
	for n := range names {
		if !b.IsSlave(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Groups returns the number of bonding groups with a slave list.
func (b BondingResolver) Groups() int { return len(b.slaveLists) }
