// Package reclaim derives the structurally unused bridges, interfaces and
// remote endpoints of one parsed RouterOS configuration.
//
// Everything here is pure set algebra over a routeros.Config and a
// ReferenceDataset. The only state that changes after an analysis is the
// reachability partition a Snapshot carries, and that only through
// Snapshot.Annotate.
package reclaim

import "sort"

// Set is an unordered collection of names or addresses.
type Set map[string]struct{}

// NewSet builds a set from items. Duplicates collapse.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Add inserts items into s.
func (s Set) Add(items ...string) {
	for _, it := range items {
		s[it] = struct{}{}
	}
}

// Has reports whether item is a member of s.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Union returns s ∪ other.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Minus returns s − other.
func (s Set) Minus(other Set) Set {
	out := make(Set, len(s))
	for k := range s {
		if !other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Intersect returns s ∩ other.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for k := range s {
		if other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// SubsetOf reports whether every member of s is in other.
func (s Set) SubsetOf(other Set) bool {
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
