package engine

import "sort"

// FlagSet holds the narrative progress tokens of one playthrough. Flags are
// only ever added during normal play; an explicit new game starts empty.
type FlagSet map[string]struct{}

// NewFlagSet builds a set from a slice of tokens.
func NewFlagSet(flags []string) FlagSet {
	fs := make(FlagSet, len(flags))
	for _, f := range flags {
		fs[f] = struct{}{}
	}
	return fs
}

// Has reports whether the flag is set.
func (fs FlagSet) Has(flag string) bool {
	_, ok := fs[flag]
	return ok
}

// Add sets a flag and reports whether it was newly added.
func (fs FlagSet) Add(flag string) bool {
	if _, ok := fs[flag]; ok {
		return false
	}
	fs[flag] = struct{}{}
	return true
}

// Sorted returns the flags as a sorted slice for deterministic serialization.
func (fs FlagSet) Sorted() []string {
	out := make([]string, 0, len(fs))
	for f := range fs {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// clone copies the set.
func (fs FlagSet) clone() FlagSet {
	out := make(FlagSet, len(fs))
	for f := range fs {
		out[f] = struct{}{}
	}
	return out
}
