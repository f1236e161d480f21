package model

import "slices"

// CoordDict maps a coordinate-set name to its ordered labels.
// Positions are used as 1-based indices by the model input.
type CoordDict map[string][]string

// Index returns the 1-based position of label in set, or 0 if absent.
func (c CoordDict) Index(set, label string) int {
	if i := slices.Index(c[set], label); i >= 0 {
		return i + 1
	}
	return 0
}

// Contains reports whether label is a member of set.
func (c CoordDict) Contains(set, label string) bool {
	return slices.Contains(c[set], label)
}

// Clone returns a deep copy.
func (c CoordDict) Clone() CoordDict {
	if c == nil {
		return nil
	}
	out := make(CoordDict, len(c))
	for k, v := range c {
		out[k] = slices.Clone(v)
	}
	return out
}
