package types

import "sort"

// NameKey is the supplemental tag key derived per resource kind.
const NameKey = "Name"

// Tags maps tag keys to values.
//
// The base tag set from configuration is cloned once at run start and is
// read-only for the rest of the run. Derivations never modify the map
// they are given; they return a fresh copy.
type Tags map[string]string

// Clone returns an independent copy of t. A nil receiver clones to an
// empty, non-nil map so callers can always write to the result.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	return out
}

// With returns a copy of t with key set to value. t itself is unchanged.
func (t Tags) With(key, value string) Tags {
	out := t.Clone()
	out[key] = value
	return out
}

// Has reports whether key is present in t.
func (t Tags) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Contains reports whether every entry of other appears in t with the
// same value.
func (t Tags) Contains(other Tags) bool {
	for k, v := range other {
		got, ok := t[k]
		if !ok || got != v {
			return false
		}
	}
	return true
}

// SortedKeys returns t's keys in ascending order. Pair order carries no
// meaning on the wire; sorting keeps journal entries and test output
// stable.
func (t Tags) SortedKeys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
