package types

import "strings"

// Kind identifies one of the taggable AWS resource categories.
//
// The enumeration is closed: a reconciliation run always walks exactly
// these five kinds, in KindOrder order. Kinds are not extensible at
// runtime.
type Kind string

const (
	KindInstance     Kind = "instance"
	KindBucket       Kind = "bucket"
	KindVolume       Kind = "volume"
	KindLoadBalancer Kind = "load_balancer"
	KindFunction     Kind = "function"
)

// KindOrder returns the fixed phase order of a reconciliation run.
func KindOrder() []Kind {
	return []Kind{KindInstance, KindBucket, KindVolume, KindLoadBalancer, KindFunction}
}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindInstance, KindBucket, KindVolume, KindLoadBalancer, KindFunction:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Label returns the human-facing form, e.g. "load balancer".
func (k Kind) Label() string {
	return strings.ReplaceAll(string(k), "_", " ")
}
