// Package reconcile drives tag reconciliation runs: a fixed ordered
// pass over the five resource kinds, fanning out across regions, that
// applies each resource's derived tag set and collects per-unit
// failures into a run summary.
package reconcile

import (
	"context"

	"github.com/yairfalse/leima/types"
)

// ListFunc lists every resource of one kind in a region, each record
// stamped with that region.
type ListFunc func(ctx context.Context, region string) ([]types.Resource, error)

// IdentifyFunc extracts the identifier the kind's write call addresses.
type IdentifyFunc func(r types.Resource) string

// DeriveFunc computes the tag set to apply to one resource. The base
// set is read-only; every derivation returns a fresh copy.
type DeriveFunc func(r types.Resource, base types.Tags) types.Tags

// WriteFunc applies tags to one resource in a region.
type WriteFunc func(ctx context.Context, region, id string, tags types.Tags) error

// Descriptor bundles the capabilities the engine needs to reconcile one
// resource kind. The engine iterates a fixed slice of these instead of
// carrying per-kind control flow.
type Descriptor struct {
	Kind     types.Kind
	List     ListFunc
	Identify IdentifyFunc
	Derive   DeriveFunc
	Write    WriteFunc
}

// IdentifyByID is the identify capability for kinds whose list call
// already stamps the write target into the record ID.
func IdentifyByID(r types.Resource) string {
	return r.ID
}
