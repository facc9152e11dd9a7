package aws

import (
	"github.com/yairfalse/leima/reconcile"
	"github.com/yairfalse/leima/types"
)

// Descriptors returns the reconciliation descriptors for every
// supported kind, in phase order.
func Descriptors(p *Provider) []reconcile.Descriptor {
	return []reconcile.Descriptor{
		{
			Kind:     types.KindInstance,
			List:     p.ListInstances,
			Identify: reconcile.IdentifyByID,
			Derive:   reconcile.DeriveInstanceTags,
			Write:    p.TagInstance,
		},
		{
			Kind:     types.KindBucket,
			List:     p.ListBuckets,
			Identify: reconcile.IdentifyByID,
			Derive:   reconcile.DeriveBucketTags,
			Write:    p.TagBucket,
		},
		{
			Kind:     types.KindVolume,
			List:     p.ListVolumes,
			Identify: reconcile.IdentifyByID,
			Derive:   reconcile.DeriveVolumeTags,
			Write:    p.TagVolume,
		},
		{
			Kind:     types.KindLoadBalancer,
			List:     p.ListLoadBalancers,
			Identify: reconcile.IdentifyByID,
			Derive:   reconcile.DeriveLoadBalancerTags,
			Write:    p.TagLoadBalancer,
		},
		{
			Kind:     types.KindFunction,
			List:     p.ListFunctions,
			Identify: reconcile.IdentifyByID,
			Derive:   reconcile.DeriveFunctionTags,
			Write:    p.TagFunction,
		},
	}
}
