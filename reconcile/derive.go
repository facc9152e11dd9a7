package reconcile

import "github.com/yairfalse/leima/types"

// DeriveInstanceTags applies the base set unchanged.
func DeriveInstanceTags(r types.Resource, base types.Tags) types.Tags {
	return base.Clone()
}

// DeriveBucketTags adds Name = bucket name.
func DeriveBucketTags(r types.Resource, base types.Tags) types.Tags {
	return base.With(types.NameKey, r.Name)
}

// DeriveVolumeTags adds Name = the attached instance's ID, but only
// when the volume has exactly one attachment and no Name tag of its
// own. Unattached volumes, multi-attached volumes, and volumes already
// named get the base set unchanged.
func DeriveVolumeTags(r types.Resource, base types.Tags) types.Tags {
	if r.HasNameTag() || len(r.Attachments) != 1 {
		return base.Clone()
	}
	return base.With(types.NameKey, r.Attachments[0])
}

// DeriveLoadBalancerTags adds Name = load balancer name.
func DeriveLoadBalancerTags(r types.Resource, base types.Tags) types.Tags {
	return base.With(types.NameKey, r.Name)
}

// DeriveFunctionTags adds Name = function name.
func DeriveFunctionTags(r types.Resource, base types.Tags) types.Tags {
	return base.With(types.NameKey, r.Name)
}
