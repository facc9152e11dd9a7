package types

// Resource is one taggable resource as produced by a list call.
//
// ID is the identifier the kind's tag-write call addresses: instance ID,
// bucket name, volume ID, load balancer ARN, or function ARN. Region is
// stamped at list time and always names the region the resource was
// listed from.
type Resource struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	Region string `json:"region"`
	Name   string `json:"name,omitempty"`
	Tags   Tags   `json:"tags,omitempty"`

	// Attachments holds the instance IDs a volume is attached to.
	// Empty for every other kind.
	Attachments []string `json:"attachments,omitempty"`
}

// HasNameTag reports whether the resource already carries a Name tag.
func (r Resource) HasNameTag() bool {
	return r.Tags.Has(NameKey)
}

// Key returns a run-unique key for the resource.
func (r Resource) Key() string {
	return string(r.Kind) + "/" + r.Region + "/" + r.ID
}
