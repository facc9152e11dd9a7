package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"

	"github.com/yairfalse/leima/types"
)

// auditResourceTypes are the Resource Groups Tagging API filters
// matching the five kinds the reconciler manages.
var auditResourceTypes = []string{
	"ec2:instance",
	"ec2:volume",
	"s3",
	"elasticloadbalancing:loadbalancer",
	"lambda:function",
}

// UntaggedResource is a resource found missing one or more required
// tag keys during an audit.
type UntaggedResource struct {
	ARN         string
	Region      string
	MissingKeys []string
	Tags        types.Tags
}

// FindUntagged sweeps the region through the Resource Groups Tagging
// API and reports every managed-kind resource missing any of the
// required tag keys. Read-only; nothing is written.
func (p *Provider) FindUntagged(ctx context.Context, region string, requiredKeys []string) ([]UntaggedResource, error) {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	var untagged []UntaggedResource
	var token *string
	for {
		output, err := clients.tagging.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
			ResourceTypeFilters: auditResourceTypes,
			PaginationToken:     token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get tagged resources in %s: %w", region, err)
		}

		for _, mapping := range output.ResourceTagMappingList {
			tags := types.Tags{}
			for _, tag := range mapping.Tags {
				tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
			}

			missing := missingKeys(tags, requiredKeys)
			if len(missing) == 0 {
				continue
			}

			untagged = append(untagged, UntaggedResource{
				ARN:         aws.ToString(mapping.ResourceARN),
				Region:      region,
				MissingKeys: missing,
				Tags:        tags,
			})
		}

		if aws.ToString(output.PaginationToken) == "" {
			break
		}
		token = output.PaginationToken
	}

	return untagged, nil
}

func missingKeys(tags types.Tags, required []string) []string {
	var missing []string
	for _, key := range required {
		if !tags.Has(key) {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
