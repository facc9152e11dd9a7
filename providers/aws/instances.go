package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/leima/types"
)

// ListInstances returns every EC2 instance in the region. Reservations
// are flattened into individual instance records.
func (p *Provider) ListInstances(ctx context.Context, region string) ([]types.Resource, error) {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	var resources []types.Resource
	var nextToken *string
	for {
		output, err := clients.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances in %s: %w", region, err)
		}

		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				resources = append(resources, convertInstance(instance, region))
			}
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

// TagInstance applies tags to one instance. CreateTags merges with any
// tags already on the instance.
func (p *Provider) TagInstance(ctx context.Context, region, id string, tags types.Tags) error {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return err
	}

	_, err = clients.ec2.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{id},
		Tags:      toEC2Tags(tags),
	})
	if err != nil {
		return fmt.Errorf("failed to tag instance %s: %w", id, err)
	}
	return nil
}

func convertInstance(instance ec2types.Instance, region string) types.Resource {
	tags := fromEC2Tags(instance.Tags)
	return types.Resource{
		ID:     aws.ToString(instance.InstanceId),
		Kind:   types.KindInstance,
		Region: region,
		Name:   tags[types.NameKey],
		Tags:   tags,
	}
}
