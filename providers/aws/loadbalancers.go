package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/yairfalse/leima/types"
)

// ListLoadBalancers returns every load balancer in the region. The
// record ID is the ARN, which AddTags addresses; the human name lands
// in the Name field.
func (p *Provider) ListLoadBalancers(ctx context.Context, region string) ([]types.Resource, error) {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	var resources []types.Resource
	var marker *string
	for {
		output, err := clients.elb.DescribeLoadBalancers(ctx, &elasticloadbalancingv2.DescribeLoadBalancersInput{
			Marker: marker,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe load balancers in %s: %w", region, err)
		}

		for _, lb := range output.LoadBalancers {
			resources = append(resources, convertLoadBalancer(lb, region))
		}

		if output.NextMarker == nil {
			break
		}
		marker = output.NextMarker
	}

	return resources, nil
}

// TagLoadBalancer applies tags to one load balancer by ARN. AddTags
// merges with any existing tags.
func (p *Provider) TagLoadBalancer(ctx context.Context, region, arn string, tags types.Tags) error {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return err
	}

	_, err = clients.elb.AddTags(ctx, &elasticloadbalancingv2.AddTagsInput{
		ResourceArns: []string{arn},
		Tags:         toELBTags(tags),
	})
	if err != nil {
		return fmt.Errorf("failed to tag load balancer %s: %w", arn, err)
	}
	return nil
}

func convertLoadBalancer(lb elbv2types.LoadBalancer, region string) types.Resource {
	return types.Resource{
		ID:     aws.ToString(lb.LoadBalancerArn),
		Kind:   types.KindLoadBalancer,
		Region: region,
		Name:   aws.ToString(lb.LoadBalancerName),
	}
}
