package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/leima/types"
)

// ListVolumes returns every EBS volume in the region, including the
// instance IDs it is attached to and its current tags. Both feed the
// volume's Name derivation.
func (p *Provider) ListVolumes(ctx context.Context, region string) ([]types.Resource, error) {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	var resources []types.Resource
	var nextToken *string
	for {
		output, err := clients.ec2.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe volumes in %s: %w", region, err)
		}

		for _, volume := range output.Volumes {
			resources = append(resources, convertVolume(volume, region))
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

// TagVolume applies tags to one volume.
func (p *Provider) TagVolume(ctx context.Context, region, id string, tags types.Tags) error {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return err
	}

	_, err = clients.ec2.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{id},
		Tags:      toEC2Tags(tags),
	})
	if err != nil {
		return fmt.Errorf("failed to tag volume %s: %w", id, err)
	}
	return nil
}

func convertVolume(volume ec2types.Volume, region string) types.Resource {
	tags := fromEC2Tags(volume.Tags)
	return types.Resource{
		ID:          aws.ToString(volume.VolumeId),
		Kind:        types.KindVolume,
		Region:      region,
		Name:        tags[types.NameKey],
		Tags:        tags,
		Attachments: volumeAttachments(volume.Attachments),
	}
}

// volumeAttachments extracts the attached instance IDs.
func volumeAttachments(attachments []ec2types.VolumeAttachment) []string {
	var instances []string
	for _, att := range attachments {
		instances = append(instances, aws.ToString(att.InstanceId))
	}
	return instances
}
