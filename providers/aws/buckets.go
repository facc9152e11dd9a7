package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/yairfalse/leima/types"
)

// ListBuckets returns the S3 buckets homed in the region. ListBuckets is
// a global call, so each bucket's location is resolved and only buckets
// actually living in the requested region are returned. This keeps a
// bucket from showing up once per configured region.
func (p *Provider) ListBuckets(ctx context.Context, region string) ([]types.Resource, error) {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	output, err := clients.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	var resources []types.Resource
	for _, bucket := range output.Buckets {
		name := aws.ToString(bucket.Name)

		location, err := clients.s3.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
			Bucket: bucket.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get location for bucket %s: %w", name, err)
		}
		if bucketRegion(location.LocationConstraint) != region {
			continue
		}

		tags, err := p.bucketTags(ctx, clients, name)
		if err != nil {
			return nil, err
		}

		resources = append(resources, types.Resource{
			ID:     name,
			Kind:   types.KindBucket,
			Region: region,
			Name:   name,
			Tags:   tags,
		})
	}

	return resources, nil
}

// TagBucket replaces the bucket's tag set. PutBucketTagging overwrites
// all existing tags, it does not merge.
func (p *Provider) TagBucket(ctx context.Context, region, name string, tags types.Tags) error {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return err
	}

	_, err = clients.s3.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket: aws.String(name),
		Tagging: &s3types.Tagging{
			TagSet: toS3Tags(tags),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to tag bucket %s: %w", name, err)
	}
	return nil
}

// bucketTags fetches a bucket's current tags. A bucket with no tag set
// at all answers with NoSuchTagSet, which just means empty.
func (p *Provider) bucketTags(ctx context.Context, clients *regionClients, name string) (types.Tags, error) {
	output, err := clients.s3.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchTagSet" {
			return types.Tags{}, nil
		}
		return nil, fmt.Errorf("failed to get tags for bucket %s: %w", name, err)
	}
	return fromS3Tags(output.TagSet), nil
}

// bucketRegion normalizes a location constraint to a region name. The
// S3 API reports buckets in us-east-1 with an empty constraint.
func bucketRegion(constraint s3types.BucketLocationConstraint) string {
	if constraint == "" {
		return "us-east-1"
	}
	return string(constraint)
}
