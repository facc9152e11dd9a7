// Package aws lists and tags the five supported resource kinds through
// the AWS SDK. Each kind gets a list call that stamps every record with
// the region it was listed from, and a write call addressed by the
// kind-specific identifier.
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// EC2API is the subset of the EC2 client used for instances and volumes.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
}

// S3API is the subset of the S3 client used for buckets.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
}

// ELBAPI is the subset of the ELBv2 client used for load balancers.
type ELBAPI interface {
	DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancingv2.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeLoadBalancersOutput, error)
	AddTags(ctx context.Context, params *elasticloadbalancingv2.AddTagsInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.AddTagsOutput, error)
}

// LambdaAPI is the subset of the Lambda client used for functions.
type LambdaAPI interface {
	ListFunctions(ctx context.Context, params *lambda.ListFunctionsInput, optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
	TagResource(ctx context.Context, params *lambda.TagResourceInput, optFns ...func(*lambda.Options)) (*lambda.TagResourceOutput, error)
}

// TaggingAPI is the Resource Groups Tagging client used for audits.
type TaggingAPI interface {
	GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

// regionClients bundles the service clients for one region.
type regionClients struct {
	ec2     EC2API
	s3      S3API
	elb     ELBAPI
	lambda  LambdaAPI
	tagging TaggingAPI
}

// Provider creates and caches per-region AWS clients backed by static
// credentials. Clients are safe for concurrent use, so regions can be
// listed and tagged in parallel.
type Provider struct {
	accessKeyID     string
	secretAccessKey string

	mu      sync.Mutex
	regions map[string]*regionClients
}

// NewProvider creates a provider for the given static credentials.
// No remote call happens until a list or tag method is invoked.
func NewProvider(accessKeyID, secretAccessKey string) *Provider {
	return &Provider{
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
		regions:         make(map[string]*regionClients),
	}
}

// forRegion returns the cached clients for a region, building them on
// first use.
func (p *Provider) forRegion(ctx context.Context, region string) (*regionClients, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if clients, ok := p.regions[region]; ok {
		return clients, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.accessKeyID, p.secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for region %s: %w", region, err)
	}

	clients := &regionClients{
		ec2:     ec2.NewFromConfig(cfg),
		s3:      s3.NewFromConfig(cfg),
		elb:     elasticloadbalancingv2.NewFromConfig(cfg),
		lambda:  lambda.NewFromConfig(cfg),
		tagging: resourcegroupstaggingapi.NewFromConfig(cfg),
	}
	p.regions[region] = clients
	return clients, nil
}
