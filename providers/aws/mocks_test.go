package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Mock service clients backed by canned response pages. List calls
// record their inputs and advance one page per call; tag calls record
// their inputs for assertions.

type mockEC2API struct {
	instancePages  []*ec2.DescribeInstancesOutput
	instanceInputs []*ec2.DescribeInstancesInput
	instanceErr    error

	volumePages  []*ec2.DescribeVolumesOutput
	volumeInputs []*ec2.DescribeVolumesInput
	volumeErr    error

	createTagsInputs []*ec2.CreateTagsInput
	createTagsErr    error
}

func (m *mockEC2API) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	m.instanceInputs = append(m.instanceInputs, params)
	if m.instanceErr != nil {
		return nil, m.instanceErr
	}
	return m.instancePages[len(m.instanceInputs)-1], nil
}

func (m *mockEC2API) DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error) {
	m.volumeInputs = append(m.volumeInputs, params)
	if m.volumeErr != nil {
		return nil, m.volumeErr
	}
	return m.volumePages[len(m.volumeInputs)-1], nil
}

func (m *mockEC2API) CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	m.createTagsInputs = append(m.createTagsInputs, params)
	if m.createTagsErr != nil {
		return nil, m.createTagsErr
	}
	return &ec2.CreateTagsOutput{}, nil
}

type mockS3API struct {
	listBucketsOutput *s3.ListBucketsOutput
	listBucketsErr    error

	locations map[string]s3types.BucketLocationConstraint

	taggings    map[string]*s3.GetBucketTaggingOutput
	taggingErrs map[string]error

	putTaggingInputs []*s3.PutBucketTaggingInput
	putTaggingErr    error
}

func (m *mockS3API) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	if m.listBucketsErr != nil {
		return nil, m.listBucketsErr
	}
	return m.listBucketsOutput, nil
}

func (m *mockS3API) GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	return &s3.GetBucketLocationOutput{
		LocationConstraint: m.locations[awssdk.ToString(params.Bucket)],
	}, nil
}

func (m *mockS3API) GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	name := awssdk.ToString(params.Bucket)
	if err := m.taggingErrs[name]; err != nil {
		return nil, err
	}
	if output, ok := m.taggings[name]; ok {
		return output, nil
	}
	return &s3.GetBucketTaggingOutput{}, nil
}

func (m *mockS3API) PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	m.putTaggingInputs = append(m.putTaggingInputs, params)
	if m.putTaggingErr != nil {
		return nil, m.putTaggingErr
	}
	return &s3.PutBucketTaggingOutput{}, nil
}

type mockELBAPI struct {
	describePages  []*elasticloadbalancingv2.DescribeLoadBalancersOutput
	describeInputs []*elasticloadbalancingv2.DescribeLoadBalancersInput
	describeErr    error

	addTagsInputs []*elasticloadbalancingv2.AddTagsInput
	addTagsErr    error
}

func (m *mockELBAPI) DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancingv2.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeLoadBalancersOutput, error) {
	m.describeInputs = append(m.describeInputs, params)
	if m.describeErr != nil {
		return nil, m.describeErr
	}
	return m.describePages[len(m.describeInputs)-1], nil
}

func (m *mockELBAPI) AddTags(ctx context.Context, params *elasticloadbalancingv2.AddTagsInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.AddTagsOutput, error) {
	m.addTagsInputs = append(m.addTagsInputs, params)
	if m.addTagsErr != nil {
		return nil, m.addTagsErr
	}
	return &elasticloadbalancingv2.AddTagsOutput{}, nil
}

type mockLambdaAPI struct {
	listPages  []*lambda.ListFunctionsOutput
	listInputs []*lambda.ListFunctionsInput
	listErr    error

	tagInputs []*lambda.TagResourceInput
	tagErr    error
}

func (m *mockLambdaAPI) ListFunctions(ctx context.Context, params *lambda.ListFunctionsInput, optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error) {
	m.listInputs = append(m.listInputs, params)
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listPages[len(m.listInputs)-1], nil
}

func (m *mockLambdaAPI) TagResource(ctx context.Context, params *lambda.TagResourceInput, optFns ...func(*lambda.Options)) (*lambda.TagResourceOutput, error) {
	m.tagInputs = append(m.tagInputs, params)
	if m.tagErr != nil {
		return nil, m.tagErr
	}
	return &lambda.TagResourceOutput{}, nil
}

type mockTaggingAPI struct {
	pages  []*resourcegroupstaggingapi.GetResourcesOutput
	inputs []*resourcegroupstaggingapi.GetResourcesInput
	err    error
}

func (m *mockTaggingAPI) GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return m.pages[len(m.inputs)-1], nil
}

// testProvider builds a provider whose clients for the region are the
// given mocks, bypassing real credential loading.
func testProvider(region string, clients *regionClients) *Provider {
	return &Provider{
		regions: map[string]*regionClients{region: clients},
	}
}
