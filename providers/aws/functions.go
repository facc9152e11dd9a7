package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/yairfalse/leima/types"
)

// ListFunctions returns every Lambda function in the region. The record
// ID is the function ARN, which TagResource addresses.
func (p *Provider) ListFunctions(ctx context.Context, region string) ([]types.Resource, error) {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	var resources []types.Resource
	var marker *string
	for {
		output, err := clients.lambda.ListFunctions(ctx, &lambda.ListFunctionsInput{
			Marker: marker,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list functions in %s: %w", region, err)
		}

		for _, fn := range output.Functions {
			resources = append(resources, convertFunction(fn, region))
		}

		if output.NextMarker == nil {
			break
		}
		marker = output.NextMarker
	}

	return resources, nil
}

// TagFunction applies tags to one function by ARN. TagResource merges
// with any existing tags.
func (p *Provider) TagFunction(ctx context.Context, region, arn string, tags types.Tags) error {
	clients, err := p.forRegion(ctx, region)
	if err != nil {
		return err
	}

	_, err = clients.lambda.TagResource(ctx, &lambda.TagResourceInput{
		Resource: aws.String(arn),
		Tags:     tags,
	})
	if err != nil {
		return fmt.Errorf("failed to tag function %s: %w", arn, err)
	}
	return nil
}

func convertFunction(fn lambdatypes.FunctionConfiguration, region string) types.Resource {
	return types.Resource{
		ID:     aws.ToString(fn.FunctionArn),
		Kind:   types.KindFunction,
		Region: region,
		Name:   aws.ToString(fn.FunctionName),
	}
}
