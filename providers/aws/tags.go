package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/yairfalse/leima/types"
)

// fromEC2Tags converts EC2 wire tags to a tag map.
func fromEC2Tags(tags []ec2types.Tag) types.Tags {
	result := types.Tags{}
	for _, tag := range tags {
		result[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return result
}

// fromS3Tags converts an S3 tag set to a tag map.
func fromS3Tags(tags []s3types.Tag) types.Tags {
	result := types.Tags{}
	for _, tag := range tags {
		result[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return result
}

// toEC2Tags converts a tag map to EC2 wire tags in sorted key order.
func toEC2Tags(tags types.Tags) []ec2types.Tag {
	wire := make([]ec2types.Tag, 0, len(tags))
	for _, key := range tags.SortedKeys() {
		wire = append(wire, ec2types.Tag{
			Key:   aws.String(key),
			Value: aws.String(tags[key]),
		})
	}
	return wire
}

// toS3Tags converts a tag map to an S3 tag set in sorted key order.
func toS3Tags(tags types.Tags) []s3types.Tag {
	wire := make([]s3types.Tag, 0, len(tags))
	for _, key := range tags.SortedKeys() {
		wire = append(wire, s3types.Tag{
			Key:   aws.String(key),
			Value: aws.String(tags[key]),
		})
	}
	return wire
}

// toELBTags converts a tag map to ELBv2 wire tags in sorted key order.
func toELBTags(tags types.Tags) []elbv2types.Tag {
	wire := make([]elbv2types.Tag, 0, len(tags))
	for _, key := range tags.SortedKeys() {
		wire = append(wire, elbv2types.Tag{
			Key:   aws.String(key),
			Value: aws.String(tags[key]),
		})
	}
	return wire
}
