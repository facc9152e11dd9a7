package aws

import (
	"context"
	"errors"
	"reflect"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
)

func taggedResource(arn string, tags map[string]string) taggingtypes.ResourceTagMapping {
	mapping := taggingtypes.ResourceTagMapping{ResourceARN: awssdk.String(arn)}
	for key, value := range tags {
		mapping.Tags = append(mapping.Tags, taggingtypes.Tag{
			Key:   awssdk.String(key),
			Value: awssdk.String(value),
		})
	}
	return mapping
}

func TestFindUntagged(t *testing.T) {
	mock := &mockTaggingAPI{
		pages: []*resourcegroupstaggingapi.GetResourcesOutput{
			{
				ResourceTagMappingList: []taggingtypes.ResourceTagMapping{
					taggedResource("arn:aws:ec2:us-east-1:1:instance/i-bare", nil),
					taggedResource("arn:aws:s3:::logs-a", map[string]string{"env": "prod", "team": "data"}),
				},
				PaginationToken: awssdk.String("next"),
			},
			{
				ResourceTagMappingList: []taggingtypes.ResourceTagMapping{
					taggedResource("arn:aws:ec2:us-east-1:1:volume/vol-half", map[string]string{"team": "data"}),
				},
				PaginationToken: awssdk.String(""),
			},
		},
	}
	provider := testProvider("us-east-1", &regionClients{tagging: mock})

	untagged, err := provider.FindUntagged(context.Background(), "us-east-1", []string{"team", "env"})
	if err != nil {
		t.Fatalf("FindUntagged() error = %v", err)
	}

	if len(untagged) != 2 {
		t.Fatalf("got %d untagged resources, want 2", len(untagged))
	}

	bare := untagged[0]
	if bare.ARN != "arn:aws:ec2:us-east-1:1:instance/i-bare" || bare.Region != "us-east-1" {
		t.Errorf("first result = %+v, want the bare instance in us-east-1", bare)
	}
	if !reflect.DeepEqual(bare.MissingKeys, []string{"env", "team"}) {
		t.Errorf("missing keys = %v, want sorted [env team]", bare.MissingKeys)
	}

	half := untagged[1]
	if !reflect.DeepEqual(half.MissingKeys, []string{"env"}) {
		t.Errorf("missing keys = %v, want [env]", half.MissingKeys)
	}
	if half.Tags["team"] != "data" {
		t.Errorf("existing tags = %v, want team=data preserved", half.Tags)
	}

	if len(mock.inputs) != 2 {
		t.Fatalf("GetResources called %d times, want 2", len(mock.inputs))
	}
	if got := awssdk.ToString(mock.inputs[1].PaginationToken); got != "next" {
		t.Errorf("second call token = %q, want next", got)
	}
	if !reflect.DeepEqual(mock.inputs[0].ResourceTypeFilters, auditResourceTypes) {
		t.Errorf("type filters = %v, want the five managed kinds", mock.inputs[0].ResourceTypeFilters)
	}
}

func TestFindUntagged_Error(t *testing.T) {
	mock := &mockTaggingAPI{err: errors.New("ThrottledException")}
	provider := testProvider("us-east-1", &regionClients{tagging: mock})

	if _, err := provider.FindUntagged(context.Background(), "us-east-1", []string{"env"}); err == nil {
		t.Fatal("FindUntagged() expected error")
	}
}
