package aws

import (
	"context"
	"errors"
	"reflect"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/leima/types"
)

func TestListInstances_FlattensReservations(t *testing.T) {
	mock := &mockEC2API{
		instancePages: []*ec2.DescribeInstancesOutput{
			{
				Reservations: []ec2types.Reservation{
					{
						Instances: []ec2types.Instance{
							{
								InstanceId: awssdk.String("i-web1"),
								Tags: []ec2types.Tag{
									{Key: awssdk.String("Name"), Value: awssdk.String("web-server")},
									{Key: awssdk.String("team"), Value: awssdk.String("platform")},
								},
							},
							{InstanceId: awssdk.String("i-web2")},
						},
					},
					{
						Instances: []ec2types.Instance{
							{InstanceId: awssdk.String("i-db1")},
						},
					},
				},
			},
		},
	}
	provider := testProvider("us-east-1", &regionClients{ec2: mock})

	resources, err := provider.ListInstances(context.Background(), "us-east-1")
	if err != nil {
		t.Fatalf("ListInstances() error = %v", err)
	}

	if len(resources) != 3 {
		t.Fatalf("got %d instances, want 3", len(resources))
	}

	first := resources[0]
	if first.ID != "i-web1" || first.Kind != types.KindInstance || first.Region != "us-east-1" {
		t.Errorf("instance = %+v, want i-web1 instance in us-east-1", first)
	}
	if first.Name != "web-server" {
		t.Errorf("Name = %q, want web-server", first.Name)
	}
	wantTags := types.Tags{"Name": "web-server", "team": "platform"}
	if !reflect.DeepEqual(first.Tags, wantTags) {
		t.Errorf("Tags = %v, want %v", first.Tags, wantTags)
	}

	for _, r := range resources {
		if r.Region != "us-east-1" {
			t.Errorf("instance %s stamped with region %q, want us-east-1", r.ID, r.Region)
		}
	}
}

func TestListInstances_Paginates(t *testing.T) {
	mock := &mockEC2API{
		instancePages: []*ec2.DescribeInstancesOutput{
			{
				Reservations: []ec2types.Reservation{
					{Instances: []ec2types.Instance{{InstanceId: awssdk.String("i-1")}}},
				},
				NextToken: awssdk.String("page-2"),
			},
			{
				Reservations: []ec2types.Reservation{
					{Instances: []ec2types.Instance{{InstanceId: awssdk.String("i-2")}}},
				},
			},
		},
	}
	provider := testProvider("us-east-1", &regionClients{ec2: mock})

	resources, err := provider.ListInstances(context.Background(), "us-east-1")
	if err != nil {
		t.Fatalf("ListInstances() error = %v", err)
	}

	if len(resources) != 2 {
		t.Errorf("got %d instances across pages, want 2", len(resources))
	}
	if len(mock.instanceInputs) != 2 {
		t.Fatalf("DescribeInstances called %d times, want 2", len(mock.instanceInputs))
	}
	if got := awssdk.ToString(mock.instanceInputs[1].NextToken); got != "page-2" {
		t.Errorf("second call token = %q, want page-2", got)
	}
}

func TestListInstances_Error(t *testing.T) {
	mock := &mockEC2API{instanceErr: errors.New("UnauthorizedOperation")}
	provider := testProvider("us-east-1", &regionClients{ec2: mock})

	if _, err := provider.ListInstances(context.Background(), "us-east-1"); err == nil {
		t.Fatal("ListInstances() expected error")
	}
}

func TestTagInstance(t *testing.T) {
	mock := &mockEC2API{}
	provider := testProvider("us-east-1", &regionClients{ec2: mock})

	tags := types.Tags{"env": "prod", "Name": "web-server"}
	if err := provider.TagInstance(context.Background(), "us-east-1", "i-123456", tags); err != nil {
		t.Fatalf("TagInstance() error = %v", err)
	}

	if len(mock.createTagsInputs) != 1 {
		t.Fatalf("CreateTags called %d times, want 1", len(mock.createTagsInputs))
	}
	input := mock.createTagsInputs[0]
	if !reflect.DeepEqual(input.Resources, []string{"i-123456"}) {
		t.Errorf("Resources = %v, want [i-123456]", input.Resources)
	}

	want := []ec2types.Tag{
		{Key: awssdk.String("Name"), Value: awssdk.String("web-server")},
		{Key: awssdk.String("env"), Value: awssdk.String("prod")},
	}
	if !reflect.DeepEqual(input.Tags, want) {
		t.Errorf("Tags = %v, want sorted %v", input.Tags, want)
	}
}

func TestTagInstance_Error(t *testing.T) {
	mock := &mockEC2API{createTagsErr: errors.New("RequestLimitExceeded")}
	provider := testProvider("us-east-1", &regionClients{ec2: mock})

	err := provider.TagInstance(context.Background(), "us-east-1", "i-123456", types.Tags{"env": "prod"})
	if err == nil {
		t.Fatal("TagInstance() expected error")
	}
}
