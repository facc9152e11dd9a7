package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsClone(t *testing.T) {
	base := Tags{"env": "prod", "team": "platform"}

	clone := base.Clone()
	clone["Name"] = "web-1"

	assert.False(t, base.Has("Name"), "clone write must not reach the original")
	assert.Equal(t, "prod", base["env"])
	assert.Len(t, clone, 3)
}

func TestTagsCloneNil(t *testing.T) {
	var base Tags

	clone := base.Clone()
	require.NotNil(t, clone)

	clone["env"] = "prod"
	assert.Equal(t, "prod", clone["env"])
}

func TestTagsWith(t *testing.T) {
	base := Tags{"env": "prod"}

	derived := base.With(NameKey, "logs-a")

	assert.Equal(t, Tags{"env": "prod", "Name": "logs-a"}, derived)
	assert.Equal(t, Tags{"env": "prod"}, base, "With must not mutate the receiver")
}

func TestTagsContains(t *testing.T) {
	tests := []struct {
		name  string
		have  Tags
		want  Tags
		holds bool
	}{
		{"superset", Tags{"env": "prod", "Name": "x"}, Tags{"env": "prod"}, true},
		{"equal", Tags{"env": "prod"}, Tags{"env": "prod"}, true},
		{"missing key", Tags{"env": "prod"}, Tags{"team": "core"}, false},
		{"wrong value", Tags{"env": "dev"}, Tags{"env": "prod"}, false},
		{"empty want", Tags{"env": "prod"}, Tags{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.holds, tt.have.Contains(tt.want))
		})
	}
}

func TestTagsSortedKeys(t *testing.T) {
	tags := Tags{"zone": "a", "env": "prod", "Name": "x"}

	assert.Equal(t, []string{"Name", "env", "zone"}, tags.SortedKeys())
}

func TestResourceHasNameTag(t *testing.T) {
	tagged := Resource{ID: "vol-1", Kind: KindVolume, Tags: Tags{"Name": "data"}}
	bare := Resource{ID: "vol-2", Kind: KindVolume}

	assert.True(t, tagged.HasNameTag())
	assert.False(t, bare.HasNameTag())
}

func TestKindOrder(t *testing.T) {
	order := KindOrder()

	require.Len(t, order, 5)
	assert.Equal(t, KindInstance, order[0])
	assert.Equal(t, KindBucket, order[1])
	assert.Equal(t, KindVolume, order[2])
	assert.Equal(t, KindLoadBalancer, order[3])
	assert.Equal(t, KindFunction, order[4])

	for _, k := range order {
		assert.True(t, k.Valid(), "kind %s", k)
	}
	assert.False(t, Kind("queue").Valid())
}
