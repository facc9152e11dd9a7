package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/leima/events"
	"github.com/yairfalse/leima/reconcile"
	"github.com/yairfalse/leima/types"
)

func TestToRunRecord(t *testing.T) {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	result := &reconcile.RunResult{
		Trigger:     events.TriggerCommand,
		StartedAt:   started,
		CompletedAt: started.Add(90 * time.Second),
		Regions:     []string{"us-east-1", "eu-west-1"},
		Phases: []reconcile.PhaseResult{
			{Kind: types.KindInstance, Listed: 4, Tagged: 3, Failed: 1, Duration: time.Second},
			{Kind: types.KindBucket, Listed: 2, Tagged: 1, Skipped: 1, Duration: 2 * time.Second},
		},
	}

	record := toRunRecord(result, nil)

	assert.Equal(t, "command", record.Trigger)
	assert.Equal(t, started, record.StartedAt)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, record.Regions)
	assert.Equal(t, 6, record.Listed)
	assert.Equal(t, 4, record.Tagged)
	assert.Equal(t, 1, record.Skipped)
	assert.Equal(t, 1, record.Failed)
	assert.Empty(t, record.Error)

	require.Len(t, record.Phases, 2)
	assert.Equal(t, "instance", record.Phases[0].Kind)
	assert.Equal(t, 3, record.Phases[0].Tagged)
	assert.Equal(t, "bucket", record.Phases[1].Kind)
	assert.Equal(t, 1, record.Phases[1].Skipped)
}

func TestToRunRecord_Error(t *testing.T) {
	result := &reconcile.RunResult{Trigger: events.TriggerTimer}

	record := toRunRecord(result, errors.New("run canceled: context canceled"))

	assert.Equal(t, "timer", record.Trigger)
	assert.Equal(t, "run canceled: context canceled", record.Error)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"run", "daemon", "validate", "audit", "history", "journal"} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}
