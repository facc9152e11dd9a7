// Package events carries run lifecycle events from the reconciliation
// engine to its observers: logging, chat notification, metrics, and
// the journal are independent subscribers.
package events

import (
	"context"
	"time"

	"github.com/yairfalse/leima/telemetry"
	"github.com/yairfalse/leima/types"
)

// Trigger identifies what started a run
type Trigger string

const (
	TriggerTimer   Trigger = "timer"
	TriggerCommand Trigger = "command"
	TriggerManual  Trigger = "manual"
)

// Type identifies a lifecycle event
type Type string

const (
	RunStarted     Type = "run_started"
	PhaseStarted   Type = "phase_started"
	PhaseCompleted Type = "phase_completed"
	RunCompleted   Type = "run_completed"
	RunFailed      Type = "run_failed"
)

// Event is one lifecycle step of a reconciliation run
type Event struct {
	Type    Type
	Trigger Trigger

	// Kind is set on phase events
	Kind types.Kind

	// Regions is set on run events
	Regions []string

	// Unit counts, set on phase_completed and run-level events
	Listed  int
	Tagged  int
	Skipped int
	Failed  int

	// Duration is set on phase_completed, run_completed and run_failed
	Duration time.Duration

	// Err is set on run_failed
	Err error
}

// Observer receives lifecycle events. A failing observer never affects
// the run itself.
type Observer interface {
	HandleEvent(ctx context.Context, e Event) error
}

// Dispatcher fans out events to observers
type Dispatcher struct {
	observers []Observer
	logger    *telemetry.Logger
}

// NewDispatcher creates a dispatcher over the given observers
func NewDispatcher(logger *telemetry.Logger, observers ...Observer) *Dispatcher {
	return &Dispatcher{observers: observers, logger: logger}
}

// Register adds an observer
func (d *Dispatcher) Register(o Observer) {
	d.observers = append(d.observers, o)
}

// Publish sends an event to every observer. Observer errors are logged
// and swallowed so a broken sink cannot break reconciliation.
func (d *Dispatcher) Publish(ctx context.Context, e Event) {
	for _, o := range d.observers {
		if err := o.HandleEvent(ctx, e); err != nil {
			d.logger.WithContext(ctx).Warn().
				Err(err).
				Str("event", string(e.Type)).
				Msg("observer failed")
		}
	}
}
