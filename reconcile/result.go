package reconcile

import (
	"fmt"
	"time"

	"github.com/yairfalse/leima/events"
	"github.com/yairfalse/leima/types"
)

// UnitError records one failed list or write inside a run. Unit
// failures are collected, not fatal; the run carries on and reports
// them in its summary.
type UnitError struct {
	Kind       types.Kind
	Region     string
	ResourceID string // empty for list failures
	Op         string // "list" or "write"
	Err        error
}

func (e UnitError) Error() string {
	if e.ResourceID == "" {
		return fmt.Sprintf("%s %s failed in %s: %v", e.Kind, e.Op, e.Region, e.Err)
	}
	return fmt.Sprintf("%s %s failed for %s in %s: %v", e.Kind, e.Op, e.ResourceID, e.Region, e.Err)
}

func (e UnitError) Unwrap() error {
	return e.Err
}

// PhaseResult sums one kind's pass over all regions.
type PhaseResult struct {
	Kind     types.Kind
	Listed   int
	Tagged   int
	Skipped  int
	Failed   int
	Duration time.Duration
	Errors   []UnitError
}

// RunResult sums one full reconciliation run.
type RunResult struct {
	Trigger     events.Trigger
	StartedAt   time.Time
	CompletedAt time.Time
	Regions     []string
	Phases      []PhaseResult
}

// Duration reports how long the run took.
func (r *RunResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Listed totals the resources returned by list calls across all phases.
func (r *RunResult) Listed() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Listed
	}
	return total
}

// Tagged totals the successful tag writes across all phases.
func (r *RunResult) Tagged() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Tagged
	}
	return total
}

// Skipped totals the resources exempted from tagging across all phases.
func (r *RunResult) Skipped() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Skipped
	}
	return total
}

// Failed totals the failed units across all phases.
func (r *RunResult) Failed() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Failed
	}
	return total
}

// Errors flattens every phase's unit errors in phase order.
func (r *RunResult) Errors() []UnitError {
	var errs []UnitError
	for _, p := range r.Phases {
		errs = append(errs, p.Errors...)
	}
	return errs
}
