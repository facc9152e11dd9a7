package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/leima/config"
	"github.com/yairfalse/leima/events"
	"github.com/yairfalse/leima/journal"
	"github.com/yairfalse/leima/policy"
	"github.com/yairfalse/leima/telemetry"
	"github.com/yairfalse/leima/types"
)

// Engine runs reconciliation passes over the configured regions.
//
// Per phase it fans out one goroutine per region, joins them, and moves
// to the next kind. The base tag set is read-only for the whole run, so
// the fan-out needs no synchronization beyond collecting results.
type Engine struct {
	cfg        *config.Config
	kinds      []Descriptor
	dispatcher *events.Dispatcher
	policies   *policy.Engine
	journal    *journal.Journal
	logger     *telemetry.Logger
	tracer     trace.Tracer
}

// NewEngine creates an engine over the given kind descriptors. The
// descriptors run in slice order, one phase each.
func NewEngine(cfg *config.Config, kinds []Descriptor, dispatcher *events.Dispatcher, logger *telemetry.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		kinds:      kinds,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     otel.Tracer("reconcile-engine"),
	}
}

// WithPolicyEngine wires in exemption policies. Without one, nothing is
// exempt.
func (e *Engine) WithPolicyEngine(policies *policy.Engine) *Engine {
	e.policies = policies
	return e
}

// WithJournal wires in the audit journal. Without one, per-resource
// outcomes are only logged.
func (e *Engine) WithJournal(j *journal.Journal) *Engine {
	e.journal = j
	return e
}

// Run executes one full reconciliation pass.
//
// Configuration is validated before anything else; a missing value
// aborts the run with zero remote calls. Unit failures inside a phase
// are collected into the result rather than aborting the run, so Run
// returns an error only for missing configuration or cancellation.
func (e *Engine) Run(ctx context.Context, trigger events.Trigger) (*RunResult, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, e.abortNotConfigured(ctx, trigger, err)
	}

	ctx, runSpan := telemetry.StartRun(ctx, e.tracer, string(trigger), len(e.cfg.Regions))
	defer runSpan.End()

	result := &RunResult{
		Trigger:   trigger,
		StartedAt: time.Now(),
		Regions:   append([]string(nil), e.cfg.Regions...),
	}

	e.dispatcher.Publish(ctx, events.Event{
		Type:    events.RunStarted,
		Trigger: trigger,
		Regions: result.Regions,
	})

	base := e.cfg.BaseTags()
	for _, d := range e.kinds {
		if ctx.Err() != nil {
			break
		}
		result.Phases = append(result.Phases, e.runPhase(ctx, d, base, result.Regions, trigger))
	}

	result.CompletedAt = time.Now()
	runSpan.SetCounts(int64(result.Listed()), int64(result.Tagged()),
		int64(result.Skipped()), int64(result.Failed()))

	if err := ctx.Err(); err != nil {
		e.dispatcher.Publish(ctx, events.Event{
			Type:     events.RunFailed,
			Trigger:  trigger,
			Duration: result.Duration(),
			Err:      err,
		})
		return result, fmt.Errorf("run canceled: %w", err)
	}

	e.dispatcher.Publish(ctx, events.Event{
		Type:     events.RunCompleted,
		Trigger:  trigger,
		Listed:   result.Listed(),
		Tagged:   result.Tagged(),
		Skipped:  result.Skipped(),
		Failed:   result.Failed(),
		Duration: result.Duration(),
	})

	return result, nil
}

// abortNotConfigured logs the offending key and reports the failed run.
// No remote call has happened at this point.
func (e *Engine) abortNotConfigured(ctx context.Context, trigger events.Trigger, err error) error {
	logEvent := e.logger.WithContext(ctx).Error().Err(err)
	var ncErr *config.NotConfiguredError
	if errors.As(err, &ncErr) {
		logEvent = logEvent.Str("config_key", ncErr.Key)
	}
	logEvent.Msg("run aborted, required configuration missing")

	e.dispatcher.Publish(ctx, events.Event{
		Type:    events.RunFailed,
		Trigger: trigger,
		Err:     err,
	})
	return err
}

// runPhase reconciles one kind across all regions in parallel.
func (e *Engine) runPhase(ctx context.Context, d Descriptor, base types.Tags, regions []string, trigger events.Trigger) PhaseResult {
	ctx, span := telemetry.StartPhase(ctx, e.tracer, d.Kind.String())
	started := time.Now()

	e.dispatcher.Publish(ctx, events.Event{
		Type:    events.PhaseStarted,
		Trigger: trigger,
		Kind:    d.Kind,
	})

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = PhaseResult{Kind: d.Kind}
	)

	for _, region := range regions {
		wg.Add(1)
		go func(region string) {
			defer wg.Done()
			outcome := e.runRegion(ctx, d, base, region)
			mu.Lock()
			result.Listed += outcome.Listed
			result.Tagged += outcome.Tagged
			result.Skipped += outcome.Skipped
			result.Failed += outcome.Failed
			result.Errors = append(result.Errors, outcome.Errors...)
			mu.Unlock()
		}(region)
	}
	wg.Wait()

	result.Duration = time.Since(started)
	telemetry.EndPhase(span, int64(result.Listed), int64(result.Tagged),
		int64(result.Skipped), int64(result.Failed))

	e.dispatcher.Publish(ctx, events.Event{
		Type:     events.PhaseCompleted,
		Trigger:  trigger,
		Kind:     d.Kind,
		Listed:   result.Listed,
		Tagged:   result.Tagged,
		Skipped:  result.Skipped,
		Failed:   result.Failed,
		Duration: result.Duration,
	})

	return result
}

// regionOutcome is one region's slice of a phase.
type regionOutcome struct {
	Listed  int
	Tagged  int
	Skipped int
	Failed  int
	Errors  []UnitError
}

// runRegion lists one kind in one region and reconciles each record.
// Cancellation stops new calls between resources; a list failure ends
// the region with a collected error.
func (e *Engine) runRegion(ctx context.Context, d Descriptor, base types.Tags, region string) regionOutcome {
	ctx, span := telemetry.StartRegion(ctx, e.tracer, d.Kind.String(), region)

	var out regionOutcome
	defer func() {
		telemetry.EndRegion(span, int64(out.Listed), int64(out.Tagged))
	}()

	resources, err := d.List(ctx, region)
	if err != nil {
		out.Failed++
		out.Errors = append(out.Errors, UnitError{Kind: d.Kind, Region: region, Op: "list", Err: err})
		telemetry.RecordError(span, err.Error(), "list")
		e.logger.WithContext(ctx).Error().
			Err(err).
			Str("kind", d.Kind.String()).
			Str("region", region).
			Msg("list failed")
		return out
	}
	out.Listed = len(resources)

	for _, resource := range resources {
		if ctx.Err() != nil {
			return out
		}
		e.reconcileResource(ctx, span, d, base, resource, &out)
	}

	return out
}

// reconcileResource applies one resource's derived tags, honoring
// exemption policies and collecting write failures.
func (e *Engine) reconcileResource(ctx context.Context, span trace.Span, d Descriptor, base types.Tags, resource types.Resource, out *regionOutcome) {
	kind := d.Kind.String()

	if decision := e.exemption(ctx, resource, base); decision.Exempt {
		out.Skipped++
		telemetry.RecordTagSkippedEvent(span, kind, resource.Region, resource.ID, decision.Reason)
		e.logger.LogTagSkip(ctx, kind, resource.Region, resource.ID, decision.Reason)
		e.journalSkip(ctx, resource, decision.Reason)
		return
	}

	tags := d.Derive(resource, base)
	id := d.Identify(resource)

	if err := d.Write(ctx, resource.Region, id, tags); err != nil {
		out.Failed++
		out.Errors = append(out.Errors, UnitError{Kind: d.Kind, Region: resource.Region, ResourceID: id, Op: "write", Err: err})
		telemetry.RecordError(span, err.Error(), "write")
		e.logger.LogTagFailure(ctx, kind, resource.Region, id, "write", err)
		e.journalFailure(ctx, resource, id, tags, err)
		return
	}

	out.Tagged++
	telemetry.RecordTagAppliedEvent(span, kind, resource.Region, id, len(tags))
	e.logger.LogTagWrite(ctx, kind, resource.Region, id, len(tags))
	e.journalWrite(ctx, resource, id, tags)
}

// exemption evaluates the loaded policies for one resource. Evaluation
// trouble is advisory: it logs and tags anyway.
func (e *Engine) exemption(ctx context.Context, resource types.Resource, base types.Tags) policy.Decision {
	if e.policies == nil || e.policies.Count() == 0 {
		return policy.Decision{}
	}

	decision, err := e.policies.Evaluate(ctx, policy.Input{
		Resource:  resource,
		BaseTags:  base,
		Timestamp: time.Now(),
	})
	if err != nil {
		e.logger.WithContext(ctx).Warn().
			Err(err).
			Str("resource_id", resource.ID).
			Msg("policy evaluation failed, tagging anyway")
		return policy.Decision{}
	}
	return decision
}

// tagEntry is the journal payload for per-resource outcomes.
type tagEntry struct {
	Kind   string     `json:"kind"`
	Region string     `json:"region"`
	Tags   types.Tags `json:"tags,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

func (e *Engine) journalWrite(ctx context.Context, resource types.Resource, id string, tags types.Tags) {
	if e.journal == nil {
		return
	}
	entry := tagEntry{Kind: resource.Kind.String(), Region: resource.Region, Tags: tags}
	if err := e.journal.Append(journal.EntryTagApplied, id, entry); err != nil {
		e.logger.WithContext(ctx).Warn().Err(err).Msg("journal write failed")
	}
}

func (e *Engine) journalSkip(ctx context.Context, resource types.Resource, reason string) {
	if e.journal == nil {
		return
	}
	entry := tagEntry{Kind: resource.Kind.String(), Region: resource.Region, Reason: reason}
	if err := e.journal.Append(journal.EntryTagSkipped, resource.ID, entry); err != nil {
		e.logger.WithContext(ctx).Warn().Err(err).Msg("journal write failed")
	}
}

func (e *Engine) journalFailure(ctx context.Context, resource types.Resource, id string, tags types.Tags, failure error) {
	if e.journal == nil {
		return
	}
	entry := tagEntry{Kind: resource.Kind.String(), Region: resource.Region, Tags: tags}
	if err := e.journal.AppendError(journal.EntryTagFailed, id, entry, failure); err != nil {
		e.logger.WithContext(ctx).Warn().Err(err).Msg("journal write failed")
	}
}
