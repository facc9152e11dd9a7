// Package policy evaluates Rego exemption policies against resources.
//
// Policies live in the data.leima namespace and decide one thing: whether
// a resource is exempt from tag writes. Evaluation is advisory - a policy
// that fails to evaluate is logged and skipped, never blocks a run.
package policy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/yairfalse/leima/telemetry"
	"github.com/yairfalse/leima/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Input is the document policies evaluate against.
type Input struct {
	Resource  types.Resource    `json:"resource"`
	BaseTags  map[string]string `json:"base_tags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Decision is the outcome of evaluating all loaded policies for one resource.
type Decision struct {
	Exempt   bool     `json:"exempt"`
	Reason   string   `json:"reason,omitempty"`
	Policies []string `json:"policies,omitempty"` // names of the policies that exempted
}

// Engine holds compiled Rego policies and evaluates them per resource.
//
// Policies are loaded once at startup and the engine is read-only after
// that, so evaluation needs no locking.
type Engine struct {
	logger  *telemetry.Logger
	tracer  trace.Tracer
	queries map[string]rego.PreparedEvalQuery
}

// NewEngine creates an engine with no policies loaded. An empty engine
// exempts nothing.
func NewEngine(logger *telemetry.Logger) *Engine {
	return &Engine{
		logger:  logger,
		tracer:  otel.Tracer("policy-engine"),
		queries: make(map[string]rego.PreparedEvalQuery),
	}
}

// LoadPolicy compiles a Rego module and registers it under name.
func (e *Engine) LoadPolicy(ctx context.Context, name string, regoCode string) error {
	ctx, span := e.tracer.Start(ctx, "policy_engine.load_policy",
		trace.WithAttributes(attribute.String("policy.name", name)))
	defer span.End()

	query := rego.New(
		rego.Query("data.leima"),
		rego.Module(name, regoCode),
	)

	prepared, err := query.PrepareForEval(ctx)
	if err != nil {
		e.logger.WithContext(ctx).Error().
			Err(err).
			Str("policy_name", name).
			Msg("failed to compile policy")
		return fmt.Errorf("failed to compile policy %s: %w", name, err)
	}

	e.queries[name] = prepared

	e.logger.WithContext(ctx).Info().
		Str("policy_name", name).
		Msg("policy loaded")

	return nil
}

// Count returns the number of loaded policies.
func (e *Engine) Count() int {
	return len(e.queries)
}

// Evaluate runs all loaded policies against the input and reports whether
// any of them exempt the resource. A policy that fails to evaluate is
// skipped with a warning; it never exempts and never aborts the run.
func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	ctx, span := e.tracer.Start(ctx, "policy_engine.evaluate",
		trace.WithAttributes(
			attribute.String("resource.id", input.Resource.ID),
			attribute.String("resource.kind", input.Resource.Kind.String())))
	defer span.End()

	var decision Decision

	for _, name := range e.policyNames() {
		exempt, reason := e.evaluatePolicy(ctx, name, input)
		if !exempt {
			continue
		}
		decision.Exempt = true
		decision.Policies = append(decision.Policies, name)
		if decision.Reason == "" {
			decision.Reason = reason
		}
	}

	if decision.Exempt {
		if decision.Reason == "" {
			decision.Reason = fmt.Sprintf("exempted by policy %s", decision.Policies[0])
		}
		e.logger.WithContext(ctx).Debug().
			Str("resource_id", input.Resource.ID).
			Str("kind", input.Resource.Kind.String()).
			Strs("policies", decision.Policies).
			Str("reason", decision.Reason).
			Msg("resource exempt from tagging")
	}

	return decision, nil
}

// evaluatePolicy runs one prepared query and extracts its verdict.
func (e *Engine) evaluatePolicy(ctx context.Context, name string, input Input) (bool, string) {
	query := e.queries[name]

	results, err := query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		e.logger.WithContext(ctx).Warn().
			Err(err).
			Str("policy_name", name).
			Str("resource_id", input.Resource.ID).
			Msg("policy evaluation failed, skipping")
		return false, ""
	}

	for _, result := range results {
		for _, expr := range result.Expressions {
			if exempt, reason := parseExpressionValue(expr.Value); exempt {
				return true, reason
			}
		}
	}

	return false, ""
}

// parseExpressionValue reads the exempt/reason rules out of the package
// document returned by querying data.leima. OPA hands back untyped JSON,
// so the shape is only known at runtime.
func parseExpressionValue(value interface{}) (bool, string) {
	doc, ok := value.(map[string]interface{})
	if !ok {
		return false, ""
	}

	exempt, ok := doc["exempt"].(bool)
	if !ok || !exempt {
		return false, ""
	}

	reason, _ := doc["reason"].(string)
	return true, reason
}

// policyNames returns loaded policy names sorted for deterministic
// evaluation order.
func (e *Engine) policyNames() []string {
	names := make([]string, 0, len(e.queries))
	for name := range e.queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
