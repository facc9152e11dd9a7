package main

import (
	"context"
	"fmt"

	"github.com/yairfalse/leima/config"
	"github.com/yairfalse/leima/events"
	"github.com/yairfalse/leima/history"
	"github.com/yairfalse/leima/journal"
	"github.com/yairfalse/leima/policy"
	"github.com/yairfalse/leima/providers/aws"
	"github.com/yairfalse/leima/reconcile"
	"github.com/yairfalse/leima/telemetry"
)

// app bundles everything a run needs, built from one config file.
type app struct {
	cfg     *config.Config
	logger  *telemetry.Logger
	engine  *reconcile.Engine
	journal *journal.Journal
	history *history.Store
}

// buildApp wires the engine from the config file: AWS provider and
// kind descriptors, event observers, and the optional journal,
// history store, and policy engine.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := telemetry.NewLogger("leima", cfg.Log.Level)
	a := &app{cfg: cfg, logger: logger}

	observers := []events.Observer{events.NewLoggingObserver(logger)}

	metrics, err := events.NewMetricsObserver()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics observer: %w", err)
	}
	observers = append(observers, metrics)

	if cfg.Notify.WebhookURL != "" {
		observers = append(observers, events.NewWebhookObserver(cfg.Notify.WebhookURL, cfg.Notify.Timeout))
	}

	if cfg.Journal.Dir != "" {
		journalConfig := journal.DefaultConfig()
		journalConfig.RetentionDays = cfg.Journal.RetentionDays
		j, err := journal.OpenWithConfig(cfg.Journal.Dir, journalConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		a.journal = j
		observers = append(observers, events.NewJournalObserver(j))
	}

	if cfg.History.Dir != "" {
		store, err := history.NewStore(cfg.History.Dir)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		a.history = store
	}

	provider := aws.NewProvider(cfg.AccessKeyID, cfg.SecretAccessKey)
	dispatcher := events.NewDispatcher(logger, observers...)
	engine := reconcile.NewEngine(cfg, aws.Descriptors(provider), dispatcher, logger)

	if cfg.Policy.Dir != "" {
		policies := policy.NewEngine(logger)
		loader := policy.NewLoader(cfg.Policy.Dir, policies, logger)
		if err := loader.LoadAll(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to load policies: %w", err)
		}
		engine.WithPolicyEngine(policies)
	}
	if a.journal != nil {
		engine.WithJournal(a.journal)
	}

	a.engine = engine
	return a, nil
}

// Close releases the journal and history store.
func (a *app) Close() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
	if a.history != nil {
		_ = a.history.Close()
	}
}

// Run executes a single pass and records it in history when a store
// is configured. Satisfies daemon.Runner.
func (a *app) Run(ctx context.Context, trigger events.Trigger) (*reconcile.RunResult, error) {
	result, err := a.engine.Run(ctx, trigger)
	a.record(result, err)
	return result, err
}

func (a *app) record(result *reconcile.RunResult, runErr error) {
	if a.history == nil || result == nil {
		return
	}
	if _, err := a.history.RecordRun(toRunRecord(result, runErr)); err != nil {
		a.logger.Warn().Err(err).Msg("failed to record run history")
	}
}

func toRunRecord(result *reconcile.RunResult, runErr error) history.RunRecord {
	record := history.RunRecord{
		Trigger:     string(result.Trigger),
		StartedAt:   result.StartedAt,
		CompletedAt: result.CompletedAt,
		Regions:     result.Regions,
		Listed:      result.Listed(),
		Tagged:      result.Tagged(),
		Skipped:     result.Skipped(),
		Failed:      result.Failed(),
	}
	for _, phase := range result.Phases {
		record.Phases = append(record.Phases, history.PhaseRecord{
			Kind:     phase.Kind.String(),
			Listed:   phase.Listed,
			Tagged:   phase.Tagged,
			Skipped:  phase.Skipped,
			Failed:   phase.Failed,
			Duration: phase.Duration,
		})
	}
	if runErr != nil {
		record.Error = runErr.Error()
	}
	return record
}
