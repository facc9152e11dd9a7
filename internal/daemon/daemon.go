// Package daemon runs the reconciler on a schedule and serves the
// control endpoints: Prometheus metrics, health checks, and the chat
// command webhook that triggers a run on demand.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/oklog/run"

	"github.com/yairfalse/leima/events"
	"github.com/yairfalse/leima/reconcile"
	"github.com/yairfalse/leima/telemetry"
)

// Runner executes one reconciliation pass. Implemented by the
// reconcile engine; narrow so the daemon is testable without AWS.
type Runner interface {
	Run(ctx context.Context, trigger events.Trigger) (*reconcile.RunResult, error)
}

// Config holds the daemon's schedule and listen address.
type Config struct {
	Interval  time.Duration
	Listen    string
	Immediate bool
}

// Daemon owns the timer loop and the HTTP control server. Only one
// run is in flight at a time; a trigger arriving during a run is
// rejected, not queued.
type Daemon struct {
	cfg    Config
	runner Runner
	logger *telemetry.Logger

	ready atomic.Bool
	busy  atomic.Bool
}

// New creates a daemon around a runner.
func New(cfg Config, runner Runner, logger *telemetry.Logger) *Daemon {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Daemon{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

// Run starts the timer loop and the control server and blocks until a
// signal arrives, the context is canceled, or an actor fails.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listener, err := net.Listen("tcp", d.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.cfg.Listen, err)
	}

	server := &http.Server{
		Handler:           d.routes(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var group run.Group

	group.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	tickCtx, tickCancel := context.WithCancel(ctx)
	group.Add(func() error {
		return d.tick(tickCtx)
	}, func(error) {
		tickCancel()
	})

	group.Add(func() error {
		d.logger.Info().
			Str("listen", listener.Addr().String()).
			Dur("interval", d.cfg.Interval).
			Msg("daemon started")
		return server.Serve(listener)
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	})

	d.ready.Store(true)
	err = group.Run()
	d.ready.Store(false)

	var sig run.SignalError
	switch {
	case errors.As(err, &sig):
		d.logger.Info().Str("signal", sig.Signal.String()).Msg("shutting down")
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	}
	return err
}

// tick fires a timer-triggered run on every interval.
func (d *Daemon) tick(ctx context.Context) error {
	if d.cfg.Immediate {
		d.timerRun(ctx)
	}

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.timerRun(ctx)
		}
	}
}

func (d *Daemon) timerRun(ctx context.Context) {
	if !d.busy.CompareAndSwap(false, true) {
		d.logger.Warn().Msg("previous run still in flight, skipping scheduled run")
		return
	}
	defer d.busy.Store(false)

	if _, err := d.runner.Run(ctx, events.TriggerTimer); err != nil {
		d.logger.Error().Err(err).Msg("scheduled run failed")
	}
}
