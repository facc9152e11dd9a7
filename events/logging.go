package events

import (
	"context"

	"github.com/yairfalse/leima/telemetry"
)

// LoggingObserver writes lifecycle events to the structured log
type LoggingObserver struct {
	logger *telemetry.Logger
}

// NewLoggingObserver creates a logging observer
func NewLoggingObserver(logger *telemetry.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) HandleEvent(ctx context.Context, e Event) error {
	log := o.logger.WithContext(ctx)

	switch e.Type {
	case RunStarted:
		log.Info().
			Str("trigger", string(e.Trigger)).
			Strs("regions", e.Regions).
			Msg("run started")

	case PhaseStarted:
		log.Info().
			Str("kind", e.Kind.String()).
			Msg("phase started")

	case PhaseCompleted:
		log.Info().
			Str("kind", e.Kind.String()).
			Int("listed", e.Listed).
			Int("tagged", e.Tagged).
			Int("skipped", e.Skipped).
			Int("failed", e.Failed).
			Dur("duration", e.Duration).
			Msg("phase completed")

	case RunCompleted:
		log.Info().
			Str("trigger", string(e.Trigger)).
			Int("listed", e.Listed).
			Int("tagged", e.Tagged).
			Int("skipped", e.Skipped).
			Int("failed", e.Failed).
			Dur("duration", e.Duration).
			Msg("run completed")

	case RunFailed:
		log.Error().
			Err(e.Err).
			Str("trigger", string(e.Trigger)).
			Msg("run failed")
	}

	return nil
}
