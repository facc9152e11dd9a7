package events

import (
	"context"

	"github.com/yairfalse/leima/journal"
)

// JournalObserver records run and phase lifecycle entries. Per-resource
// entries are written by the engine directly.
type JournalObserver struct {
	journal *journal.Journal
}

// NewJournalObserver creates a journal observer
func NewJournalObserver(j *journal.Journal) *JournalObserver {
	return &JournalObserver{journal: j}
}

// entryData is the journaled snapshot of an event
type entryData struct {
	Trigger    string   `json:"trigger,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Regions    []string `json:"regions,omitempty"`
	Listed     int      `json:"listed,omitempty"`
	Tagged     int      `json:"tagged,omitempty"`
	Skipped    int      `json:"skipped,omitempty"`
	Failed     int      `json:"failed,omitempty"`
	DurationMS int64    `json:"duration_ms,omitempty"`
}

func (o *JournalObserver) HandleEvent(ctx context.Context, e Event) error {
	data := entryData{
		Trigger:    string(e.Trigger),
		Kind:       e.Kind.String(),
		Regions:    e.Regions,
		Listed:     e.Listed,
		Tagged:     e.Tagged,
		Skipped:    e.Skipped,
		Failed:     e.Failed,
		DurationMS: e.Duration.Milliseconds(),
	}

	switch e.Type {
	case RunStarted:
		return o.journal.Append(journal.EntryRunStarted, "", data)
	case PhaseStarted:
		return o.journal.Append(journal.EntryPhaseStarted, "", data)
	case PhaseCompleted:
		return o.journal.Append(journal.EntryPhaseCompleted, "", data)
	case RunCompleted:
		return o.journal.Append(journal.EntryRunCompleted, "", data)
	case RunFailed:
		return o.journal.AppendError(journal.EntryRunFailed, "", data, e.Err)
	}

	return nil
}
