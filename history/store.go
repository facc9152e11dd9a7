// Package history persists run summaries so past reconciliations can
// be inspected long after their logs scrolled away.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/btree"
	"go.etcd.io/bbolt"
)

// Bucket names in bbolt
var (
	bucketRuns = []byte("runs")
	bucketMeta = []byte("meta")
)

var keyLastRunID = []byte("last_run_id")

// RunRecord is the persisted summary of one reconciliation run
type RunRecord struct {
	RunID       int64         `json:"run_id"`
	Trigger     string        `json:"trigger"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Regions     []string      `json:"regions"`
	Listed      int           `json:"listed"`
	Tagged      int           `json:"tagged"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	Phases      []PhaseRecord `json:"phases,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// PhaseRecord summarizes one resource kind within a run
type PhaseRecord struct {
	Kind     string        `json:"kind"`
	Listed   int           `json:"listed"`
	Tagged   int           `json:"tagged"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// runSummary is the in-memory index entry for a run
type runSummary struct {
	RunID     int64
	Trigger   string
	StartedAt time.Time
	Tagged    int
	Failed    int
}

// Store keeps run records in bbolt with an in-memory btree index
type Store struct {
	mu sync.RWMutex

	// In-memory index for fast recent-run queries
	index *btree.BTreeG[*runSummary]

	// On-disk storage
	db *bbolt.DB

	// Highest run ID handed out so far
	lastRunID int64

	dir string
}

// NewStore creates or opens a history store in the given directory
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbPath := filepath.Join(dir, "leima.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Initialize buckets
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketRuns, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{
		index: btree.NewG[*runSummary](32, func(a, b *runSummary) bool {
			return a.RunID < b.RunID
		}),
		db:  db,
		dir: dir,
	}

	store.loadLastRunID()

	if err := store.rebuildIndex(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}

	return store, nil
}

// Close closes the store
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun persists a run record and returns its assigned ID
func (s *Store) RecordRun(record RunRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRunID++
	record.RunID = s.lastRunID

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRuns)
		value, err := json.Marshal(record)
		if err != nil {
			return err
		}

		if err := bucket.Put(makeRunKey(record.RunID), value); err != nil {
			return err
		}

		metaBucket := tx.Bucket(bucketMeta)
		return metaBucket.Put(keyLastRunID, int64ToBytes(record.RunID))
	})

	if err != nil {
		return 0, err
	}

	s.index.ReplaceOrInsert(summarize(record))

	return record.RunID, nil
}

// GetRun loads a single run record
func (s *Store) GetRun(runID int64) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var record *RunRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketRuns).Get(makeRunKey(runID))
		if value == nil {
			return nil
		}

		record = &RunRecord{}
		return json.Unmarshal(value, record)
	})
	if err != nil {
		return nil, err
	}

	if record == nil {
		return nil, fmt.Errorf("run %d not found", runID)
	}

	return record, nil
}

// Recent returns the n most recent runs, newest first
func (s *Store) Recent(n int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	s.index.Descend(func(summary *runSummary) bool {
		ids = append(ids, summary.RunID)
		return len(ids) < n
	})

	records := make([]RunRecord, 0, len(ids))
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRuns)
		for _, id := range ids {
			value := bucket.Get(makeRunKey(id))
			if value == nil {
				continue
			}

			var record RunRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// RunsByTrigger returns run IDs started by the given trigger, oldest first
func (s *Store) RunsByTrigger(trigger string) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	s.index.Ascend(func(summary *runSummary) bool {
		if summary.Trigger == trigger {
			ids = append(ids, summary.RunID)
		}
		return true
	})

	return ids
}

// LastRunID returns the most recently assigned run ID
func (s *Store) LastRunID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRunID
}

// Stats summarizes the whole store
type Stats struct {
	TotalRuns   int
	FirstRunID  int64
	LastRunID   int64
	TotalTagged int
	TotalFailed int
}

// GetStats returns store-wide statistics
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{LastRunID: s.lastRunID}

	first := true
	s.index.Ascend(func(summary *runSummary) bool {
		if first {
			stats.FirstRunID = summary.RunID
			first = false
		}
		stats.TotalRuns++
		stats.TotalTagged += summary.Tagged
		stats.TotalFailed += summary.Failed
		return true
	})

	return stats
}

// Compact removes run records older than the most recent keepRuns
func (s *Store) Compact(keepRuns int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.lastRunID - keepRuns
	if cutoff <= 0 {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRuns)
		c := bucket.Cursor()

		var toDelete [][]byte
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if parseRunKey(k) <= cutoff {
				toDelete = append(toDelete, k)
			}
		}

		for _, key := range toDelete {
			if err := bucket.Delete(key); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	var stale []*runSummary
	s.index.Ascend(func(summary *runSummary) bool {
		if summary.RunID <= cutoff {
			stale = append(stale, summary)
		}
		return true
	})
	for _, summary := range stale {
		s.index.Delete(summary)
	}

	return nil
}

// Helper functions

func summarize(record RunRecord) *runSummary {
	return &runSummary{
		RunID:     record.RunID,
		Trigger:   record.Trigger,
		StartedAt: record.StartedAt,
		Tagged:    record.Tagged,
		Failed:    record.Failed,
	}
}

func (s *Store) loadLastRunID() {
	_ = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return nil
		}

		data := bucket.Get(keyLastRunID)
		if data != nil {
			s.lastRunID = bytesToInt64(data)
		}
		return nil
	})
}

// rebuildIndex scans the runs bucket and repopulates the btree
func (s *Store) rebuildIndex() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var record RunRecord
			if err := json.Unmarshal(v, &record); err != nil {
				// Skip corrupt entries rather than refusing to open
				return nil
			}
			s.index.ReplaceOrInsert(summarize(record))
			return nil
		})
	})
}

func makeRunKey(runID int64) []byte {
	return []byte(fmt.Sprintf("%016d", runID))
}

func parseRunKey(key []byte) int64 {
	n, err := strconv.ParseInt(string(key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func int64ToBytes(n int64) []byte {
	return []byte(strconv.FormatInt(n, 10))
}

func bytesToInt64(b []byte) int64 {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
