// Package journal provides an append-only JSON-lines record of every
// reconciliation run for audit and replay.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EntryType defines the type of journal entry
type EntryType string

const (
	EntryRunStarted     EntryType = "run_started"
	EntryPhaseStarted   EntryType = "phase_started"
	EntryPhaseCompleted EntryType = "phase_completed"
	EntryTagApplied     EntryType = "tag_applied"
	EntryTagSkipped     EntryType = "tag_skipped"
	EntryTagFailed      EntryType = "tag_failed"
	EntryRunFailed      EntryType = "run_failed"
	EntryRunCompleted   EntryType = "run_completed"
)

// Entry represents a single journal entry
type Entry struct {
	Timestamp  time.Time       `json:"timestamp"`
	Sequence   int64           `json:"sequence"`
	Type       EntryType       `json:"type"`
	ResourceID string          `json:"resource_id,omitempty"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error,omitempty"`
}

// Config controls journal file handling
type Config struct {
	FilePrefix    string
	MaxFileSize   int64
	RetentionDays int
}

// DefaultConfig returns the standard journal configuration
func DefaultConfig() Config {
	return Config{
		FilePrefix:    "leima",
		MaxFileSize:   64 * 1024 * 1024,
		RetentionDays: 30,
	}
}

// Journal provides append-only logging for audit and recovery
type Journal struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	sequence int64
	dir      string
	config   Config
}

// Open creates or opens a journal in the specified directory
func Open(dir string) (*Journal, error) {
	return OpenWithConfig(dir, DefaultConfig())
}

// OpenWithConfig creates or opens a journal with explicit configuration
func OpenWithConfig(dir string, config Config) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	file, err := openJournalFile(dir, config.FilePrefix)
	if err != nil {
		return nil, err
	}

	j := &Journal{
		file:   file,
		writer: bufio.NewWriter(file),
		dir:    dir,
		config: config,
	}

	// Continue the sequence from existing files
	j.loadSequence()

	return j, nil
}

// openJournalFile opens a fresh timestamped journal file. Nanosecond
// precision keeps rotation within one second from reusing a name.
func openJournalFile(dir, prefix string) (*os.File, error) {
	filename := fmt.Sprintf("%s-%s.journal", prefix, time.Now().Format("20060102-150405.000000000"))
	path := filepath.Join(dir, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	return file, nil
}

// Close flushes and closes the journal
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.writer.Flush(); err != nil {
		return err
	}
	return j.file.Close()
}

// Append adds an entry to the journal
func (j *Journal) Append(entryType EntryType, resourceID string, data interface{}) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.sequence++

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	entry := Entry{
		Timestamp:  time.Now(),
		Sequence:   j.sequence,
		Type:       entryType,
		ResourceID: resourceID,
		Data:       jsonData,
	}

	return j.writeEntry(entry)
}

// AppendError adds an error entry to the journal
func (j *Journal) AppendError(entryType EntryType, resourceID string, data interface{}, errToLog error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.sequence++

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	entry := Entry{
		Timestamp:  time.Now(),
		Sequence:   j.sequence,
		Type:       entryType,
		ResourceID: resourceID,
		Data:       jsonData,
		Error:      errToLog.Error(),
	}

	return j.writeEntry(entry)
}

// writeEntry writes a single entry and rotates the file when it
// crosses the size limit
func (j *Journal) writeEntry(entry Entry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if _, err := j.writer.Write(line); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	if _, err := j.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	// Flush immediately for durability
	if err := j.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	if err := j.file.Sync(); err != nil {
		return err
	}

	if j.shouldRotate() {
		return j.rotate()
	}

	return nil
}

// shouldRotate reports whether the current file reached the size limit
func (j *Journal) shouldRotate() bool {
	if j.config.MaxFileSize <= 0 {
		return false
	}
	return j.getCurrentFileSize() >= j.config.MaxFileSize
}

// rotate closes the current file and starts a new one. The sequence
// number carries over.
func (j *Journal) rotate() error {
	if err := j.file.Close(); err != nil {
		return fmt.Errorf("failed to close journal file: %w", err)
	}

	file, err := openJournalFile(j.dir, j.config.FilePrefix)
	if err != nil {
		return err
	}

	j.file = file
	j.writer = bufio.NewWriter(file)
	return nil
}

// loadSequence finds the highest sequence number across existing files
func (j *Journal) loadSequence() {
	j.sequence = findLastSequenceInFiles(j.listJournalFiles())
}

// listJournalFiles returns this journal's files, oldest first
func (j *Journal) listJournalFiles() []string {
	pattern := filepath.Join(j.dir, j.config.FilePrefix+"-*.journal")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	return files
}

// Reader provides journal replay functionality
type Reader struct {
	scanner *bufio.Scanner
	file    *os.File
}

// NewReader creates a journal reader for the specified file
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	return &Reader{
		scanner: bufio.NewScanner(file),
		file:    file,
	}, nil
}

// Next reads the next entry from the journal
func (r *Reader) Next() (*Entry, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	var entry Entry
	if err := json.Unmarshal(r.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}

// Close closes the reader
func (r *Reader) Close() error {
	return r.file.Close()
}

// Replay replays journal entries recorded after a specific time
func Replay(dir string, since time.Time, handler func(*Entry) error) error {
	return ReplayWithConfig(dir, DefaultConfig(), since, handler)
}

// ReplayWithConfig replays entries using an explicit file prefix
func ReplayWithConfig(dir string, config Config, since time.Time, handler func(*Entry) error) error {
	files, err := filepath.Glob(filepath.Join(dir, config.FilePrefix+"-*.journal"))
	if err != nil {
		return fmt.Errorf("failed to list journal files: %w", err)
	}

	for _, file := range files {
		if err := replayFile(file, since, handler); err != nil {
			return err
		}
	}

	return nil
}

// replayFile replays a single journal file
func replayFile(path string, since time.Time, handler func(*Entry) error) error {
	reader, err := NewReader(path)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if entry.Timestamp.After(since) {
			if err := handler(entry); err != nil {
				return err
			}
		}
	}

	return nil
}
