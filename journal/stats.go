package journal

import (
	"io"
	"path/filepath"
	"time"
)

// Stats represents journal statistics
type Stats struct {
	// File statistics
	TotalFiles      int
	TotalSizeBytes  int64
	OldestFile      time.Time
	NewestFile      time.Time
	CurrentFileSize int64

	// Sequence statistics
	SequenceCount int64
	FirstSequence int64
	LastSequence  int64

	// Entries per file
	EntriesPerFile map[string]int
}

// GetStats returns current journal statistics
func (j *Journal) GetStats() Stats {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.collectStats()
}

// collectStats gathers all statistics
func (j *Journal) collectStats() Stats {
	stats := Stats{
		LastSequence: j.sequence,
	}

	j.collectFileStats(&stats)
	j.collectSequenceStats(&stats)

	return stats
}

// collectFileStats gathers file-related statistics
func (j *Journal) collectFileStats(stats *Stats) {
	files := j.listJournalFiles()
	stats.TotalFiles = len(files)

	if len(files) == 0 {
		return
	}

	stats.TotalSizeBytes = calculateTotalSize(files)
	stats.OldestFile, stats.NewestFile = findTimeRange(files)
	stats.CurrentFileSize = j.getCurrentFileSize()
}

// collectSequenceStats gathers sequence-related statistics
func (j *Journal) collectSequenceStats(stats *Stats) {
	if stats.TotalFiles == 0 {
		return
	}

	files := j.listJournalFiles()
	stats.FirstSequence = findFirstSequenceInFiles(files)
	if stats.LastSequence >= stats.FirstSequence {
		stats.SequenceCount = stats.LastSequence - stats.FirstSequence + 1
	} else {
		stats.SequenceCount = 0
	}
	stats.EntriesPerFile = countEntriesPerFile(files)
}

// getCurrentFileSize returns size of the current journal file
func (j *Journal) getCurrentFileSize() int64 {
	info, err := j.file.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// countEntriesPerFile counts entries in each file
func countEntriesPerFile(files []string) map[string]int {
	counts := make(map[string]int)

	for _, file := range files {
		counts[filepath.Base(file)] = countEntriesInFile(file)
	}

	return counts
}

// countEntriesInFile counts entries in a single file
func countEntriesInFile(path string) int {
	reader, err := NewReader(path)
	if err != nil {
		return 0
	}
	defer func() { _ = reader.Close() }()

	count := 0
	for {
		_, err := reader.Next()
		if err != nil {
			break
		}
		count++
	}

	return count
}

// GetStatsFromDir returns statistics for a journal directory without an
// open journal
func GetStatsFromDir(dir string, config Config) Stats {
	stats := Stats{}

	pattern := filepath.Join(dir, config.FilePrefix+"-*.journal")
	files, err := filepath.Glob(pattern)
	if err != nil || len(files) == 0 {
		return stats
	}

	stats.TotalFiles = len(files)
	stats.TotalSizeBytes = calculateTotalSize(files)
	stats.OldestFile, stats.NewestFile = findTimeRange(files)

	stats.FirstSequence = findFirstSequenceInFiles(files)
	stats.LastSequence = findLastSequenceInFiles(files)
	if stats.LastSequence < stats.FirstSequence {
		stats.SequenceCount = 0
	} else {
		stats.SequenceCount = stats.LastSequence - stats.FirstSequence + 1
	}
	stats.EntriesPerFile = countEntriesPerFile(files)

	return stats
}

// findFirstSequenceInFiles finds the lowest sequence across files.
// Files are named by creation time, so the first file holds the lowest.
func findFirstSequenceInFiles(files []string) int64 {
	if len(files) == 0 {
		return 0
	}

	reader, err := NewReader(files[0])
	if err != nil {
		return 0
	}
	defer func() { _ = reader.Close() }()

	entry, err := reader.Next()
	if err != nil {
		return 0
	}

	return entry.Sequence
}

// findLastSequenceInFiles finds the highest sequence across files
func findLastSequenceInFiles(files []string) int64 {
	maxSeq := int64(0)

	for _, file := range files {
		fileMax := getMaxSequenceFromFile(file)
		if fileMax > maxSeq {
			maxSeq = fileMax
		}
	}

	return maxSeq
}

// scanMaxSequenceInFile iterates a Reader and returns the max sequence,
// skipping corrupted entries
func scanMaxSequenceInFile(reader *Reader) int64 {
	maxSeq := int64(0)
	for {
		entry, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			continue
		}
		if entry.Sequence > maxSeq {
			maxSeq = entry.Sequence
		}
	}
	return maxSeq
}

// getMaxSequenceFromFile reads a file and returns its max sequence
func getMaxSequenceFromFile(path string) int64 {
	reader, err := NewReader(path)
	if err != nil {
		return 0
	}
	defer func() { _ = reader.Close() }()

	return scanMaxSequenceInFile(reader)
}

// HealthStatus represents journal health
type HealthStatus struct {
	Healthy          bool
	DiskUsagePercent float64
	OldestFileAge    time.Duration
	NeedsRotation    bool
	NeedsCleanup     bool
	Issues           []string
}

// GetHealth returns journal health status
func (j *Journal) GetHealth() HealthStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	health := HealthStatus{
		Healthy: true,
		Issues:  []string{},
	}

	j.checkDiskUsage(&health)
	j.checkFileAge(&health)
	j.checkRotationNeeded(&health)

	health.Healthy = len(health.Issues) == 0

	return health
}

// checkDiskUsage checks current file size against the limit
func (j *Journal) checkDiskUsage(health *HealthStatus) {
	if j.config.MaxFileSize <= 0 {
		return
	}

	size := j.getCurrentFileSize()
	health.DiskUsagePercent = float64(size) / float64(j.config.MaxFileSize) * 100

	if health.DiskUsagePercent > 90 {
		health.Issues = append(health.Issues, "current file >90% of max size")
	}
}

// checkFileAge checks oldest file age against retention
func (j *Journal) checkFileAge(health *HealthStatus) {
	files := j.listJournalFiles()
	if len(files) == 0 {
		return
	}

	oldest, _ := findTimeRange(files)
	health.OldestFileAge = time.Since(oldest)

	retentionDuration := time.Duration(j.config.RetentionDays) * 24 * time.Hour
	if health.OldestFileAge > retentionDuration {
		health.NeedsCleanup = true
		health.Issues = append(health.Issues, "old files exceed retention period")
	}
}

// checkRotationNeeded checks if rotation is imminent
func (j *Journal) checkRotationNeeded(health *HealthStatus) {
	if j.shouldRotate() {
		health.NeedsRotation = true
		health.Issues = append(health.Issues, "file rotation needed")
	}
}
