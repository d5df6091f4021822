package storage

import (
	"fmt"
	"sync"
	"time"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu      sync.Mutex
	records []*MergeRecord
	runs    []JobRun
	nextID  int64

	// SaveErr, when set, is returned by SaveMergeRecord to simulate
	// storage failures.
	SaveErr error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty mock.
func NewMockRepository() *MockRepository {
	return &MockRepository{nextID: 1}
}

// SaveMergeRecord appends one pair outcome to the history
func (m *MockRepository) SaveMergeRecord(record *MergeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}

	saved := *record
	saved.ID = m.nextID
	m.nextID++
	if saved.MergedAt.IsZero() {
		saved.MergedAt = time.Now().UTC()
	}
	m.records = append(m.records, &saved)
	record.ID = saved.ID
	return nil
}

// ListMergeRecords returns history rows matching the filters
func (m *MockRepository) ListMergeRecords(filters MergeRecordFilters) (*MergeRecordList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	var matched []*MergeRecord
	for _, record := range m.records {
		if filters.JobID != "" && record.JobID != filters.JobID {
			continue
		}
		if filters.Outcome != "" && record.Outcome != filters.Outcome {
			continue
		}
		copied := *record
		matched = append(matched, &copied)
	}

	total := len(matched)
	if filters.Offset < len(matched) {
		matched = matched[filters.Offset:]
	} else {
		matched = nil
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return &MergeRecordList{
		Records:    matched,
		TotalCount: total,
		Limit:      limit,
		Offset:     filters.Offset,
	}, nil
}

// GetStats returns aggregate merge statistics
func (m *MockRepository) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &Stats{ByCurrency: make(map[string]int)}
	for _, record := range m.records {
		stats.TotalAttempts++
		switch record.Outcome {
		case "success":
			stats.SuccessCount++
			if record.CurrencyCode != "" {
				stats.ByCurrency[record.CurrencyCode]++
			}
		case "clean_failure":
			stats.CleanFailures++
		case "partial_failure":
			stats.PartialFailures++
		case "already_merged":
			stats.AlreadyMerged++
		}
	}
	return stats, nil
}

// StartJobRun records that a job was accepted
func (m *MockRepository) StartJobRun(jobID string, pairCount int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.runs = append(m.runs, JobRun{
		ID:        id,
		JobID:     jobID,
		StartedAt: time.Now().UTC(),
		PairCount: pairCount,
		Status:    "running",
	})
	return id, nil
}

// CompleteJobRun records the final tally for a job
func (m *MockRepository) CompleteJobRun(runID int64, succeeded, failed int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.runs {
		if m.runs[i].ID == runID {
			m.runs[i].Succeeded = succeeded
			m.runs[i].Failed = failed
			m.runs[i].Status = status
			now := time.Now().UTC()
			m.runs[i].CompletedAt = &now
			return nil
		}
	}
	return fmt.Errorf("job run not found: %d", runID)
}

// ListJobRuns returns recent job runs, newest first
func (m *MockRepository) ListJobRuns(limit int) ([]JobRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	runs := make([]JobRun, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, m.runs[i])
	}
	return runs, nil
}

// Records returns a copy of the saved merge records (test helper).
func (m *MockRepository) Records() []MergeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MergeRecord, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, *record)
	}
	return out
}

// Close is a no-op for the mock.
func (m *MockRepository) Close() error {
	return nil
}
