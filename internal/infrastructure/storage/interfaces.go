package storage

// Repository defines the complete storage interface. The merge history
// is an audit log: the in-memory job store stays authoritative for job
// lifecycle, and nothing here is read back to drive merges.
type Repository interface {
	MergeRecordRepository
	JobRunRepository
	Close() error
}

// MergeRecordRepository persists per-pair merge outcomes.
type MergeRecordRepository interface {
	// SaveMergeRecord appends one pair outcome to the history.
	SaveMergeRecord(record *MergeRecord) error

	// ListMergeRecords returns history rows matching the filters.
	ListMergeRecords(filters MergeRecordFilters) (*MergeRecordList, error)

	// GetStats returns aggregate merge statistics.
	GetStats() (*Stats, error)
}

// MergeRecordFilters defines filters for listing merge records.
type MergeRecordFilters struct {
	JobID   string // filter by job (empty = all)
	Outcome string // filter by outcome kind (empty = all)
	Limit   int    // max results (0 = default 50)
	Offset  int    // pagination offset
}

// MergeRecordList contains paginated history results.
type MergeRecordList struct {
	Records    []*MergeRecord `json:"records"`
	TotalCount int            `json:"total_count"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}

// JobRunRepository tracks merge job summaries.
type JobRunRepository interface {
	// StartJobRun records that a job was accepted and returns the row id.
	StartJobRun(jobID string, pairCount int) (int64, error)

	// CompleteJobRun records the final tally for a job.
	CompleteJobRun(runID int64, succeeded, failed int, status string) error

	// ListJobRuns returns recent job runs, newest first.
	ListJobRuns(limit int) ([]JobRun, error)
}
