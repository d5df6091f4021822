package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for the merge history.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveMergeRecord appends one pair outcome to the history
func (s *Storage) SaveMergeRecord(record *MergeRecord) error {
	query := `
	INSERT INTO merge_records
	(job_id, withdrawal_id, deposit_id, amount, currency_code,
	 source_name, destination_name, outcome, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		record.JobID,
		record.WithdrawalID,
		record.DepositID,
		record.Amount,
		record.CurrencyCode,
		record.SourceName,
		record.DestinationName,
		record.Outcome,
		record.ErrorMessage,
	)
	if err != nil {
		return err
	}

	record.ID, _ = result.LastInsertId()
	return nil
}

// ListMergeRecords returns history rows matching the filters
func (s *Storage) ListMergeRecords(filters MergeRecordFilters) (*MergeRecordList, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	where := "WHERE 1=1"
	args := []interface{}{}
	if filters.JobID != "" {
		where += " AND job_id = ?"
		args = append(args, filters.JobID)
	}
	if filters.Outcome != "" {
		where += " AND outcome = ?"
		args = append(args, filters.Outcome)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM merge_records " + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := `
	SELECT id, job_id, withdrawal_id, deposit_id, amount, currency_code,
	       source_name, destination_name, outcome, error_message, merged_at
	FROM merge_records ` + where + `
	ORDER BY merged_at DESC, id DESC
	LIMIT ? OFFSET ?
	`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := &MergeRecordList{
		TotalCount: total,
		Limit:      limit,
		Offset:     filters.Offset,
	}

	for rows.Next() {
		record := &MergeRecord{}
		err := rows.Scan(
			&record.ID,
			&record.JobID,
			&record.WithdrawalID,
			&record.DepositID,
			&record.Amount,
			&record.CurrencyCode,
			&record.SourceName,
			&record.DestinationName,
			&record.Outcome,
			&record.ErrorMessage,
			&record.MergedAt,
		)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, record)
	}

	return result, rows.Err()
}

// GetStats returns aggregate merge statistics
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{
		ByCurrency: make(map[string]int),
	}

	query := `
	SELECT
		COUNT(*) as total,
		COUNT(CASE WHEN outcome = 'success' THEN 1 END) as success,
		COUNT(CASE WHEN outcome = 'clean_failure' THEN 1 END) as clean_failures,
		COUNT(CASE WHEN outcome = 'partial_failure' THEN 1 END) as partial_failures,
		COUNT(CASE WHEN outcome = 'already_merged' THEN 1 END) as already_merged
	FROM merge_records
	`

	err := s.db.QueryRow(query).Scan(
		&stats.TotalAttempts,
		&stats.SuccessCount,
		&stats.CleanFailures,
		&stats.PartialFailures,
		&stats.AlreadyMerged,
	)
	if err != nil {
		return nil, err
	}

	currencyQuery := `
	SELECT currency_code, COUNT(*)
	FROM merge_records
	WHERE outcome = 'success' AND currency_code != ''
	GROUP BY currency_code
	`

	rows, err := s.db.Query(currencyQuery)
	if err == nil {
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var code string
			var count int
			if err := rows.Scan(&code, &count); err == nil {
				stats.ByCurrency[code] = count
			}
		}
	}

	return stats, nil
}

// StartJobRun records that a job was accepted
func (s *Storage) StartJobRun(jobID string, pairCount int) (int64, error) {
	query := `
		INSERT INTO job_runs (job_id, pair_count, status)
		VALUES (?, ?, 'running')
	`

	result, err := s.db.Exec(query, jobID, pairCount)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// CompleteJobRun records the final tally for a job
func (s *Storage) CompleteJobRun(runID int64, succeeded, failed int, status string) error {
	query := `
		UPDATE job_runs
		SET completed_at = CURRENT_TIMESTAMP,
		    succeeded = ?,
		    failed = ?,
		    status = ?
		WHERE id = ?
	`

	_, err := s.db.Exec(query, succeeded, failed, status, runID)
	return err
}

// ListJobRuns returns recent job runs, newest first
func (s *Storage) ListJobRuns(limit int) ([]JobRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, job_id, started_at, completed_at,
		       pair_count, succeeded, failed, status
		FROM job_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []JobRun
	for rows.Next() {
		var run JobRun
		var completedAt sql.NullTime
		err := rows.Scan(
			&run.ID,
			&run.JobID,
			&run.StartedAt,
			&completedAt,
			&run.PairCount,
			&run.Succeeded,
			&run.Failed,
			&run.Status,
		)
		if err != nil {
			return nil, err
		}
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
