// Package service tracks the lifecycle of asynchronous merge jobs.
//
// A job is accepted synchronously, executed pair-by-pair in a background
// goroutine, and polled through read-only snapshots. Jobs run
// concurrently with each other up to a configured bound, but pairs
// inside one job always run strictly in submission order: merges mutate
// shared ledger state, and parallel merges touching overlapping
// transactions would race.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/firefly-merge-backend/internal/application/merge"
	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/storage"
)

// JobStatus represents the current state of a merge job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// PairRequest identifies one withdrawal/deposit pair to merge.
type PairRequest struct {
	WithdrawalID string
	DepositID    string
}

// MergeJob represents a pending, running or finished merge job.
// Outcomes always hold an order-consistent prefix of the submitted
// pairs: the outcome for pair N never appears before pair N-1's.
type MergeJob struct {
	ID          string
	Status      JobStatus
	Pairs       []PairRequest
	Outcomes    []merge.Outcome
	CreatedAt   time.Time
	CompletedAt *time.Time
	Error       error
}

// PairMerger merges a single pair. Satisfied by *merge.Executor.
type PairMerger interface {
	MergePair(ctx context.Context, withdrawalID, depositID string) merge.Outcome
}

// Config holds job-tracking configuration.
type Config struct {
	// RetentionPeriod is how long finished jobs stay pollable.
	RetentionPeriod time.Duration
	// CleanupInterval is how often the eviction scan runs.
	CleanupInterval time.Duration
	// MaxConcurrentJobs bounds how many jobs execute at once. Submissions
	// beyond the bound stay pending until a slot frees up.
	MaxConcurrentJobs int
}

// DefaultConfig mirrors the original deployment: hourly retention,
// five-minute sweep, modest parallelism.
func DefaultConfig() Config {
	return Config{
		RetentionPeriod:   time.Hour,
		CleanupInterval:   5 * time.Minute,
		MaxConcurrentJobs: 4,
	}
}

// MergeService owns the job store. It is the only writer; pollers get
// snapshots.
type MergeService struct {
	executor PairMerger
	history  storage.Repository // optional, nil disables the audit trail
	logger   *slog.Logger
	config   Config

	jobs      map[string]*MergeJob
	jobsMutex sync.RWMutex

	// Bounded concurrency across jobs.
	slots chan struct{}

	// Background cleanup
	cleanupStop chan struct{}
	cleanupDone chan struct{}
}

// NewMergeService creates a merge service. history may be nil.
func NewMergeService(executor PairMerger, history storage.Repository, logger *slog.Logger, cfg Config) *MergeService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = DefaultConfig().MaxConcurrentJobs
	}
	if cfg.RetentionPeriod <= 0 {
		cfg.RetentionPeriod = DefaultConfig().RetentionPeriod
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}

	return &MergeService{
		executor: executor,
		history:  history,
		logger:   logger,
		config:   cfg,
		jobs:     make(map[string]*MergeJob),
		slots:    make(chan struct{}, cfg.MaxConcurrentJobs),
	}
}

// SubmitMerge accepts a merge job and returns its id immediately.
// Validation failures are surfaced synchronously and no job is created.
//
// Note: the passed context is NOT used as the parent for the background
// job. Once a submission is accepted, every pair will be attempted even
// if the HTTP request that submitted it goes away. Mid-job cancellation
// is deliberately unsupported.
func (s *MergeService) SubmitMerge(_ context.Context, pairs []PairRequest) (string, error) {
	if len(pairs) == 0 {
		return "", fmt.Errorf("merge submission rejected: empty pair list")
	}
	for i, pair := range pairs {
		if pair.WithdrawalID == "" || pair.DepositID == "" {
			return "", fmt.Errorf("merge submission rejected: pair %d is missing a transaction id", i)
		}
	}

	jobID := uuid.NewString()

	job := &MergeJob{
		ID:        jobID,
		Status:    StatusPending,
		Pairs:     append([]PairRequest(nil), pairs...),
		CreatedAt: time.Now(),
	}

	s.jobsMutex.Lock()
	s.jobs[jobID] = job
	s.jobsMutex.Unlock()

	go s.runMergeJob(context.Background(), jobID)

	s.logger.Info("merge job submitted",
		"job_id", jobID,
		"pairs", len(pairs),
	)

	return jobID, nil
}

// GetJob retrieves a snapshot of a job by id.
func (s *MergeService) GetJob(jobID string) (*MergeJob, error) {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	return snapshotJob(job), nil
}

// ListActiveJobs returns snapshots of all pending or running jobs.
func (s *MergeService) ListActiveJobs() []*MergeJob {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	var active []*MergeJob
	for _, job := range s.jobs {
		if job.Status == StatusPending || job.Status == StatusRunning {
			active = append(active, snapshotJob(job))
		}
	}
	return active
}

// ListAllJobs returns snapshots of every job still in the store.
func (s *MergeService) ListAllJobs() []*MergeJob {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	jobs := make([]*MergeJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, snapshotJob(job))
	}
	return jobs
}

// runMergeJob executes the job in a background goroutine. Pairs run
// strictly sequentially; one bad pair never aborts the rest.
func (s *MergeService) runMergeJob(ctx context.Context, jobID string) {
	// Wait for an execution slot; the job stays pending meanwhile.
	s.slots <- struct{}{}
	defer func() { <-s.slots }()

	defer func() {
		if r := recover(); r != nil {
			s.failJob(jobID, fmt.Errorf("merge job panicked: %v", r))
		}
	}()

	s.setJobStatus(jobID, StatusRunning)

	pairs := s.jobPairs(jobID)
	if pairs == nil {
		return // evicted or unknown; nothing to do
	}

	runID := s.recordJobStart(jobID, len(pairs))

	succeeded := 0
	for _, pair := range pairs {
		outcome := s.mergePairSafely(ctx, pair)
		if outcome.Success() {
			succeeded++
		}
		s.appendOutcome(jobID, outcome)
		s.recordOutcome(jobID, outcome)
	}

	s.completeJob(jobID, succeeded, len(pairs)-succeeded)
	s.recordJobComplete(runID, succeeded, len(pairs)-succeeded)
}

// mergePairSafely runs one merge, converting a panic into that pair's
// failure outcome so the job can continue.
func (s *MergeService) mergePairSafely(ctx context.Context, pair PairRequest) (outcome merge.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("merge pair panicked",
				"withdrawal_id", pair.WithdrawalID,
				"deposit_id", pair.DepositID,
				"panic", r,
			)
			outcome = merge.Outcome{
				WithdrawalID: pair.WithdrawalID,
				DepositID:    pair.DepositID,
				Kind:         merge.KindCleanFailure,
				Error:        fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	return s.executor.MergePair(ctx, pair.WithdrawalID, pair.DepositID)
}

// setJobStatus transitions a job's status.
func (s *MergeService) setJobStatus(jobID string, status JobStatus) {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		job.Status = status
	}
}

// jobPairs returns the submitted pair list for a job.
func (s *MergeService) jobPairs(jobID string) []PairRequest {
	s.jobsMutex.RLock()
	defer s.jobsMutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil
	}
	return append([]PairRequest(nil), job.Pairs...)
}

// appendOutcome records one pair result in submission order.
func (s *MergeService) appendOutcome(jobID string, outcome merge.Outcome) {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		job.Outcomes = append(job.Outcomes, outcome)
	}
}

// completeJob marks a job as completed. Mixed per-pair outcomes still
// complete the job; failed is reserved for aborts that produced no
// outcomes.
func (s *MergeService) completeJob(jobID string, succeeded, failed int) {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		now := time.Now()
		job.Status = StatusCompleted
		job.CompletedAt = &now
		s.logger.Info("merge job completed",
			"job_id", jobID,
			"succeeded", succeeded,
			"failed", failed,
		)
	}
}

// failJob marks a job as failed with an error.
func (s *MergeService) failJob(jobID string, err error) {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	if job, exists := s.jobs[jobID]; exists {
		now := time.Now()
		job.Status = StatusFailed
		job.CompletedAt = &now
		job.Error = err
		s.logger.Error("merge job failed", "job_id", jobID, "error", err)
	}
}

// CleanupOldJobs evicts finished jobs whose completion time is older
// than maxAge. Pending and running jobs are never evicted regardless of
// age. Returns the number of jobs removed.
func (s *MergeService) CleanupOldJobs(maxAge time.Duration) int {
	s.jobsMutex.Lock()
	defer s.jobsMutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, job := range s.jobs {
		if job.Status != StatusCompleted && job.Status != StatusFailed {
			continue
		}
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("cleaned up old merge jobs", "removed", removed)
	}

	return removed
}

// StartBackgroundCleanup starts a goroutine that periodically evicts
// finished jobs past the retention period. Call StopBackgroundCleanup
// to stop it.
func (s *MergeService) StartBackgroundCleanup() {
	s.cleanupStop = make(chan struct{})
	s.cleanupDone = make(chan struct{})

	go func() {
		defer close(s.cleanupDone)

		ticker := time.NewTicker(s.config.CleanupInterval)
		defer ticker.Stop()

		s.logger.Info("background job cleanup started",
			"interval", s.config.CleanupInterval,
			"retention", s.config.RetentionPeriod,
		)

		for {
			select {
			case <-s.cleanupStop:
				s.logger.Info("background job cleanup stopped")
				return
			case <-ticker.C:
				s.CleanupOldJobs(s.config.RetentionPeriod)
			}
		}
	}()
}

// StopBackgroundCleanup stops the background cleanup goroutine. Blocks
// until the goroutine has fully stopped.
func (s *MergeService) StopBackgroundCleanup() {
	if s.cleanupStop == nil {
		return
	}

	close(s.cleanupStop)
	<-s.cleanupDone
}

// recordJobStart writes the job-run summary row. History is best
// effort: storage errors are logged, never surfaced to the job.
func (s *MergeService) recordJobStart(jobID string, pairCount int) int64 {
	if s.history == nil {
		return 0
	}
	runID, err := s.history.StartJobRun(jobID, pairCount)
	if err != nil {
		s.logger.Warn("failed to record job run", "job_id", jobID, "error", err)
		return 0
	}
	return runID
}

func (s *MergeService) recordJobComplete(runID int64, succeeded, failed int) {
	if s.history == nil || runID == 0 {
		return
	}
	status := "completed"
	if failed > 0 {
		status = "completed_with_errors"
	}
	if err := s.history.CompleteJobRun(runID, succeeded, failed, status); err != nil {
		s.logger.Warn("failed to complete job run record", "run_id", runID, "error", err)
	}
}

func (s *MergeService) recordOutcome(jobID string, outcome merge.Outcome) {
	if s.history == nil {
		return
	}
	record := &storage.MergeRecord{
		JobID:           jobID,
		WithdrawalID:    outcome.WithdrawalID,
		DepositID:       outcome.DepositID,
		Amount:          outcome.Amount,
		CurrencyCode:    outcome.CurrencyCode,
		SourceName:      outcome.SourceName,
		DestinationName: outcome.DestinationName,
		Outcome:         string(outcome.Kind),
		ErrorMessage:    outcome.Error,
	}
	if err := s.history.SaveMergeRecord(record); err != nil {
		s.logger.Warn("failed to record merge outcome",
			"job_id", jobID,
			"withdrawal_id", outcome.WithdrawalID,
			"error", err,
		)
	}
}

// snapshotJob deep-copies a job so pollers never observe in-flight
// mutation. Callers must hold at least a read lock.
func snapshotJob(job *MergeJob) *MergeJob {
	copied := *job
	copied.Pairs = append([]PairRequest(nil), job.Pairs...)
	copied.Outcomes = append([]merge.Outcome(nil), job.Outcomes...)
	if job.CompletedAt != nil {
		completedAt := *job.CompletedAt
		copied.CompletedAt = &completedAt
	}
	return &copied
}
