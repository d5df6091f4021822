package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := NewStorage(filepath.Join(t.TempDir(), "merge_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func record(jobID, withdrawalID, outcome string) *MergeRecord {
	return &MergeRecord{
		JobID:           jobID,
		WithdrawalID:    withdrawalID,
		DepositID:       "d-" + withdrawalID,
		Amount:          "250.00",
		CurrencyCode:    "USD",
		SourceName:      "Checking",
		DestinationName: "Savings",
		Outcome:         outcome,
	}
}

func TestStorage_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merge_test.db")

	first, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening the same file must not re-run applied migrations.
	second, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestStorage_SaveAndListMergeRecords(t *testing.T) {
	s := newTestStorage(t)

	r1 := record("job-1", "100", "success")
	require.NoError(t, s.SaveMergeRecord(r1))
	assert.NotZero(t, r1.ID)

	require.NoError(t, s.SaveMergeRecord(record("job-1", "101", "clean_failure")))
	require.NoError(t, s.SaveMergeRecord(record("job-2", "102", "success")))

	t.Run("no filters", func(t *testing.T) {
		list, err := s.ListMergeRecords(MergeRecordFilters{})
		require.NoError(t, err)
		assert.Equal(t, 3, list.TotalCount)
		assert.Len(t, list.Records, 3)
	})

	t.Run("filter by job", func(t *testing.T) {
		list, err := s.ListMergeRecords(MergeRecordFilters{JobID: "job-1"})
		require.NoError(t, err)
		assert.Equal(t, 2, list.TotalCount)
	})

	t.Run("filter by outcome", func(t *testing.T) {
		list, err := s.ListMergeRecords(MergeRecordFilters{Outcome: "clean_failure"})
		require.NoError(t, err)
		require.Len(t, list.Records, 1)
		assert.Equal(t, "101", list.Records[0].WithdrawalID)
	})

	t.Run("pagination", func(t *testing.T) {
		list, err := s.ListMergeRecords(MergeRecordFilters{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, list.TotalCount)
		assert.Len(t, list.Records, 2)

		rest, err := s.ListMergeRecords(MergeRecordFilters{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, rest.Records, 1)
	})
}

func TestStorage_NewestRecordsFirst(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveMergeRecord(record("job-1", "100", "success")))
	require.NoError(t, s.SaveMergeRecord(record("job-1", "101", "success")))

	list, err := s.ListMergeRecords(MergeRecordFilters{})
	require.NoError(t, err)
	require.Len(t, list.Records, 2)

	// Same merged_at second is possible; the id tie-break keeps the
	// later insert first.
	assert.Equal(t, "101", list.Records[0].WithdrawalID)
	assert.Equal(t, "100", list.Records[1].WithdrawalID)
}

func TestStorage_GetStats(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveMergeRecord(record("job-1", "100", "success")))
	require.NoError(t, s.SaveMergeRecord(record("job-1", "101", "success")))
	require.NoError(t, s.SaveMergeRecord(record("job-1", "102", "clean_failure")))
	require.NoError(t, s.SaveMergeRecord(record("job-1", "103", "partial_failure")))
	require.NoError(t, s.SaveMergeRecord(record("job-1", "104", "already_merged")))

	stats, err := s.GetStats()
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalAttempts)
	assert.Equal(t, 2, stats.SuccessCount)
	assert.Equal(t, 1, stats.CleanFailures)
	assert.Equal(t, 1, stats.PartialFailures)
	assert.Equal(t, 1, stats.AlreadyMerged)
	assert.Equal(t, 2, stats.ByCurrency["USD"])
}

func TestStorage_JobRunLifecycle(t *testing.T) {
	s := newTestStorage(t)

	runID, err := s.StartJobRun("job-1", 3)
	require.NoError(t, err)
	require.NotZero(t, runID)

	runs, err := s.ListJobRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "running", runs[0].Status)
	assert.Equal(t, 3, runs[0].PairCount)
	assert.False(t, runs[0].StartedAt.IsZero())
	assert.Nil(t, runs[0].CompletedAt)

	require.NoError(t, s.CompleteJobRun(runID, 2, 1, "completed_with_errors"))

	runs, err = s.ListJobRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "completed_with_errors", runs[0].Status)
	assert.Equal(t, 2, runs[0].Succeeded)
	assert.Equal(t, 1, runs[0].Failed)
	require.NotNil(t, runs[0].CompletedAt)
}
