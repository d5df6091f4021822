package storage

import "time"

// MergeRecord is one merged (or attempted) pair in the audit history.
type MergeRecord struct {
	ID              int64     `json:"id"`
	JobID           string    `json:"job_id"`
	WithdrawalID    string    `json:"withdrawal_id"`
	DepositID       string    `json:"deposit_id"`
	Amount          string    `json:"amount"`
	CurrencyCode    string    `json:"currency_code"`
	SourceName      string    `json:"source_name"`
	DestinationName string    `json:"destination_name"`
	Outcome         string    `json:"outcome"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	MergedAt        time.Time `json:"merged_at"`
}

// JobRun is the summary row for one merge job.
type JobRun struct {
	ID          int64      `json:"id"`
	JobID       string     `json:"job_id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	PairCount   int        `json:"pair_count"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	Status      string     `json:"status"`
}

// Stats holds aggregate merge statistics.
type Stats struct {
	TotalAttempts   int            `json:"total_attempts"`
	SuccessCount    int            `json:"success_count"`
	CleanFailures   int            `json:"clean_failures"`
	PartialFailures int            `json:"partial_failures"`
	AlreadyMerged   int            `json:"already_merged"`
	ByCurrency      map[string]int `json:"by_currency"`
}
