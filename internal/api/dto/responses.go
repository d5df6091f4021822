package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// AccountResponse represents a Firefly account.
type AccountResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	CurrencyCode string `json:"currency_code,omitempty"`
}

// AccountListResponse is returned when listing accounts.
type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Count    int               `json:"count"`
}

// TransactionResponse represents one transaction leg in API responses.
type TransactionResponse struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	Date            string `json:"date"`
	Amount          string `json:"amount"`
	CurrencyCode    string `json:"currency_code"`
	SourceID        string `json:"source_id,omitempty"`
	SourceName      string `json:"source_name,omitempty"`
	DestinationID   string `json:"destination_id,omitempty"`
	DestinationName string `json:"destination_name,omitempty"`
}

// AlternativeResponse is a non-primary deposit match.
type AlternativeResponse struct {
	Deposit   TransactionResponse `json:"deposit"`
	DaysApart int                 `json:"days_apart"`
}

// CandidateResponse is a proposed withdrawal/deposit pairing.
type CandidateResponse struct {
	Withdrawal   TransactionResponse   `json:"withdrawal"`
	Deposit      TransactionResponse   `json:"deposit"`
	Amount       string                `json:"amount"`
	CurrencyCode string                `json:"currency_code"`
	DaysApart    int                   `json:"days_apart"`
	Alternatives []AlternativeResponse `json:"alternatives"`
}

// SearchResponse is returned by the candidate search.
type SearchResponse struct {
	Candidates       []CandidateResponse `json:"candidates"`
	Count            int                 `json:"count"`
	WithdrawalsFound int                 `json:"withdrawals_found"`
	DepositsFound    int                 `json:"deposits_found"`
	BusinessDays     int                 `json:"business_days"`
}

// SubmitMergeResponse is returned when a merge job is accepted.
type SubmitMergeResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	PairCount int    `json:"pair_count"`
}

// OutcomeResponse is the result of one pair within a job.
type OutcomeResponse struct {
	WithdrawalID    string `json:"withdrawal_id"`
	DepositID       string `json:"deposit_id"`
	Outcome         string `json:"outcome"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	Amount          string `json:"amount,omitempty"`
	CurrencyCode    string `json:"currency_code,omitempty"`
	SourceName      string `json:"source_name,omitempty"`
	DestinationName string `json:"destination_name,omitempty"`
}

// MergeJobResponse represents a merge job's status.
type MergeJobResponse struct {
	JobID       string            `json:"job_id"`
	Status      string            `json:"status"`
	PairCount   int               `json:"pair_count"`
	CreatedAt   string            `json:"created_at"`
	CompletedAt *string           `json:"completed_at,omitempty"`
	Outcomes    []OutcomeResponse `json:"outcomes"`
	Error       *string           `json:"error,omitempty"`
}

// ActiveJobsResponse lists active merge jobs.
type ActiveJobsResponse struct {
	Jobs  []MergeJobResponse `json:"jobs"`
	Count int                `json:"count"`
}

// AllJobsResponse lists all merge jobs (including completed).
type AllJobsResponse struct {
	Jobs  []MergeJobResponse `json:"jobs"`
	Count int                `json:"count"`
}

// MessageResponse is a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}
