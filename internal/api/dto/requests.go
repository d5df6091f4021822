package dto

// SearchRequest is the request body for finding merge candidates.
type SearchRequest struct {
	StartDate    string   `json:"start_date"`    // YYYY-MM-DD
	EndDate      string   `json:"end_date"`      // YYYY-MM-DD
	AccountIDs   []string `json:"account_ids"`   // optional source-account filter
	BusinessDays int      `json:"business_days"` // match window (default from config)
	Limit        int      `json:"limit"`         // max withdrawals considered (0 = all)
	Order        string   `json:"order"`         // "asc" or "desc" by withdrawal date (default desc)
}

// MergePairRequest identifies one withdrawal/deposit pair to merge.
type MergePairRequest struct {
	WithdrawalID string `json:"withdrawal_id"`
	DepositID    string `json:"deposit_id"`
}

// SubmitMergeRequest is the request body for submitting a merge job.
type SubmitMergeRequest struct {
	Pairs []MergePairRequest `json:"pairs"`
}
