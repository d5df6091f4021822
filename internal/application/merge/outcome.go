package merge

// OutcomeKind classifies how a merge attempt ended.
type OutcomeKind string

const (
	// KindSuccess: withdrawal converted to a transfer, deposit deleted.
	KindSuccess OutcomeKind = "success"

	// KindCleanFailure: no ledger state changed. The pair remains
	// retryable as-is.
	KindCleanFailure OutcomeKind = "clean_failure"

	// KindPartialFailure: the withdrawal was converted to a transfer but
	// the deposit could not be deleted. The ledger now holds a transfer
	// plus an orphaned deposit. Never retried automatically; requires
	// manual cleanup.
	KindPartialFailure OutcomeKind = "partial_failure"

	// KindAlreadyMerged: either transaction vanished or was already a
	// transfer when re-fetched. The candidate was stale; re-derive pairs
	// from a fresh search before retrying.
	KindAlreadyMerged OutcomeKind = "already_merged"
)

// Outcome is the result of merging one withdrawal/deposit pair.
type Outcome struct {
	WithdrawalID string
	DepositID    string
	Kind         OutcomeKind
	Error        string // underlying API message, empty on success

	// Display/audit fields, populated on success.
	Amount          string
	CurrencyCode    string
	SourceName      string
	DestinationName string
}

// Success reports whether the pair was merged.
func (o Outcome) Success() bool {
	return o.Kind == KindSuccess
}

// Retryable reports whether the same pair may safely be attempted again
// without a fresh search.
func (o Outcome) Retryable() bool {
	return o.Kind == KindCleanFailure
}
