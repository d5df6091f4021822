// Package merge collapses a matched withdrawal/deposit pair into a
// single Firefly III transfer.
//
// The ledger API offers no multi-call atomicity, so the two mutating
// calls (update, then delete) can be split by a failure. That state is
// modeled explicitly as a partial failure rather than treated as a bug;
// see OutcomeKind.
package merge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/eshaffer321/firefly-merge-backend/internal/adapters/firefly"
)

// LedgerAPI is the slice of the Firefly client the executor drives.
type LedgerAPI interface {
	GetTransaction(ctx context.Context, id string) (*firefly.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, update firefly.SplitUpdate) (*firefly.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// Executor merges pairs against a ledger.
type Executor struct {
	api         LedgerAPI
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewExecutor creates an executor. callTimeout bounds each individual
// API call; zero means no executor-level bound beyond the client's own.
func NewExecutor(api LedgerAPI, callTimeout time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		api:         api,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// MergePair merges one pair:
//
//  1. Re-fetch both transactions. A missing transaction or one that is
//     already a transfer means a concurrent actor got there first.
//  2. Convert the withdrawal into a transfer pointing at the deposit's
//     destination account. The withdrawal's id, description and date
//     survive.
//  3. Delete the now-redundant deposit.
//
// Failures before step 2 completes leave the ledger untouched (clean
// failure). A failure in step 3 leaves a transfer plus a stale deposit
// (partial failure) which must not be retried blindly.
func (e *Executor) MergePair(ctx context.Context, withdrawalID, depositID string) Outcome {
	outcome := Outcome{WithdrawalID: withdrawalID, DepositID: depositID}

	withdrawal, err := e.getTransaction(ctx, withdrawalID)
	if err != nil {
		return e.fetchFailure(outcome, err)
	}
	deposit, err := e.getTransaction(ctx, depositID)
	if err != nil {
		return e.fetchFailure(outcome, err)
	}

	if withdrawal.Type() == firefly.TypeTransfer || deposit.Type() == firefly.TypeTransfer {
		outcome.Kind = KindAlreadyMerged
		outcome.Error = "transaction was already converted to a transfer"
		return outcome
	}

	withdrawalSplit := withdrawal.PrimarySplit()
	depositSplit := deposit.PrimarySplit()

	update := firefly.SplitUpdate{
		Type:                 firefly.TypeTransfer,
		SourceID:             withdrawalSplit.SourceID,
		DestinationID:        depositSplit.DestinationID,
		ProcessDate:          depositSplit.Date.Format("2006-01-02"),
		TransactionJournalID: withdrawalSplit.TransactionJournalID,
	}

	if _, err := e.updateTransaction(ctx, withdrawalID, update); err != nil {
		outcome.Kind = KindCleanFailure
		outcome.Error = err.Error()
		e.logger.Warn("merge update failed, ledger unchanged",
			"withdrawal_id", withdrawalID,
			"deposit_id", depositID,
			"error", err,
		)
		return outcome
	}

	if err := e.deleteTransaction(ctx, depositID); err != nil {
		outcome.Kind = KindPartialFailure
		outcome.Error = err.Error()
		e.logger.Error("merge delete failed after successful update, manual cleanup required",
			"withdrawal_id", withdrawalID,
			"deposit_id", depositID,
			"error", err,
		)
		return outcome
	}

	outcome.Kind = KindSuccess
	outcome.Amount = withdrawalSplit.Amount.Abs().String()
	outcome.CurrencyCode = withdrawalSplit.CurrencyCode
	outcome.SourceName = withdrawalSplit.SourceName
	outcome.DestinationName = depositSplit.DestinationName

	e.logger.Info("pair merged",
		"withdrawal_id", withdrawalID,
		"deposit_id", depositID,
		"amount", outcome.Amount,
		"currency", outcome.CurrencyCode,
	)
	return outcome
}

// fetchFailure classifies a re-fetch error: a vanished transaction is a
// stale candidate, anything else is a clean failure.
func (e *Executor) fetchFailure(outcome Outcome, err error) Outcome {
	if errors.Is(err, firefly.ErrNotFound) {
		outcome.Kind = KindAlreadyMerged
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Kind = KindCleanFailure
	outcome.Error = err.Error()
	return outcome
}

func (e *Executor) getTransaction(ctx context.Context, id string) (*firefly.Transaction, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.api.GetTransaction(ctx, id)
}

func (e *Executor) updateTransaction(ctx context.Context, id string, update firefly.SplitUpdate) (*firefly.Transaction, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.api.UpdateTransaction(ctx, id, update)
}

func (e *Executor) deleteTransaction(ctx context.Context, id string) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.api.DeleteTransaction(ctx, id)
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.callTimeout)
}
