package firefly

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the Firefly III transaction type.
type TransactionType string

const (
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDeposit    TransactionType = "deposit"
	TypeTransfer   TransactionType = "transfer"
)

// Date wraps time.Time to handle the date formats Firefly III returns.
// The API emits RFC3339 timestamps for transaction dates but plain
// YYYY-MM-DD strings are accepted on writes.
type Date struct {
	time.Time
}

// UnmarshalJSON parses either an RFC3339 timestamp or a plain date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}

	return fmt.Errorf("unrecognized date format: %q", s)
}

// MarshalJSON emits a plain date, which Firefly accepts everywhere.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// Split is one leg of a Firefly III transaction. The fields mirror the
// API's transaction split object; amounts are decimal strings on the wire.
type Split struct {
	TransactionJournalID string          `json:"transaction_journal_id"`
	Type                 TransactionType `json:"type"`
	Date                 Date            `json:"date"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
	CurrencyID           string          `json:"currency_id"`
	CurrencyCode         string          `json:"currency_code"`
	SourceID             string          `json:"source_id"`
	SourceName           string          `json:"source_name"`
	DestinationID        string          `json:"destination_id"`
	DestinationName      string          `json:"destination_name"`
}

// Transaction is a Firefly III transaction group: an id plus one or more
// splits. Instances are read-only snapshots of ledger state.
type Transaction struct {
	ID     string
	Splits []Split
}

// PrimarySplit returns split index 0, or the zero Split when the
// transaction carries none. Multi-split transactions are treated as
// having a single relevant split.
func (t Transaction) PrimarySplit() Split {
	if len(t.Splits) == 0 {
		return Split{}
	}
	return t.Splits[0]
}

// Type returns the transaction type as reported by the primary split.
func (t Transaction) Type() TransactionType {
	return t.PrimarySplit().Type
}

// Account is a Firefly III account (asset accounts are what the merge
// flow cares about).
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	CurrencyCode string `json:"currency_code"`
}

// About holds the system info returned by /api/v1/about, used to
// validate connectivity and credentials.
type About struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	OS         string `json:"os"`
}

// SplitUpdate is the writable subset of a split used when converting a
// withdrawal into a transfer.
type SplitUpdate struct {
	Type                 TransactionType `json:"type,omitempty"`
	SourceID             string          `json:"source_id,omitempty"`
	DestinationID        string          `json:"destination_id,omitempty"`
	ProcessDate          string          `json:"process_date,omitempty"`
	TransactionJournalID string          `json:"transaction_journal_id,omitempty"`
}

// TransactionUpdate is the request body for PUT /api/v1/transactions/{id}.
type TransactionUpdate struct {
	Transactions []SplitUpdate `json:"transactions"`
}
