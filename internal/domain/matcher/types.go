package matcher

import (
	"github.com/eshaffer321/firefly-merge-backend/internal/adapters/firefly"
)

// Config holds matcher configuration.
type Config struct {
	MaxBusinessDays int // date window for a match (default: 5)
	MaxAlternatives int // alternatives retained per candidate (default: 5)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxBusinessDays: 5,
		MaxAlternatives: 5,
	}
}

// Alternative is a deposit that also matched a withdrawal but was not
// selected as its primary match. Alternatives are display-only; merging
// one requires re-selection by the caller.
type Alternative struct {
	Deposit   firefly.Transaction
	DaysApart int
}

// Candidate is a proposed withdrawal/deposit pairing eligible for
// merging, plus the ranked alternatives for the same withdrawal.
type Candidate struct {
	Withdrawal   firefly.Transaction
	Deposit      firefly.Transaction
	DaysApart    int
	Alternatives []Alternative
}
