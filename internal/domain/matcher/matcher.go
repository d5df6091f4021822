// Package matcher finds withdrawal/deposit pairs that look like the same
// bank transfer imported twice.
//
// A match requires the exact same amount (absolute value), the same
// currency, and a business-day distance within the configured window.
// Matching is greedy over the withdrawals in the order supplied: each
// deposit is proposed as a primary match at most once, so callers must
// pass withdrawals in a deterministic order (e.g. sorted by date) to get
// deterministic output.
package matcher

import (
	"sort"

	"github.com/eshaffer321/firefly-merge-backend/internal/adapters/firefly"
)

// Matcher pairs withdrawals with deposits.
type Matcher struct {
	config Config
}

// New creates a matcher with the given config.
func New(config Config) *Matcher {
	return &Matcher{config: config}
}

// ranked is a deposit under consideration for one withdrawal.
type ranked struct {
	deposit   firefly.Transaction
	daysApart int
}

// FindMatches proposes candidate pairs. Deposits are bucketed by
// (absolute amount, currency); for each withdrawal the deposits in its
// bucket within the business-day window are ranked by distance, ties
// broken by ascending deposit id. The top-ranked deposit not yet
// consumed as a primary match becomes this withdrawal's primary match;
// the rest are retained as alternatives (consumed deposits included, up
// to MaxAlternatives). A withdrawal whose every candidate is already
// consumed yields no pair.
//
// Empty input on either side yields an empty result.
func (m *Matcher) FindMatches(withdrawals, deposits []firefly.Transaction) []Candidate {
	buckets := make(map[string][]firefly.Transaction)
	for _, deposit := range deposits {
		split := deposit.PrimarySplit()
		if split.Amount.IsZero() && split.CurrencyCode == "" {
			continue // malformed transaction without a usable split
		}
		key := bucketKey(split)
		buckets[key] = append(buckets[key], deposit)
	}

	var candidates []Candidate
	consumed := make(map[string]bool)

	for _, withdrawal := range withdrawals {
		split := withdrawal.PrimarySplit()
		bucket := buckets[bucketKey(split)]
		if len(bucket) == 0 {
			continue
		}

		var matches []ranked
		for _, deposit := range bucket {
			if deposit.ID == withdrawal.ID {
				continue
			}
			days := BusinessDaysApart(split.Date.Time, deposit.PrimarySplit().Date.Time)
			if days > m.config.MaxBusinessDays {
				continue
			}
			matches = append(matches, ranked{deposit: deposit, daysApart: days})
		}
		if len(matches) == 0 {
			continue
		}

		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].daysApart != matches[j].daysApart {
				return matches[i].daysApart < matches[j].daysApart
			}
			return matches[i].deposit.ID < matches[j].deposit.ID
		})

		primaryIdx := -1
		for i, match := range matches {
			if !consumed[match.deposit.ID] {
				primaryIdx = i
				break
			}
		}
		if primaryIdx < 0 {
			// Every matching deposit is already someone's primary match.
			continue
		}

		primary := matches[primaryIdx]
		consumed[primary.deposit.ID] = true

		var alternatives []Alternative
		for i, match := range matches {
			if i == primaryIdx {
				continue
			}
			if m.config.MaxAlternatives > 0 && len(alternatives) >= m.config.MaxAlternatives {
				break
			}
			alternatives = append(alternatives, Alternative{
				Deposit:   match.deposit,
				DaysApart: match.daysApart,
			})
		}

		candidates = append(candidates, Candidate{
			Withdrawal:   withdrawal,
			Deposit:      primary.deposit,
			DaysApart:    primary.daysApart,
			Alternatives: alternatives,
		})
	}

	return candidates
}

// bucketKey groups transactions that could describe the same transfer.
// Withdrawal and deposit legs carry the amount with the same sign
// convention in Firefly, but compare on absolute value to be safe.
func bucketKey(split firefly.Split) string {
	return split.Amount.Abs().String() + "|" + split.CurrencyCode
}
