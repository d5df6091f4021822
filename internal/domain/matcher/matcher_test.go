package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/firefly-merge-backend/internal/adapters/firefly"
)

// tx builds a single-split transaction for matcher tests.
func tx(id string, txType firefly.TransactionType, day time.Time, amount, currency string) firefly.Transaction {
	return firefly.Transaction{
		ID: id,
		Splits: []firefly.Split{{
			Type:         txType,
			Date:         firefly.Date{Time: day},
			Amount:       decimal.RequireFromString(amount),
			CurrencyCode: currency,
		}},
	}
}

func withdrawal(id string, day time.Time, amount, currency string) firefly.Transaction {
	return tx(id, firefly.TypeWithdrawal, day, amount, currency)
}

func deposit(id string, day time.Time, amount, currency string) firefly.Transaction {
	return tx(id, firefly.TypeDeposit, day, amount, currency)
}

func TestFindMatches_PairsSameAmountWithinWindow(t *testing.T) {
	m := New(DefaultConfig())

	wed := date(2024, time.January, 3)
	fri := date(2024, time.January, 5)

	candidates := m.FindMatches(
		[]firefly.Transaction{withdrawal("100", wed, "250.00", "USD")},
		[]firefly.Transaction{deposit("200", fri, "250.00", "USD")},
	)

	require.Len(t, candidates, 1)
	assert.Equal(t, "100", candidates[0].Withdrawal.ID)
	assert.Equal(t, "200", candidates[0].Deposit.ID)
	assert.Equal(t, 2, candidates[0].DaysApart)
	assert.Empty(t, candidates[0].Alternatives)
}

func TestFindMatches_RequiresExactAmountAndCurrency(t *testing.T) {
	m := New(DefaultConfig())
	day := date(2024, time.January, 3)

	t.Run("different amount", func(t *testing.T) {
		candidates := m.FindMatches(
			[]firefly.Transaction{withdrawal("1", day, "250.00", "USD")},
			[]firefly.Transaction{deposit("2", day, "250.01", "USD")},
		)
		assert.Empty(t, candidates)
	})

	t.Run("different currency", func(t *testing.T) {
		candidates := m.FindMatches(
			[]firefly.Transaction{withdrawal("1", day, "250.00", "USD")},
			[]firefly.Transaction{deposit("2", day, "250.00", "EUR")},
		)
		assert.Empty(t, candidates)
	})
}

func TestFindMatches_RespectsBusinessDayWindow(t *testing.T) {
	m := New(Config{MaxBusinessDays: 2, MaxAlternatives: 5})

	wed := date(2024, time.January, 3)

	t.Run("at the boundary", func(t *testing.T) {
		fri := date(2024, time.January, 5) // 2 business days
		candidates := m.FindMatches(
			[]firefly.Transaction{withdrawal("1", wed, "50.00", "USD")},
			[]firefly.Transaction{deposit("2", fri, "50.00", "USD")},
		)
		assert.Len(t, candidates, 1)
	})

	t.Run("past the boundary", func(t *testing.T) {
		mon := date(2024, time.January, 8) // 3 business days
		candidates := m.FindMatches(
			[]firefly.Transaction{withdrawal("1", wed, "50.00", "USD")},
			[]firefly.Transaction{deposit("2", mon, "50.00", "USD")},
		)
		assert.Empty(t, candidates)
	})
}

func TestFindMatches_WeekendGapStillMatches(t *testing.T) {
	m := New(Config{MaxBusinessDays: 1, MaxAlternatives: 5})

	fri := date(2024, time.January, 5)
	mon := date(2024, time.January, 8)

	candidates := m.FindMatches(
		[]firefly.Transaction{withdrawal("1", fri, "75.00", "USD")},
		[]firefly.Transaction{deposit("2", mon, "75.00", "USD")},
	)

	require.Len(t, candidates, 1)
	assert.Equal(t, 1, candidates[0].DaysApart)
}

func TestFindMatches_PrefersClosestDeposit(t *testing.T) {
	m := New(DefaultConfig())

	wed := date(2024, time.January, 3)

	candidates := m.FindMatches(
		[]firefly.Transaction{withdrawal("1", wed, "100.00", "USD")},
		[]firefly.Transaction{
			deposit("far", date(2024, time.January, 8), "100.00", "USD"),
			deposit("near", date(2024, time.January, 4), "100.00", "USD"),
		},
	)

	require.Len(t, candidates, 1)
	assert.Equal(t, "near", candidates[0].Deposit.ID)
	require.Len(t, candidates[0].Alternatives, 1)
	assert.Equal(t, "far", candidates[0].Alternatives[0].Deposit.ID)
}

func TestFindMatches_TieBrokenByDepositID(t *testing.T) {
	m := New(DefaultConfig())

	wed := date(2024, time.January, 3)
	thu := date(2024, time.January, 4)

	candidates := m.FindMatches(
		[]firefly.Transaction{withdrawal("1", wed, "100.00", "USD")},
		[]firefly.Transaction{
			deposit("205", thu, "100.00", "USD"),
			deposit("203", thu, "100.00", "USD"),
		},
	)

	require.Len(t, candidates, 1)
	assert.Equal(t, "203", candidates[0].Deposit.ID)
}

func TestFindMatches_DepositConsumedOnlyOnce(t *testing.T) {
	m := New(DefaultConfig())

	day := date(2024, time.January, 3)

	candidates := m.FindMatches(
		[]firefly.Transaction{
			withdrawal("w1", day, "100.00", "USD"),
			withdrawal("w2", day, "100.00", "USD"),
		},
		[]firefly.Transaction{
			deposit("d1", day, "100.00", "USD"),
			deposit("d2", day, "100.00", "USD"),
		},
	)

	require.Len(t, candidates, 2)
	assert.NotEqual(t, candidates[0].Deposit.ID, candidates[1].Deposit.ID)
}

func TestFindMatches_AllDepositsConsumedYieldsNoPair(t *testing.T) {
	m := New(DefaultConfig())

	day := date(2024, time.January, 3)

	// Two withdrawals compete for a single deposit: the first wins it as
	// a primary match, the second gets nothing.
	candidates := m.FindMatches(
		[]firefly.Transaction{
			withdrawal("w1", day, "100.00", "USD"),
			withdrawal("w2", day, "100.00", "USD"),
		},
		[]firefly.Transaction{
			deposit("d1", day, "100.00", "USD"),
		},
	)

	require.Len(t, candidates, 1)
	assert.Equal(t, "w1", candidates[0].Withdrawal.ID)
}

func TestFindMatches_ConsumedDepositStaysAnAlternative(t *testing.T) {
	m := New(DefaultConfig())

	day := date(2024, time.January, 3)

	candidates := m.FindMatches(
		[]firefly.Transaction{
			withdrawal("w1", day, "100.00", "USD"),
			withdrawal("w2", day, "100.00", "USD"),
		},
		[]firefly.Transaction{
			deposit("d1", day, "100.00", "USD"),
			deposit("d2", day, "100.00", "USD"),
		},
	)

	require.Len(t, candidates, 2)
	// w2's primary is d2 (d1 consumed), but d1 is still listed as an
	// alternative for operator review.
	assert.Equal(t, "d2", candidates[1].Deposit.ID)
	require.Len(t, candidates[1].Alternatives, 1)
	assert.Equal(t, "d1", candidates[1].Alternatives[0].Deposit.ID)
}

func TestFindMatches_AlternativesCapped(t *testing.T) {
	m := New(Config{MaxBusinessDays: 5, MaxAlternatives: 2})

	day := date(2024, time.January, 3)

	deposits := []firefly.Transaction{
		deposit("d1", day, "100.00", "USD"),
		deposit("d2", day, "100.00", "USD"),
		deposit("d3", day, "100.00", "USD"),
		deposit("d4", day, "100.00", "USD"),
	}

	candidates := m.FindMatches(
		[]firefly.Transaction{withdrawal("w1", day, "100.00", "USD")},
		deposits,
	)

	require.Len(t, candidates, 1)
	assert.Len(t, candidates[0].Alternatives, 2)
}

func TestFindMatches_Deterministic(t *testing.T) {
	m := New(DefaultConfig())

	day := date(2024, time.January, 3)

	withdrawals := []firefly.Transaction{
		withdrawal("w1", day, "10.00", "USD"),
		withdrawal("w2", day, "20.00", "USD"),
		withdrawal("w3", day, "10.00", "USD"),
	}
	deposits := []firefly.Transaction{
		deposit("d3", day, "10.00", "USD"),
		deposit("d1", day, "20.00", "USD"),
		deposit("d2", day, "10.00", "USD"),
	}

	first := m.FindMatches(withdrawals, deposits)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.FindMatches(withdrawals, deposits))
	}

	// Candidates come out in withdrawal order.
	require.Len(t, first, 3)
	assert.Equal(t, "w1", first[0].Withdrawal.ID)
	assert.Equal(t, "w2", first[1].Withdrawal.ID)
	assert.Equal(t, "w3", first[2].Withdrawal.ID)
}

func TestFindMatches_EmptyInputs(t *testing.T) {
	m := New(DefaultConfig())
	day := date(2024, time.January, 3)

	assert.Empty(t, m.FindMatches(nil, nil))
	assert.Empty(t, m.FindMatches(
		[]firefly.Transaction{withdrawal("w1", day, "10.00", "USD")},
		nil,
	))
	assert.Empty(t, m.FindMatches(
		nil,
		[]firefly.Transaction{deposit("d1", day, "10.00", "USD")},
	))
}

func TestFindMatches_SkipsMalformedDeposit(t *testing.T) {
	m := New(DefaultConfig())
	day := date(2024, time.January, 3)

	malformed := firefly.Transaction{ID: "broken"} // no splits at all

	candidates := m.FindMatches(
		[]firefly.Transaction{withdrawal("w1", day, "10.00", "USD")},
		[]firefly.Transaction{malformed},
	)

	assert.Empty(t, candidates)
}

func TestFindMatches_NeverPairsTransactionWithItself(t *testing.T) {
	m := New(DefaultConfig())
	day := date(2024, time.January, 3)

	// Same ledger id on both sides, e.g. a caller passing overlapping
	// result sets.
	candidates := m.FindMatches(
		[]firefly.Transaction{withdrawal("42", day, "10.00", "USD")},
		[]firefly.Transaction{deposit("42", day, "10.00", "USD")},
	)

	assert.Empty(t, candidates)
}
