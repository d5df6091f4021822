package firefly

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", `"2024-01-03T00:00:00+01:00"`, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.FixedZone("", 3600))},
		{"plain date", `"2024-01-03"`, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)},
		{"empty string", `""`, time.Time{}},
		{"null", `null`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.True(t, d.Equal(tt.want), "got %v, want %v", d.Time, tt.want)
		})
	}
}

func TestDate_UnmarshalJSON_Invalid(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"03/01/2024"`), &d))
}

func TestDate_MarshalJSON(t *testing.T) {
	d := Date{Time: time.Date(2024, time.January, 3, 15, 4, 5, 0, time.UTC)}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-03"`, string(data))
}

func TestTransaction_PrimarySplit(t *testing.T) {
	t.Run("no splits yields zero split", func(t *testing.T) {
		tx := Transaction{ID: "1"}

		split := tx.PrimarySplit()

		assert.Empty(t, split.Description)
		assert.True(t, split.Amount.IsZero())
		assert.Empty(t, split.CurrencyCode)
	})

	t.Run("first split wins", func(t *testing.T) {
		tx := Transaction{
			ID: "1",
			Splits: []Split{
				{Description: "first"},
				{Description: "second"},
			},
		}

		assert.Equal(t, "first", tx.PrimarySplit().Description)
	})
}

func TestTransaction_Type(t *testing.T) {
	tx := Transaction{ID: "1", Splits: []Split{{Type: TypeDeposit}}}
	assert.Equal(t, TypeDeposit, tx.Type())

	empty := Transaction{ID: "2"}
	assert.Equal(t, TransactionType(""), empty.Type())
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 422, Message: "validation failed"}
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "validation failed")
}
