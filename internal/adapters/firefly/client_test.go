package firefly

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		BaseURL:  server.URL,
		Token:    "test-token",
		Timeout:  5 * time.Second,
		RetryMax: 0,
	}, nil)
}

func TestClient_Validate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/about", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"version": "6.1.0", "api_version": "2.0.0"},
		})
	})

	about, err := client.Validate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "6.1.0", about.Version)
	assert.Equal(t, "2.0.0", about.APIVersion)
}

func TestClient_ListTransactions_Paginates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/transactions", r.URL.Path)
		assert.Equal(t, "withdrawal", r.URL.Query().Get("type"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("start"))
		assert.Equal(t, "2024-01-31", r.URL.Query().Get("end"))

		page := r.URL.Query().Get("page")
		fmt.Fprintf(w, `{
			"data": [{
				"id": "tx-page-%s",
				"attributes": {"transactions": [{"type": "withdrawal", "amount": "10.00", "currency_code": "USD", "date": "2024-01-05"}]}
			}],
			"meta": {"pagination": {"current_page": %s, "total_pages": 2}}
		}`, page, page)
	})

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	transactions, err := client.ListTransactions(context.Background(), TypeWithdrawal, start, end, 0)

	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "tx-page-1", transactions[0].ID)
	assert.Equal(t, "tx-page-2", transactions[1].ID)
	assert.Equal(t, "USD", transactions[0].PrimarySplit().CurrencyCode)
}

func TestClient_ListTransactions_StopsAtLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"data": [
				{"id": "1", "attributes": {"transactions": [{"amount": "1.00"}]}},
				{"id": "2", "attributes": {"transactions": [{"amount": "2.00"}]}},
				{"id": "3", "attributes": {"transactions": [{"amount": "3.00"}]}}
			],
			"meta": {"pagination": {"current_page": 1, "total_pages": 10}}
		}`)
	})

	transactions, err := client.ListTransactions(context.Background(), TypeDeposit, time.Now(), time.Now(), 2)

	require.NoError(t, err)
	assert.Len(t, transactions, 2)
}

func TestClient_ListAccounts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts", r.URL.Path)
		assert.Equal(t, "asset", r.URL.Query().Get("type"))

		fmt.Fprint(w, `{
			"data": [{"id": "1", "attributes": {"name": "Checking", "type": "asset", "currency_code": "USD"}}],
			"meta": {"pagination": {"current_page": 1, "total_pages": 1}}
		}`)
	})

	accounts, err := client.ListAccounts(context.Background(), "asset")

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Checking", accounts[0].Name)
	assert.Equal(t, "USD", accounts[0].CurrencyCode)
}

func TestClient_GetTransaction_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetTransaction(context.Background(), "999")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClient_UpdateTransaction(t *testing.T) {
	var gotBody TransactionUpdate

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/transactions/100", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		fmt.Fprint(w, `{"data": {"id": "100", "attributes": {"transactions": [{"type": "transfer", "amount": "250.00"}]}}}`)
	})

	update := SplitUpdate{
		Type:                 TypeTransfer,
		SourceID:             "1",
		DestinationID:        "2",
		ProcessDate:          "2024-01-05",
		TransactionJournalID: "journal-100",
	}

	tx, err := client.UpdateTransaction(context.Background(), "100", update)

	require.NoError(t, err)
	assert.Equal(t, TypeTransfer, tx.Type())

	require.Len(t, gotBody.Transactions, 1)
	assert.Equal(t, update, gotBody.Transactions[0])
}

func TestClient_DeleteTransaction(t *testing.T) {
	var deleted bool

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/transactions/200", r.URL.Path)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteTransaction(context.Background(), "200"))
	assert.True(t, deleted)
}

func TestClient_SurfacesAPIErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message": "Invalid destination account.", "exception": "ValidationException"}`)
	})

	_, err := client.UpdateTransaction(context.Background(), "100", SplitUpdate{})

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "Invalid destination account.", apiErr.Message)
}
