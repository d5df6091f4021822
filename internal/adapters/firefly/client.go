// Package firefly is a thin client for the Firefly III REST API.
//
// It covers only the surface the merge flow needs: connection
// validation, asset account listing, transaction listing in a date
// range, and the get/update/delete calls the merge executor drives.
// Requests are retried on transient failures via go-retryablehttp.
package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Config holds client configuration.
type Config struct {
	BaseURL  string        // e.g. https://firefly.example.com
	Token    string        // personal access token
	Timeout  time.Duration // per-request timeout
	RetryMax int           // transient retry attempts
}

// DefaultConfig returns sensible defaults. BaseURL and Token must still
// be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Timeout:  30 * time.Second,
		RetryMax: 2,
	}
}

// Client talks to a single Firefly III instance.
type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
	logger  *slog.Logger
}

// NewClient creates a configured client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.Logger = nil // request logging happens at our level
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    rc,
		logger:  logger,
	}
}

// Wire envelopes. Firefly wraps everything in a JSON:API-ish structure.
type transactionRead struct {
	ID         string `json:"id"`
	Attributes struct {
		Transactions []Split `json:"transactions"`
	} `json:"attributes"`
}

type accountRead struct {
	ID         string `json:"id"`
	Attributes struct {
		Name         string `json:"name"`
		Type         string `json:"type"`
		CurrencyCode string `json:"currency_code"`
	} `json:"attributes"`
}

type pageMeta struct {
	Pagination struct {
		CurrentPage int `json:"current_page"`
		TotalPages  int `json:"total_pages"`
	} `json:"pagination"`
}

func (r transactionRead) toTransaction() Transaction {
	return Transaction{ID: r.ID, Splits: r.Attributes.Transactions}
}

// Validate checks connectivity and credentials by fetching system info.
func (c *Client) Validate(ctx context.Context) (*About, error) {
	var envelope struct {
		Data About `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/about", nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("validating connection: %w", err)
	}
	return &envelope.Data, nil
}

// ListAccounts fetches all accounts of the given type ("asset" for the
// merge flow), walking every page.
func (c *Client) ListAccounts(ctx context.Context, accountType string) ([]Account, error) {
	var accounts []Account

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("type", accountType)
		query.Set("page", strconv.Itoa(page))

		var envelope struct {
			Data []accountRead `json:"data"`
			Meta pageMeta      `json:"meta"`
		}
		if err := c.do(ctx, http.MethodGet, "/api/v1/accounts", query, nil, &envelope); err != nil {
			return nil, fmt.Errorf("listing accounts page %d: %w", page, err)
		}

		for _, a := range envelope.Data {
			accounts = append(accounts, Account{
				ID:           a.ID,
				Name:         a.Attributes.Name,
				Type:         a.Attributes.Type,
				CurrencyCode: a.Attributes.CurrencyCode,
			})
		}

		if envelope.Meta.Pagination.CurrentPage >= envelope.Meta.Pagination.TotalPages {
			break
		}
	}

	return accounts, nil
}

// ListTransactions fetches transactions of one type within [start, end],
// walking pagination. A limit of 0 means no limit.
func (c *Client) ListTransactions(ctx context.Context, txType TransactionType, start, end time.Time, limit int) ([]Transaction, error) {
	var transactions []Transaction

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("type", string(txType))
		query.Set("start", start.Format("2006-01-02"))
		query.Set("end", end.Format("2006-01-02"))
		query.Set("page", strconv.Itoa(page))

		var envelope struct {
			Data []transactionRead `json:"data"`
			Meta pageMeta          `json:"meta"`
		}
		if err := c.do(ctx, http.MethodGet, "/api/v1/transactions", query, nil, &envelope); err != nil {
			return nil, fmt.Errorf("listing %s transactions page %d: %w", txType, page, err)
		}

		for _, tx := range envelope.Data {
			transactions = append(transactions, tx.toTransaction())
			if limit > 0 && len(transactions) >= limit {
				return transactions, nil
			}
		}

		if envelope.Meta.Pagination.CurrentPage >= envelope.Meta.Pagination.TotalPages {
			break
		}
	}

	return transactions, nil
}

// GetTransaction fetches a single transaction. Returns ErrNotFound if it
// no longer exists.
func (c *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	var envelope struct {
		Data transactionRead `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/transactions/"+id, nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetching transaction %s: %w", id, err)
	}

	tx := envelope.Data.toTransaction()
	return &tx, nil
}

// UpdateTransaction applies a split update to a transaction and returns
// the updated state.
func (c *Client) UpdateTransaction(ctx context.Context, id string, update SplitUpdate) (*Transaction, error) {
	body := TransactionUpdate{Transactions: []SplitUpdate{update}}

	var envelope struct {
		Data transactionRead `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/transactions/"+id, nil, body, &envelope); err != nil {
		return nil, fmt.Errorf("updating transaction %s: %w", id, err)
	}

	tx := envelope.Data.toTransaction()
	return &tx, nil
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/v1/transactions/"+id, nil, nil, nil); err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	return nil
}

// do executes one API request and decodes the response into out (which
// may be nil for calls without a useful body).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    readAPIMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// readAPIMessage extracts the "message" field from an error response.
// Firefly error bodies are {"message": "...", "exception": "..."}.
func readAPIMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Message == "" {
		return strings.TrimSpace(string(data))
	}
	return payload.Message
}
