// Package handlers contains the gin HTTP handlers for the merge API.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/firefly-merge-backend/internal/adapters/firefly"
	"github.com/eshaffer321/firefly-merge-backend/internal/api/dto"
)

// LedgerClient is the slice of the Firefly client the read-side
// handlers need. *firefly.Client satisfies it.
type LedgerClient interface {
	ListAccounts(ctx context.Context, accountType string) ([]firefly.Account, error)
	ListTransactions(ctx context.Context, txType firefly.TransactionType, start, end time.Time, limit int) ([]firefly.Transaction, error)
}

// HealthHandler handles the health check endpoint.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Get handles GET /health.
func (h *HealthHandler) Get(c *gin.Context) {
	c.JSON(200, dto.NewHealthResponse())
}

// toTransactionResponse flattens a transaction's primary split for
// API responses.
func toTransactionResponse(tx firefly.Transaction) dto.TransactionResponse {
	split := tx.PrimarySplit()

	resp := dto.TransactionResponse{
		ID:              tx.ID,
		Type:            string(split.Type),
		Description:     split.Description,
		Amount:          split.Amount.Abs().String(),
		CurrencyCode:    split.CurrencyCode,
		SourceID:        split.SourceID,
		SourceName:      split.SourceName,
		DestinationID:   split.DestinationID,
		DestinationName: split.DestinationName,
	}
	if !split.Date.IsZero() {
		resp.Date = split.Date.Format("2006-01-02")
	}
	return resp
}
