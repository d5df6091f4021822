package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/firefly-merge-backend/internal/api/dto"
)

// AccountsHandler lists asset accounts for the search form.
type AccountsHandler struct {
	client LedgerClient
	logger *slog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(client LedgerClient, logger *slog.Logger) *AccountsHandler {
	return &AccountsHandler{client: client, logger: logger}
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(c *gin.Context) {
	accounts, err := h.client.ListAccounts(c.Request.Context(), "asset")
	if err != nil {
		h.logger.Error("failed to list accounts", "error", err)
		c.JSON(http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	}

	response := dto.AccountListResponse{
		Accounts: make([]dto.AccountResponse, 0, len(accounts)),
		Count:    len(accounts),
	}
	for _, account := range accounts {
		response.Accounts = append(response.Accounts, dto.AccountResponse{
			ID:           account.ID,
			Name:         account.Name,
			Type:         account.Type,
			CurrencyCode: account.CurrencyCode,
		})
	}

	c.JSON(http.StatusOK, response)
}
