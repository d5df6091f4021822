package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/firefly-merge-backend/internal/adapters/firefly"
	"github.com/eshaffer321/firefly-merge-backend/internal/api/dto"
	"github.com/eshaffer321/firefly-merge-backend/internal/domain/matcher"
)

// SearchHandler finds merge candidates for a date range.
type SearchHandler struct {
	client   LedgerClient
	defaults matcher.Config
	logger   *slog.Logger
}

// NewSearchHandler creates a new search handler. defaults supplies the
// business-day window used when a request does not specify one.
func NewSearchHandler(client LedgerClient, defaults matcher.Config, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		client:   client,
		defaults: defaults,
		logger:   logger,
	}
}

// Search handles POST /api/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError("start_date must be YYYY-MM-DD"))
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError("end_date must be YYYY-MM-DD"))
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, dto.ValidationError("end_date is before start_date"))
		return
	}

	businessDays := req.BusinessDays
	if businessDays <= 0 {
		businessDays = h.defaults.MaxBusinessDays
	}

	ctx := c.Request.Context()

	withdrawals, err := h.client.ListTransactions(ctx, firefly.TypeWithdrawal, start, end, 0)
	if err != nil {
		h.logger.Error("failed to fetch withdrawals", "error", err)
		c.JSON(http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	}
	deposits, err := h.client.ListTransactions(ctx, firefly.TypeDeposit, start, end, 0)
	if err != nil {
		h.logger.Error("failed to fetch deposits", "error", err)
		c.JSON(http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	}

	withdrawals = filterBySourceAccount(withdrawals, req.AccountIDs)

	// The matcher is greedy over withdrawal order, so fix a
	// deterministic order before matching.
	sortByDate(withdrawals, req.Order == "asc")
	if req.Limit > 0 && len(withdrawals) > req.Limit {
		withdrawals = withdrawals[:req.Limit]
	}

	m := matcher.New(matcher.Config{
		MaxBusinessDays: businessDays,
		MaxAlternatives: h.defaults.MaxAlternatives,
	})
	candidates := m.FindMatches(withdrawals, deposits)

	response := dto.SearchResponse{
		Candidates:       make([]dto.CandidateResponse, 0, len(candidates)),
		Count:            len(candidates),
		WithdrawalsFound: len(withdrawals),
		DepositsFound:    len(deposits),
		BusinessDays:     businessDays,
	}
	for _, candidate := range candidates {
		response.Candidates = append(response.Candidates, toCandidateResponse(candidate))
	}

	c.JSON(http.StatusOK, response)
}

// filterBySourceAccount keeps withdrawals whose source account is in
// ids. An empty filter keeps everything.
func filterBySourceAccount(withdrawals []firefly.Transaction, ids []string) []firefly.Transaction {
	if len(ids) == 0 {
		return withdrawals
	}

	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}

	filtered := withdrawals[:0]
	for _, tx := range withdrawals {
		if allowed[tx.PrimarySplit().SourceID] {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// sortByDate orders transactions by primary split date, ties broken by
// id so the order is total.
func sortByDate(transactions []firefly.Transaction, ascending bool) {
	sort.SliceStable(transactions, func(i, j int) bool {
		di := transactions[i].PrimarySplit().Date.Time
		dj := transactions[j].PrimarySplit().Date.Time
		if !di.Equal(dj) {
			if ascending {
				return di.Before(dj)
			}
			return di.After(dj)
		}
		return transactions[i].ID < transactions[j].ID
	})
}

func toCandidateResponse(candidate matcher.Candidate) dto.CandidateResponse {
	split := candidate.Withdrawal.PrimarySplit()

	resp := dto.CandidateResponse{
		Withdrawal:   toTransactionResponse(candidate.Withdrawal),
		Deposit:      toTransactionResponse(candidate.Deposit),
		Amount:       split.Amount.Abs().String(),
		CurrencyCode: split.CurrencyCode,
		DaysApart:    candidate.DaysApart,
		Alternatives: make([]dto.AlternativeResponse, 0, len(candidate.Alternatives)),
	}
	for _, alt := range candidate.Alternatives {
		resp.Alternatives = append(resp.Alternatives, dto.AlternativeResponse{
			Deposit:   toTransactionResponse(alt.Deposit),
			DaysApart: alt.DaysApart,
		})
	}
	return resp
}
