package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/firefly-merge-backend/internal/api/dto"
	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/storage"
)

// HistoryHandler serves the merge audit history.
type HistoryHandler struct {
	repo storage.Repository
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(repo storage.Repository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// List handles GET /api/history.
func (h *HistoryHandler) List(c *gin.Context) {
	filters := storage.MergeRecordFilters{
		JobID:   c.Query("job_id"),
		Outcome: c.Query("outcome"),
		Limit:   parseIntQuery(c, "limit", 50),
		Offset:  parseIntQuery(c, "offset", 0),
	}

	result, err := h.repo.ListMergeRecords(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, result)
}

// Stats handles GET /api/history/stats.
func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Runs handles GET /api/history/runs.
func (h *HistoryHandler) Runs(c *gin.Context) {
	runs, err := h.repo.ListJobRuns(parseIntQuery(c, "limit", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
