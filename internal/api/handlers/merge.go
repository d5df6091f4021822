package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/firefly-merge-backend/internal/api/dto"
	"github.com/eshaffer321/firefly-merge-backend/internal/application/service"
)

// MergeHandler handles merge job submission and polling.
type MergeHandler struct {
	mergeService *service.MergeService
}

// NewMergeHandler creates a new merge handler.
func NewMergeHandler(mergeService *service.MergeService) *MergeHandler {
	return &MergeHandler{mergeService: mergeService}
}

// Submit handles POST /api/merge - accepts a merge job.
func (h *MergeHandler) Submit(c *gin.Context) {
	var req dto.SubmitMergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	pairs := make([]service.PairRequest, 0, len(req.Pairs))
	for _, pair := range req.Pairs {
		pairs = append(pairs, service.PairRequest{
			WithdrawalID: pair.WithdrawalID,
			DepositID:    pair.DepositID,
		})
	}

	jobID, err := h.mergeService.SubmitMerge(c.Request.Context(), pairs)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	c.JSON(http.StatusAccepted, dto.SubmitMergeResponse{
		JobID:     jobID,
		Status:    string(service.StatusPending),
		PairCount: len(pairs),
	})
}

// Get handles GET /api/merge/:jobId - gets merge job status.
func (h *MergeHandler) Get(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := h.mergeService.GetJob(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("merge job"))
		return
	}

	c.JSON(http.StatusOK, toMergeJobResponse(job))
}

// ListActive handles GET /api/merge/active - lists active merge jobs.
func (h *MergeHandler) ListActive(c *gin.Context) {
	jobs := h.mergeService.ListActiveJobs()

	response := dto.ActiveJobsResponse{
		Jobs:  make([]dto.MergeJobResponse, 0, len(jobs)),
		Count: len(jobs),
	}
	for _, job := range jobs {
		response.Jobs = append(response.Jobs, toMergeJobResponse(job))
	}

	c.JSON(http.StatusOK, response)
}

// ListAll handles GET /api/merge - lists all merge jobs.
func (h *MergeHandler) ListAll(c *gin.Context) {
	jobs := h.mergeService.ListAllJobs()

	response := dto.AllJobsResponse{
		Jobs:  make([]dto.MergeJobResponse, 0, len(jobs)),
		Count: len(jobs),
	}
	for _, job := range jobs {
		response.Jobs = append(response.Jobs, toMergeJobResponse(job))
	}

	c.JSON(http.StatusOK, response)
}

// toMergeJobResponse converts a service model to an API response.
func toMergeJobResponse(job *service.MergeJob) dto.MergeJobResponse {
	response := dto.MergeJobResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		PairCount: len(job.Pairs),
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		Outcomes:  make([]dto.OutcomeResponse, 0, len(job.Outcomes)),
	}

	for _, outcome := range job.Outcomes {
		response.Outcomes = append(response.Outcomes, dto.OutcomeResponse{
			WithdrawalID:    outcome.WithdrawalID,
			DepositID:       outcome.DepositID,
			Outcome:         string(outcome.Kind),
			Success:         outcome.Success(),
			Error:           outcome.Error,
			Amount:          outcome.Amount,
			CurrencyCode:    outcome.CurrencyCode,
			SourceName:      outcome.SourceName,
			DestinationName: outcome.DestinationName,
		})
	}

	if job.CompletedAt != nil {
		completedAt := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedAt
	}

	if job.Error != nil {
		errMsg := job.Error.Error()
		response.Error = &errMsg
	}

	return response
}
