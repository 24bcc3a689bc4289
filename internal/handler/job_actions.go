package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/security/middleware"
	"github.com/autodoc-au/autodoc/internal/service"
)

// ConfirmPaymentRequest carries the amount the customer is paying. The
// amount becomes the job's final price when the job closes.
type ConfirmPaymentRequest struct {
	Amount float64 `json:"amount"`
}

// JobActionsHandler drives jobs through their lifecycle
type JobActionsHandler struct {
	jobService *service.JobService
	logger     *slog.Logger
}

// NewJobActionsHandler creates a new job actions handler
func NewJobActionsHandler(jobService *service.JobService, logger *slog.Logger) *JobActionsHandler {
	return &JobActionsHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// Accept handles POST /api/jobs/{id}/accept requests
func (h *JobActionsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.jobService.Accept)
}

// Complete handles POST /api/jobs/{id}/complete requests
func (h *JobActionsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.jobService.Complete)
}

// Cancel handles POST /api/jobs/{id}/cancel requests
func (h *JobActionsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.jobService.Cancel)
}

// Pay handles POST /api/jobs/{id}/pay requests
func (h *JobActionsHandler) Pay(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	jobID := r.PathValue("id")
	if jobID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing job id"})
		return
	}

	var req ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode payment request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	job, err := h.jobService.ConfirmPayment(r.Context(), jobID, claims.UserID, req.Amount)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobView(job))
}

type transitionFunc func(ctx context.Context, jobID, actorID string) (*domain.Job, error)

func (h *JobActionsHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	jobID := r.PathValue("id")
	if jobID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing job id"})
		return
	}

	job, err := fn(r.Context(), jobID, claims.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobView(job))
}
