package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/security/middleware"
	"github.com/autodoc-au/autodoc/internal/service"
)

// CreateJobRequest represents the request to post a new job
type CreateJobRequest struct {
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Vehicle     VehicleView `json:"vehicle"`
	Location    string      `json:"location"`
	Photos      []string    `json:"photos,omitempty"`
}

// JobsHandler handles job creation, listing and lookup
type JobsHandler struct {
	jobService *service.JobService
	logger     *slog.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(jobService *service.JobService, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// Create handles POST /api/jobs requests
func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode job request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	job, err := h.jobService.Create(r.Context(), claims.UserID, service.JobDraft{
		Category:    req.Category,
		Description: req.Description,
		Vehicle: domain.Vehicle{
			Make:  req.Vehicle.Make,
			Model: req.Vehicle.Model,
			Year:  req.Vehicle.Year,
			Rego:  req.Vehicle.Rego,
		},
		Location: req.Location,
		Photos:   req.Photos,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toJobView(job))
}

// List handles GET /api/jobs requests. Query parameters narrow the
// result: status, category, q (free text) and mine=customer|mechanic
// which scopes to the caller's own jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	filter := service.JobFilter{
		Status:   domain.JobStatus(r.URL.Query().Get("status")),
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	}
	switch r.URL.Query().Get("mine") {
	case "customer":
		filter.CustomerID = claims.UserID
	case "mechanic":
		filter.MechanicID = claims.UserID
	}

	jobs, err := h.jobService.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobViews(jobs))
}

// Get handles GET /api/jobs/{id} requests
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing job id"})
		return
	}

	job, err := h.jobService.Get(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobView(job))
}
