package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/autodoc-au/autodoc/internal/security/middleware"
	"github.com/autodoc-au/autodoc/internal/service"
)

// SendMessageRequest carries a chat message body
type SendMessageRequest struct {
	Content string `json:"content"`
}

// MessagesHandler handles per-job chat
type MessagesHandler struct {
	jobService *service.JobService
	logger     *slog.Logger
}

// NewMessagesHandler creates a new messages handler
func NewMessagesHandler(jobService *service.JobService, logger *slog.Logger) *MessagesHandler {
	return &MessagesHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// List handles GET /api/jobs/{id}/messages requests. Messages come back
// oldest first.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing job id"})
		return
	}

	messages, err := h.jobService.ListMessages(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, toMessageView(m))
	}
	writeJSON(w, http.StatusOK, views)
}

// Send handles POST /api/jobs/{id}/messages requests
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
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

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	msg, err := h.jobService.SendMessage(r.Context(), jobID, claims.UserID, req.Content)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMessageView(msg))
}
