package handler

import (
	"log/slog"
	"net/http"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/security/middleware"
)

// NotificationsHandler serves the caller's inbox
type NotificationsHandler struct {
	notifications domain.NotificationRepository
	logger        *slog.Logger
}

// NewNotificationsHandler creates a new notifications handler
func NewNotificationsHandler(notifications domain.NotificationRepository, logger *slog.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// List handles GET /api/notifications requests, newest first
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	entries, err := h.notifications.ListByUser(claims.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	// The repository appends in arrival order; reverse so the latest
	// notification leads the inbox.
	views := make([]NotificationView, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		views = append(views, toNotificationView(entries[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// MarkAllRead handles POST /api/notifications/read requests. Reading is
// idempotent; repeat calls report zero newly marked.
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	marked, err := h.notifications.MarkAllRead(claims.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}
