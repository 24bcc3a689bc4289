package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/autodoc-au/autodoc/internal/security/middleware"
	"github.com/autodoc-au/autodoc/internal/stream"
)

// EventsHandler upgrades /ws/events connections and parks them on the
// hub so job updates, chat messages and notifications reach the client
// as they happen.
type EventsHandler struct {
	hub            *stream.Hub
	logger         *slog.Logger
	allowedOrigins []string
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *stream.Hub, logger *slog.Logger, allowedOrigins []string) *EventsHandler {
	return &EventsHandler{
		hub:            hub,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *EventsHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/events requests. Browsers cannot set an
// Authorization header on a websocket, so the JWT middleware also
// accepts ?token= on this path.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.logger.Debug("event stream opened", slog.String("user_id", claims.UserID))

	// Blocks until the client disconnects
	h.hub.Subscribe(claims.UserID, ws)

	h.logger.Debug("event stream closed", slog.String("user_id", claims.UserID))
}
