package handler

import (
	"log/slog"
	"net/http"

	"github.com/autodoc-au/autodoc/internal/security/middleware"
	"github.com/autodoc-au/autodoc/internal/service"
)

// MechanicsHandler handles the mechanic directory and verification
type MechanicsHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

// NewMechanicsHandler creates a new mechanics handler
func NewMechanicsHandler(userService *service.UserService, logger *slog.Logger) *MechanicsHandler {
	return &MechanicsHandler{
		userService: userService,
		logger:      logger,
	}
}

// List handles GET /api/mechanics requests
func (h *MechanicsHandler) List(w http.ResponseWriter, r *http.Request) {
	mechanics, err := h.userService.ListMechanics(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	views := make([]UserView, 0, len(mechanics))
	for _, m := range mechanics {
		views = append(views, toUserView(m))
	}
	writeJSON(w, http.StatusOK, views)
}

// Verify handles POST /api/mechanics/{id}/verify requests. Admin only;
// verifying an already verified mechanic is a no-op.
func (h *MechanicsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	mechanicID := r.PathValue("id")
	if mechanicID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing mechanic id"})
		return
	}

	mechanic, err := h.userService.VerifyMechanic(r.Context(), claims.UserID, mechanicID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(mechanic))
}
