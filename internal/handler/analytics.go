package handler

import (
	"log/slog"
	"net/http"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/security/middleware"
	"github.com/autodoc-au/autodoc/internal/service"
)

// AnalyticsHandler serves earnings and platform dashboards
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// Earnings handles GET /api/analytics/earnings requests. Mechanics see
// their own report; admins may inspect any mechanic via ?mechanicId=.
func (h *AnalyticsHandler) Earnings(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	mechanicID := claims.UserID
	switch claims.Role {
	case string(domain.RoleMechanic):
	case string(domain.RoleAdmin):
		if id := r.URL.Query().Get("mechanicId"); id != "" {
			mechanicID = id
		}
	default:
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "mechanics and admins only"})
		return
	}

	report, err := h.analytics.MechanicEarnings(r.Context(), mechanicID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Platform handles GET /api/analytics/platform requests. Admin only.
func (h *AnalyticsHandler) Platform(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	if claims.Role != string(domain.RoleAdmin) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "admins only"})
		return
	}

	stats, err := h.analytics.PlatformStats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
