package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/security/auth"
	"github.com/autodoc-au/autodoc/internal/service"
)

// LoginRequest carries the identity to log in as. An unknown email
// registers a new account on the spot, so everything except Email is
// optional and only read on first login.
type LoginRequest struct {
	Email           string   `json:"email"`
	Name            string   `json:"name,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Role            string   `json:"role,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	ABN             string   `json:"abn,omitempty"`
	ExperienceYears int      `json:"experienceYears,omitempty"`
}

// LoginResponse contains the JWT token and the resolved account
type LoginResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Registered bool      `json:"registered"`
	User       UserView  `json:"user"`
}

// AuthHandler handles login and logout
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /api/login requests
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode login request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginProfile{
		Email:           req.Email,
		Name:            req.Name,
		Phone:           req.Phone,
		Role:            domain.Role(req.Role),
		Skills:          req.Skills,
		Bio:             req.Bio,
		ABN:             req.ABN,
		ExperienceYears: req.ExperienceYears,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:      result.Token,
		ExpiresAt:  result.ExpiresAt,
		Registered: result.Registered,
		User:       toUserView(result.User),
	})
}

// Logout handles POST /api/logout requests. The bearer token in the
// Authorization header is revoked until its natural expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.ExtractToken(r.Header.Get("Authorization"))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
