package test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autodoc-au/autodoc/internal/handler"
	"github.com/autodoc-au/autodoc/internal/infrastructure/logger"
	"github.com/autodoc-au/autodoc/internal/repository"
	"github.com/autodoc-au/autodoc/internal/security"
	"github.com/autodoc-au/autodoc/internal/security/auth"
	"github.com/autodoc-au/autodoc/internal/security/middleware"
	"github.com/autodoc-au/autodoc/internal/seed"
	"github.com/autodoc-au/autodoc/internal/service"
	"github.com/autodoc-au/autodoc/internal/stream"
)

// TestServerHelper runs the full API in-process: seeded in-memory stores,
// real services and handlers, JWT middleware, health and metrics endpoints.
type TestServerHelper struct {
	Server *httptest.Server
	Logger *slog.Logger
}

func NewTestServer(t *testing.T) *TestServerHelper {
	log := logger.NewLogger("error")

	users := repository.NewMemoryUserRepository(log)
	jobs := repository.NewMemoryJobRepository(log)
	messages := repository.NewMemoryMessageRepository(log)
	notifications := repository.NewMemoryNotificationRepository(log)
	if err := seed.Demo(users, jobs, notifications, log); err != nil {
		t.Fatalf("failed to seed demo data: %v", err)
	}

	hub := stream.NewHub(log)
	notifier := service.NewNotifier(notifications, hub, log)
	authz := security.NewAuthorizationService(log)
	tokens := auth.NewTokenManager("integration-secret", "autodoc", time.Hour)
	revoker := auth.NewMemoryRevoker()

	authService := service.NewAuthService(users, tokens, revoker, log)
	jobService := service.NewJobService(jobs, users, messages, notifier, authz, nil, log)
	userService := service.NewUserService(users, notifier, authz, log)
	analyticsService := service.NewAnalyticsService(jobs, log)

	authHandler := handler.NewAuthHandler(authService, log)
	jobsHandler := handler.NewJobsHandler(jobService, log)
	jobActionsHandler := handler.NewJobActionsHandler(jobService, log)
	messagesHandler := handler.NewMessagesHandler(jobService, log)
	notificationsHandler := handler.NewNotificationsHandler(notifications, log)
	mechanicsHandler := handler.NewMechanicsHandler(userService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log)
	eventsHandler := handler.NewEventsHandler(hub, log, nil)
	healthHandler := handler.NewHealthHandler(nil, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/jobs", jobsHandler.Create)
	mux.HandleFunc("GET /api/jobs", jobsHandler.List)
	mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.Get)
	mux.HandleFunc("POST /api/jobs/{id}/accept", jobActionsHandler.Accept)
	mux.HandleFunc("POST /api/jobs/{id}/complete", jobActionsHandler.Complete)
	mux.HandleFunc("POST /api/jobs/{id}/pay", jobActionsHandler.Pay)
	mux.HandleFunc("POST /api/jobs/{id}/cancel", jobActionsHandler.Cancel)
	mux.HandleFunc("GET /api/jobs/{id}/messages", messagesHandler.List)
	mux.HandleFunc("POST /api/jobs/{id}/messages", messagesHandler.Send)
	mux.HandleFunc("GET /api/notifications", notificationsHandler.List)
	mux.HandleFunc("POST /api/notifications/read", notificationsHandler.MarkAllRead)
	mux.HandleFunc("GET /api/mechanics", mechanicsHandler.List)
	mux.HandleFunc("POST /api/mechanics/{id}/verify", mechanicsHandler.Verify)
	mux.HandleFunc("GET /api/analytics/earnings", analyticsHandler.Earnings)
	mux.HandleFunc("GET /api/analytics/platform", analyticsHandler.Platform)
	mux.Handle("GET /ws/events", eventsHandler)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	server := httptest.NewServer(middleware.JWTMiddleware(tokens, revoker, log)(mux))

	return &TestServerHelper{
		Server: server,
		Logger: log,
	}
}

func (h *TestServerHelper) Close() {
	h.Server.Close()
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// Login authenticates as email and returns the bearer token. The demo seed
// already holds sarah@example.com, mike@mechanic.com and admin@autodoc.com.
func (h *TestServerHelper) Login(t *testing.T, email string) string {
	t.Helper()

	data, _ := json.Marshal(map[string]string{"email": email})
	resp, err := http.Post(h.URL()+"/api/login", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return result.Token
}

// Do issues an authenticated request and decodes the JSON response into out
// (when out is non-nil).
func (h *TestServerHelper) Do(t *testing.T, token, method, path string, payload, out any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, h.URL()+path, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
	return resp
}

func AssertStatusCode(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}
