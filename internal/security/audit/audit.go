package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger writes an audit trail of who did what to which job. Entries go to
// the structured log under a fixed "audit" message so they can be filtered
// out downstream.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new audit logger
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// LogAction records a workflow action against a resource
func (al *Logger) LogAction(ctx context.Context, userID, role, action, resource, resourceID, status string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("role", role),
		slog.String("status", status),
		slog.Time("timestamp", time.Now()),
	)
}

// LogRequest records an incoming state-changing HTTP request
func (al *Logger) LogRequest(ctx context.Context, userID, role, method, path string) {
	al.LogAction(ctx, userID, role, method, "http", path, "received")
}

// LogTransition records a job lifecycle transition attempt
func (al *Logger) LogTransition(ctx context.Context, userID, role, action, jobID, status string) {
	al.LogAction(ctx, userID, role, action, "job", jobID, status)
}

// LogDenied records a rejected action
func (al *Logger) LogDenied(ctx context.Context, userID, role, reason string) {
	al.LogAction(ctx, userID, role, "access_denied", "api", reason, "denied")
}
