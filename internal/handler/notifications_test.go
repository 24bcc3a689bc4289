package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/repository"
	"github.com/autodoc-au/autodoc/internal/security/auth"
	"github.com/autodoc-au/autodoc/internal/security/middleware"
)

func TestNotificationListNewestFirst(t *testing.T) {
	repo := repository.NewMemoryNotificationRepository(nil)
	now := time.Now()
	for i, title := range []string{"first", "second", "third"} {
		n := &domain.Notification{
			ID:        domain.NewID(domain.IDPrefixNotification),
			UserID:    "usr_inbox",
			Title:     title,
			Message:   title,
			Timestamp: now.Add(time.Duration(i) * time.Minute),
			Type:      domain.NotifySystem,
		}
		if err := repo.Append(n); err != nil {
			t.Fatalf("append %q: %v", title, err)
		}
	}

	h := NewNotificationsHandler(repo, slog.Default())
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	ctx := context.WithValue(req.Context(), middleware.ClaimsContextKey{}, &auth.Claims{UserID: "usr_inbox"})
	rec := httptest.NewRecorder()
	h.List(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var views []NotificationView
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(views))
	}
	if views[0].Title != "third" || views[2].Title != "first" {
		t.Fatalf("expected newest notification first, got order %q, %q, %q",
			views[0].Title, views[1].Title, views[2].Title)
	}
}
