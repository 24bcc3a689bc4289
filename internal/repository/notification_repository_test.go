package repository

import (
	"testing"
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
)

func notify(userID, title string) *domain.Notification {
	return &domain.Notification{
		ID:        "ntf_" + title,
		UserID:    userID,
		Title:     title,
		Message:   "something happened",
		Timestamp: time.Now(),
		Type:      domain.NotifyJobUpdate,
	}
}

func TestMarkAllReadScopedAndIdempotent(t *testing.T) {
	r := NewMemoryNotificationRepository(nil)

	r.Append(notify("usr_a", "one"))
	r.Append(notify("usr_a", "two"))
	r.Append(notify("usr_b", "three"))

	marked, err := r.MarkAllRead("usr_a")
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 newly marked, got %d", marked)
	}

	// Second call finds nothing unread
	marked, _ = r.MarkAllRead("usr_a")
	if marked != 0 {
		t.Fatalf("expected idempotent re-run, got %d", marked)
	}

	// Other users are untouched
	bNotifs, _ := r.ListByUser("usr_b")
	if len(bNotifs) != 1 || bNotifs[0].Read {
		t.Fatalf("usr_b notifications must stay unread")
	}

	aNotifs, _ := r.ListByUser("usr_a")
	for _, n := range aNotifs {
		if !n.Read {
			t.Fatalf("expected all usr_a notifications read")
		}
	}
}

func TestListByUserCopiesOut(t *testing.T) {
	r := NewMemoryNotificationRepository(nil)
	r.Append(notify("usr_a", "one"))

	first, _ := r.ListByUser("usr_a")
	first[0].Read = true

	second, _ := r.ListByUser("usr_a")
	if second[0].Read {
		t.Fatalf("mutating a listed notification must not touch the store")
	}
}

func TestMarkAllReadUnknownUser(t *testing.T) {
	r := NewMemoryNotificationRepository(nil)
	marked, err := r.MarkAllRead("usr_ghost")
	if err != nil || marked != 0 {
		t.Fatalf("expected 0 marked for unknown user, got %d, %v", marked, err)
	}
}
