package handler

import (
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/autodoc-au/autodoc/internal/stream"
)

func TestEventStreamOriginCheck(t *testing.T) {
	hub := stream.NewHub(slog.Default())

	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"listed origin", []string{"http://localhost:5173"}, "http://localhost:5173", true},
		{"unlisted origin", []string{"http://localhost:5173"}, "http://evil.example", false},
		{"wildcard allows any origin", []string{"*"}, "http://anywhere.example", true},
		{"no origin header", []string{"http://localhost:5173"}, "", true},
		{"empty allowlist", nil, "http://localhost:5173", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewEventsHandler(hub, slog.Default(), tc.allowed)
			req := httptest.NewRequest("GET", "/ws/events", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if got := h.getUpgrader().CheckOrigin(req); got != tc.want {
				t.Fatalf("CheckOrigin(%q) with allowlist %v = %v, want %v",
					tc.origin, tc.allowed, got, tc.want)
			}
		})
	}
}
