package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.ServerPort)
	}
	if cfg.TokenTTLHours != 24 {
		t.Fatalf("expected default token TTL 24h, got %d", cfg.TokenTTLHours)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("expected no redis by default, got %q", cfg.RedisURL)
	}
	if len(cfg.JobCategories) != len(DefaultJobCategories) {
		t.Fatalf("expected default categories, got %v", cfg.JobCategories)
	}
	if cfg.SeedDemoData {
		t.Fatalf("expected demo seeding off by default")
	}
	if cfg.StaleJobMaxAgeHrs != 168 {
		t.Fatalf("expected 168h default stale age, got %d", cfg.StaleJobMaxAgeHrs)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("JOB_CATEGORIES", "Tyres, Windscreens ,")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerPort != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.ServerPort)
	}
	if len(cfg.JobCategories) != 2 || cfg.JobCategories[1] != "Windscreens" {
		t.Fatalf("expected trimmed CSV categories, got %v", cfg.JobCategories)
	}
	if !cfg.SeedDemoData {
		t.Fatalf("expected demo seeding on")
	}
	if cfg.RateLimitPerMinute != 5 {
		t.Fatalf("expected rate limit 5, got %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad SERVER_PORT")
	}
}
