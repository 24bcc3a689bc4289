package test

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

// TestHealthEndpoint verifies health check endpoint
func TestHealthEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL() + "/healthz")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	defer resp.Body.Close()

	AssertStatusCode(t, resp, http.StatusOK)
}

// TestReadinessEndpoint verifies readiness without Redis configured
func TestReadinessEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL() + "/readyz")
	if err != nil {
		t.Fatalf("Readiness check failed: %v", err)
	}
	defer resp.Body.Close()

	AssertStatusCode(t, resp, http.StatusOK)
}

// TestMetricsEndpoint verifies Prometheus metrics endpoint
func TestMetricsEndpoint(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL() + "/metrics")
	if err != nil {
		t.Fatalf("Metrics endpoint failed: %v", err)
	}
	defer resp.Body.Close()

	AssertStatusCode(t, resp, http.StatusOK)

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "go_goroutines") {
		t.Errorf("expected standard Go metrics in output")
	}
}

// TestSeededDemoData verifies the demo dataset is reachable through the API
func TestSeededDemoData(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	customer := server.Login(t, "sarah@example.com")

	var jobs []map[string]any
	resp := server.Do(t, customer, "GET", "/api/jobs", nil, &jobs)
	AssertStatusCode(t, resp, http.StatusOK)
	if len(jobs) != 5 {
		t.Fatalf("expected 5 seeded jobs, got %d", len(jobs))
	}

	var mechanics []map[string]any
	resp = server.Do(t, customer, "GET", "/api/mechanics", nil, &mechanics)
	AssertStatusCode(t, resp, http.StatusOK)
	if len(mechanics) != 1 {
		t.Fatalf("expected 1 seeded mechanic, got %d", len(mechanics))
	}
}

// TestSeededLifecycle drives a seeded open job through accept, complete and
// payment using the demo accounts.
func TestSeededLifecycle(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	customer := server.Login(t, "sarah@example.com")
	mechanic := server.Login(t, "mike@mechanic.com")

	var open []map[string]any
	resp := server.Do(t, customer, "GET", "/api/jobs?status=OPEN", nil, &open)
	AssertStatusCode(t, resp, http.StatusOK)
	if len(open) != 1 {
		t.Fatalf("expected 1 open seeded job, got %d", len(open))
	}
	jobID, _ := open[0]["id"].(string)

	// Mike is seeded verified, so accept goes straight through
	var job map[string]any
	resp = server.Do(t, mechanic, "POST", "/api/jobs/"+jobID+"/accept", nil, &job)
	AssertStatusCode(t, resp, http.StatusOK)
	if job["status"] != "ACCEPTED" {
		t.Fatalf("expected ACCEPTED, got %v", job["status"])
	}

	resp = server.Do(t, mechanic, "POST", "/api/jobs/"+jobID+"/complete", nil, &job)
	AssertStatusCode(t, resp, http.StatusOK)

	resp = server.Do(t, customer, "POST", "/api/jobs/"+jobID+"/pay", map[string]float64{"amount": 220}, &job)
	AssertStatusCode(t, resp, http.StatusOK)
	if job["status"] != "PAID_AND_CLOSED" || job["finalPrice"] != 220.0 {
		t.Fatalf("expected closed job with final price 220, got %v", job)
	}

	// Mike's earnings include the three seeded closed jobs plus this one
	var report map[string]any
	resp = server.Do(t, mechanic, "GET", "/api/analytics/earnings", nil, &report)
	AssertStatusCode(t, resp, http.StatusOK)
	if report["totalEarnings"] != 870.0 {
		t.Fatalf("expected total earnings 870, got %v", report["totalEarnings"])
	}
}
