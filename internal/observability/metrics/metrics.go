package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autodoc_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autodoc_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	jobTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autodoc_job_transitions_total",
		Help: "Count of attempted job lifecycle transitions by action and result",
	}, []string{"action", "result"})

	openJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autodoc_open_jobs",
		Help: "Number of jobs currently waiting for a mechanic",
	})

	messagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autodoc_messages_total",
		Help: "Count of chat messages sent",
	})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autodoc_notifications_total",
		Help: "Count of derived notifications dispatched by type",
	}, []string{"type"})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autodoc_logins_total",
		Help: "Count of logins by outcome (existing account vs new registration)",
	}, []string{"outcome"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveTransition records a job lifecycle transition attempt with a result label.
func ObserveTransition(action, result string) {
	jobTransitions.WithLabelValues(action, result).Inc()
}

// IncrementOpenJobs increments the open job gauge.
func IncrementOpenJobs() {
	openJobs.Inc()
}

// DecrementOpenJobs decrements the open job gauge.
func DecrementOpenJobs() {
	openJobs.Dec()
}

// ObserveMessage increments the chat message counter.
func ObserveMessage() {
	messagesTotal.Inc()
}

// ObserveNotification increments the dispatched notification counter.
func ObserveNotification(notifType string) {
	notificationsTotal.WithLabelValues(notifType).Inc()
}

// ObserveLogin records a login by outcome ("login" or "register").
func ObserveLogin(outcome string) {
	logins.WithLabelValues(outcome).Inc()
}
