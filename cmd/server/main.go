package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/autodoc-au/autodoc/internal/featureflags"
	"github.com/autodoc-au/autodoc/internal/handler"
	"github.com/autodoc-au/autodoc/internal/infrastructure/logger"
	"github.com/autodoc-au/autodoc/internal/infrastructure/redis"
	"github.com/autodoc-au/autodoc/internal/observability/metrics"
	"github.com/autodoc-au/autodoc/internal/observability/tracing"
	"github.com/autodoc-au/autodoc/internal/reliability/retry"
	"github.com/autodoc-au/autodoc/internal/repository"
	"github.com/autodoc-au/autodoc/internal/security"
	"github.com/autodoc-au/autodoc/internal/security/audit"
	"github.com/autodoc-au/autodoc/internal/security/auth"
	"github.com/autodoc-au/autodoc/internal/security/middleware"
	"github.com/autodoc-au/autodoc/internal/security/ratelimit"
	"github.com/autodoc-au/autodoc/internal/seed"
	"github.com/autodoc-au/autodoc/internal/service"
	"github.com/autodoc-au/autodoc/internal/stream"
	"github.com/autodoc-au/autodoc/internal/worker"
	"github.com/autodoc-au/autodoc/pkg/config"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting AutoDoc server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "autodoc", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Token revocation backend. Redis when configured, with a few
	// connection retries to ride out container startup ordering; plain
	// in-memory otherwise.
	var revoker auth.Revoker
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = retry.Do(ctx, retry.DefaultConfig(), log, "redis connect",
			func(ctx context.Context) (*redis.Client, error) {
				return redis.NewClient(cfg.RedisURL)
			})
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		revoker = redis.NewRevoker(redisClient)
	} else {
		log.Info("REDIS_URL not set, using in-memory token revocation")
		revoker = auth.NewMemoryRevoker()
	}

	// 5. Initialize repositories
	userRepo := repository.NewMemoryUserRepository(log)
	jobRepo := repository.NewMemoryJobRepository(log)
	messageRepo := repository.NewMemoryMessageRepository(log)
	notificationRepo := repository.NewMemoryNotificationRepository(log)

	if cfg.SeedDemoData {
		if err := seed.Demo(userRepo, jobRepo, notificationRepo, log); err != nil {
			log.Error("failed to seed demo data", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 6. Initialize services
	hub := stream.NewHub(log)
	notifier := service.NewNotifier(notificationRepo, hub, log)
	authz := security.NewAuthorizationService(log)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "autodoc", time.Duration(cfg.TokenTTLHours)*time.Hour)
	authService := service.NewAuthService(userRepo, tokenManager, revoker, log)
	jobService := service.NewJobService(jobRepo, userRepo, messageRepo, notifier, authz, cfg, log)
	userService := service.NewUserService(userRepo, notifier, authz, log)
	analyticsService := service.NewAnalyticsService(jobRepo, log)

	// 7. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	jobsHandler := handler.NewJobsHandler(jobService, log)
	jobActionsHandler := handler.NewJobActionsHandler(jobService, log)
	messagesHandler := handler.NewMessagesHandler(jobService, log)
	notificationsHandler := handler.NewNotificationsHandler(notificationRepo, log)
	mechanicsHandler := handler.NewMechanicsHandler(userService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log)
	eventsHandler := handler.NewEventsHandler(hub, log, cfg.CORSAllowedOrigins)
	healthHandler := handler.NewHealthHandler(redisClient, log)

	// 7a. Initialize security components
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 8. Setup HTTP routes
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

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> JWT -> audit -> rate limit ->
	// content type -> CORS -> mux. JWT runs before audit and rate limiting so
	// both see the authenticated user rather than just the remote address.
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, revoker, log)(
				middleware.AuditMiddleware(auditLogger)(
					middleware.RateLimitMiddleware(rateLimiter, log)(
						middleware.ValidateJSONContentType(log)(handlerWithCORS),
					),
				),
			),
		),
		log,
	)

	// 9. Start stale job sweeper when the flag is on
	if featureflags.Enabled(featureflags.StaleJobCancel) {
		staleWorker := worker.NewStaleJobWorker(
			jobRepo,
			jobService,
			log,
			time.Duration(cfg.StaleJobSweepMins)*time.Minute,
			time.Duration(cfg.StaleJobMaxAgeHrs)*time.Hour,
		)
		go staleWorker.Start(ctx)
	}

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "http.server"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop stale job worker
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
