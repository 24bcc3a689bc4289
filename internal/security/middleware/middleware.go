package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/autodoc-au/autodoc/internal/security/audit"
	"github.com/autodoc-au/autodoc/internal/security/auth"
	"github.com/autodoc-au/autodoc/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// publicPath reports whether a request may pass without a token.
func publicPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics", "/api/login":
		return true
	}
	return false
}

// JWTMiddleware authenticates requests and rejects revoked tokens. Browser
// WebSocket clients cannot set an Authorization header, so /ws/ paths may
// carry the token in a ?token= query parameter instead.
func JWTMiddleware(tm *auth.TokenManager, revoker auth.Revoker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := ""
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				extracted, err := auth.ExtractToken(authHeader)
				if err != nil {
					http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
					return
				}
				tokenString = extracted
			} else if strings.HasPrefix(r.URL.Path, "/ws/") {
				tokenString = r.URL.Query().Get("token")
			}
			if tokenString == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				log.Error("revocation check failed", slog.String("error", err.Error()))
				http.Error(w, `{"error":"auth unavailable"}`, http.StatusServiceUnavailable)
				return
			}
			if revoked {
				http.Error(w, `{"error":"token revoked"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware throttles authenticated users individually. Anonymous
// requests (the public paths) fall back to the remote address.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				key = claims.UserID
			}

			if !limiter.Allow(key) {
				log.Warn("rate limit exceeded", slog.String("key", key))
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records every state-changing request with the acting user
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodDelete {
				userID, role := "", ""
				if claims := GetClaimsFromContext(r.Context()); claims != nil {
					userID = claims.UserID
					role = claims.Role
				}
				auditLog.LogRequest(r.Context(), userID, role, r.Method, r.URL.Path)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClaimsFromContext returns the authenticated claims, or nil
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
