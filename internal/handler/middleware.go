package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/splitkaro/bff-go/internal/infra/observability"
	"github.com/splitkaro/bff-go/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// BearerAuthMiddleware extracts the bearer token, resolves the caller's
// identity from its subject claim, and injects it into the request context.
// Verification stays with the upstream API: a token the upstream rejects
// fails there with a 401 that passes through untouched.
func BearerAuthMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "authorization token not provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			ident, ok := session.Resolve(parts[1])
			if !ok {
				logger.Warn("auth: unreadable token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestMetricsMiddleware records duration and outcome of every request.
// The operation label uses the routed pattern, not the raw path, to keep
// cardinality bounded.
func RequestMetricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			operation := r.Method + " " + routePattern(r)
			metrics.RecordRequestDuration(operation, time.Since(start))
			if ww.Status() >= 500 {
				metrics.IncrRequest("error")
			} else {
				metrics.IncrRequest("success")
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) session.Identity {
	v, _ := ctx.Value(identityKey).(session.Identity)
	return v
}
