package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds request handling when no timeout is configured.
const DefaultRequestTimeout = 30 * time.Second

// Timeout enforces a deadline on request handlers. The request context is
// also bounded so downstream store and queue calls observe the deadline.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			handler := http.TimeoutHandler(next, timeout, "Request Timeout")
			handler.ServeHTTP(w, r)
		})
	}
}
