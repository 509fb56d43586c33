package generator

import (
	"context"

	logpkg "github.com/chroniclehq/feedgen/internal/logger"
)

// Context key types for logging (to avoid collisions with string keys)
type contextKey string

const (
	userIDContextKey  contextKey = "user_id"
	cycleIDContextKey contextKey = "cycle_id"
)

// UserIDContextKey returns the context key for user ID
func UserIDContextKey() contextKey {
	return userIDContextKey
}

// CycleIDContextKey returns the context key for cycle ID
func CycleIDContextKey() contextKey {
	return cycleIDContextKey
}

// WithCycleID returns a context carrying the cycle ID for downstream logging
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, cycleIDContextKey, cycleID)
}

const (
	// MaxPreviewLength is the maximum length for preview strings in logs
	MaxPreviewLength = 200
	// MaxDebugContentLength is the maximum length when full debug logging is on
	MaxDebugContentLength = 10000
)

// SanitizePrompt creates a safe preview of a prompt for logging.
// Even in fullLog mode the content is sanitized to prevent log injection.
func SanitizePrompt(prompt string, fullLog bool) string {
	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = MaxDebugContentLength
	}
	return logpkg.SanitizeString(prompt, maxLen)
}

// SanitizeResponse creates a safe preview of a model response for logging.
// Even in fullLog mode the content is sanitized to prevent log injection.
func SanitizeResponse(response string, fullLog bool) string {
	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = MaxDebugContentLength
	}
	return logpkg.SanitizeString(response, maxLen)
}

// ExtractCycleID extracts a cycle ID from context if available
func ExtractCycleID(ctx context.Context) string {
	if cycleID := ctx.Value(cycleIDContextKey); cycleID != nil {
		if id, ok := cycleID.(string); ok {
			return id
		}
	}
	return ""
}

// ExtractUserID extracts a user ID from context if available (handles UUID)
func ExtractUserID(ctx context.Context) string {
	if userID := ctx.Value(userIDContextKey); userID != nil {
		if id, ok := userID.(interface{ String() string }); ok {
			return id.String()
		}
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}
