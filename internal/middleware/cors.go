package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS returns middleware allowing cross-origin requests from the given
// origins. The API carries no credentials, so Allow-Credentials stays off.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	})
	return c.Handler
}

// CORSFromEnv parses a comma-separated origin list, as found in
// ALLOWED_ORIGINS, and builds the CORS middleware from it.
func CORSFromEnv(originList string) func(http.Handler) http.Handler {
	var origins []string
	for _, origin := range strings.Split(originList, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return CORS(origins)
}
