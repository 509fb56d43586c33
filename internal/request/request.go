package request

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the originating client address for rate-limit keys and
// request logs. Proxy headers win over the socket address; the first entry
// of X-Forwarded-For is the original client.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	// Strip the ephemeral port so direct connections key by host, not by
	// connection.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
