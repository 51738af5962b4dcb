package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/csvsniff/internal/core"
)

// withRequestMetadata adds the client IP and User-Agent to the request
// context for the service's logs.
func withRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr // already rewritten by TrustedRealIP
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ctx := core.ContextWithClientIP(r.Context(), ip)
		ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
