package api

import (
	"encoding/json/v2"
	"net/http"
	"strings"

	"github.com/booklendapp/booklend-server/internal/ratelimit"
)

// Credential endpoints are throttled per client IP to slow down brute force.
const (
	authRateLimitRPS   = 5
	authRateLimitBurst = 20
)

// rateLimitAuthRoutes throttles /api/v1/auth/ requests per client IP. Runs
// after middleware.RealIP so the key is the originating address.
func rateLimitAuthRoutes(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/v1/auth/") && !limiter.Allow(clientKey(r)) {
				writeRateLimited(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey extracts the client address, dropping the port when present.
func clientKey(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	body, _ := json.Marshal(&Envelope{
		V:       envelopeVersion,
		Success: false,
		Error:   "rate limit exceeded",
	})
	_, _ = w.Write(body)
}
