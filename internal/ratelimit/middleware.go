package ratelimit

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/davidbz/workshopai/internal/observability"
)

// Middleware rejects clients over their limit with 429 and a JSON error.
// A nil limiter returns next unchanged.
func Middleware(limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight requests never count.
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			decision := limiter.Allow(r.Context(), ClientKey(r))

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))

			if !decision.Allowed {
				observability.FromContext(r.Context()).Warn("rate limit exceeded",
					observability.String("path", r.URL.Path))

				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.ResetIn.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "rate limit exceeded, please try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller by the first X-Forwarded-For hop, falling
// back to the connection address.
func ClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
