package middleware

import (
	"net/http"

	"github.com/davidbz/workshopai/internal/config"
	"github.com/davidbz/workshopai/internal/ratelimit"
)

// Middleware wraps an http.Handler with additional functionality.
// Middlewares can be composed using the Chain function.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middlewares into a single middleware.
// The first middleware is the outermost wrapper (executed first on request).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// BuildMiddlewareChain composes the production chain (DI constructor).
// Order matters: CORS -> Trace -> RateLimit, so preflights are answered
// before counting and rejected requests still carry trace headers.
func BuildMiddlewareChain(corsConfig *config.CORSConfig, limiter *ratelimit.Limiter) Middleware {
	return Chain(
		CORS(corsConfig),
		Trace(),
		ratelimit.Middleware(limiter),
	)
}
