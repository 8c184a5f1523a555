package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/workshopai/internal/config"
	"github.com/davidbz/workshopai/internal/httpserver/middleware"
	"github.com/davidbz/workshopai/internal/observability"
	"github.com/davidbz/workshopai/internal/ratelimit"
)

func TestChain(t *testing.T) {
	t.Run("should apply middlewares outermost first", func(t *testing.T) {
		var order []string
		tag := func(name string) middleware.Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		handler := middleware.Chain(tag("a"), tag("b"), tag("c"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, []string{"a", "b", "c", "handler"}, order)
	})
}

func TestTrace(t *testing.T) {
	t.Run("should inject IDs into context and headers", func(t *testing.T) {
		var requestID, traceID string
		handler := middleware.Trace()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID = observability.GetRequestID(r.Context())
			traceID = observability.GetTraceID(r.Context())
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusTeapot, rec.Code)
		require.NotEmpty(t, requestID)
		require.NotEmpty(t, traceID)
		require.Equal(t, requestID, rec.Header().Get("X-Request-Id"))
		require.Equal(t, traceID, rec.Header().Get("X-Trace-Id"))
	})

	t.Run("should keep an incoming request id", func(t *testing.T) {
		handler := middleware.Trace()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "req-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
	})

	t.Run("should keep the writer flushable", func(t *testing.T) {
		handler := middleware.Trace()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			flusher, ok := w.(http.Flusher)
			require.True(t, ok)
			_, _ = w.Write([]byte("data"))
			flusher.Flush()
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.True(t, rec.Flushed)
	})
}

func TestCORS(t *testing.T) {
	t.Run("should answer preflight requests", func(t *testing.T) {
		cfg := &config.CORSConfig{
			AllowedOrigins: []string{"https://workshop.example"},
			AllowedMethods: []string{http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}
		handler := middleware.CORS(cfg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("preflight reached the handler")
		}))

		req := httptest.NewRequest(http.MethodOptions, "/v1/completions", nil)
		req.Header.Set("Origin", "https://workshop.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "https://workshop.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("should be a no-op without config", func(t *testing.T) {
		called := false
		handler := middleware.CORS(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.True(t, called)
	})
}

func TestBuildMiddlewareChain(t *testing.T) {
	t.Run("should rate limit after tracing", func(t *testing.T) {
		limiter := ratelimit.NewLimiterWithStore(ratelimit.NewMemoryStore(), 1, time.Minute)
		handler := middleware.BuildMiddlewareChain(&config.CORSConfig{AllowedOrigins: []string{"*"}}, limiter)(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		first := httptest.NewRecorder()
		handler.ServeHTTP(first, req)
		second := httptest.NewRecorder()
		handler.ServeHTTP(second, req)

		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusTooManyRequests, second.Code)
		require.NotEmpty(t, second.Header().Get("X-Request-Id"))
	})
}
