package openai_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/provider/openai"
)

func chunkEvent(content, finishReason string) string {
	reason := "null"
	if finishReason != "" {
		reason = fmt.Sprintf("%q", finishReason)
	}
	return fmt.Sprintf(
		`data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"qwen-plus",`+
			`"choices":[{"index":0,"delta":{"content":%q},"finish_reason":%s}]}`+"\n\n",
		content, reason)
}

// newUpstream serves the given SSE body on /chat/completions and records
// the decoded request body.
func newUpstream(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}

		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			_ = json.Unmarshal(raw, captured)
		}

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return server
}

func newTestProvider(t *testing.T, baseURL string) *openai.Provider {
	t.Helper()

	provider, err := openai.NewProvider(openai.Config{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		MaxRetries: 0,
	})
	require.NoError(t, err)
	return provider
}

func collect(chunks <-chan domain.StreamChunk) []domain.StreamChunk {
	var out []domain.StreamChunk
	for chunk := range chunks {
		out = append(out, chunk)
	}
	return out
}

func request(prompt string) *domain.CompletionRequest {
	req := domain.CompletionRequest{UserPrompt: prompt}.WithDefaults()
	return &req
}

func TestNewProvider(t *testing.T) {
	t.Run("should create a configured provider", func(t *testing.T) {
		provider, err := openai.NewProvider(openai.Config{APIKey: "test-api-key"})

		require.NoError(t, err)
		require.Equal(t, "qwen", provider.Name())
		require.True(t, provider.Configured())
	})

	t.Run("should create an unconfigured provider without a key", func(t *testing.T) {
		provider, err := openai.NewProvider(openai.Config{})

		require.NoError(t, err)
		require.False(t, provider.Configured())
	})

	t.Run("should fall back to default models", func(t *testing.T) {
		provider, err := openai.NewProvider(openai.Config{})

		require.NoError(t, err)
		require.Equal(t, []string{"qwen-max", "qwen-plus", "qwen-turbo"}, provider.SupportedModels(context.Background()))
	})

	t.Run("should reject a blank model list", func(t *testing.T) {
		_, err := openai.NewProvider(openai.Config{Models: []string{" ", ""}})

		require.ErrorContains(t, err, "at least one Qwen model is required")
	})
}

func TestProvider_IsModelSupported(t *testing.T) {
	provider, err := openai.NewProvider(openai.Config{Models: []string{"qwen-plus", "qwen-long"}})
	require.NoError(t, err)

	tests := []struct {
		model    string
		expected bool
	}{
		{"qwen-plus", true},
		{"qwen-long", true},
		{"qwen-max", false},
		{"gpt-4", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("should check "+tt.model, func(t *testing.T) {
			require.Equal(t, tt.expected, provider.IsModelSupported(context.Background(), tt.model))
		})
	}
}

func TestProvider_Stream(t *testing.T) {
	t.Run("should relay deltas and the stop chunk", func(t *testing.T) {
		var captured map[string]any
		body := chunkEvent("Hel", "") + chunkEvent("", "") + chunkEvent("lo", "") + chunkEvent("", "stop") + "data: [DONE]\n\n"
		server := newUpstream(t, http.StatusOK, body, &captured)

		chunks, err := newTestProvider(t, server.URL).Stream(context.Background(), request("hello"))
		require.NoError(t, err)

		require.Equal(t, []domain.StreamChunk{
			{Delta: "Hel"},
			{Delta: ""},
			{Delta: "lo"},
			{Delta: "", Stop: true},
		}, collect(chunks))

		require.Equal(t, "qwen-plus", captured["model"])
		require.Equal(t, true, captured["stream"])
		require.InDelta(t, 0.7, captured["temperature"], 1e-9)

		messages, ok := captured["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		require.Equal(t, "system", messages[0].(map[string]any)["role"])
		require.Equal(t, "user", messages[1].(map[string]any)["role"])
		require.Equal(t, "hello", messages[1].(map[string]any)["content"])
	})

	t.Run("should report a rejected request before streaming", func(t *testing.T) {
		server := newUpstream(t, http.StatusUnauthorized,
			`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, nil)

		chunks, err := newTestProvider(t, server.URL).Stream(context.Background(), request("hello"))

		require.Nil(t, chunks)
		var upstreamErr *domain.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		require.Equal(t, "qwen", upstreamErr.Provider)
	})

	t.Run("should emit an error chunk on mid-stream failure", func(t *testing.T) {
		body := chunkEvent("partial", "") + `data: {"error":{"message":"quota exceeded"}}` + "\n\n"
		server := newUpstream(t, http.StatusOK, body, nil)

		chunks, err := newTestProvider(t, server.URL).Stream(context.Background(), request("hello"))
		require.NoError(t, err)

		received := collect(chunks)
		require.Len(t, received, 2)
		require.Equal(t, "partial", received[0].Delta)
		require.Error(t, received[1].Error)
		require.Contains(t, received[1].Error.Error(), "quota exceeded")
	})

	t.Run("should return a closed channel for an empty stream", func(t *testing.T) {
		server := newUpstream(t, http.StatusOK, "data: [DONE]\n\n", nil)

		chunks, err := newTestProvider(t, server.URL).Stream(context.Background(), request("hello"))

		require.NoError(t, err)
		require.Empty(t, collect(chunks))
	})

	t.Run("should refuse to stream without a key", func(t *testing.T) {
		provider, err := openai.NewProvider(openai.Config{})
		require.NoError(t, err)

		_, err = provider.Stream(context.Background(), request("hello"))

		require.ErrorIs(t, err, domain.ErrProviderNotConfigured)
	})

	t.Run("should reject a nil request", func(t *testing.T) {
		_, err := newTestProvider(t, "http://127.0.0.1:1").Stream(context.Background(), nil)

		require.ErrorContains(t, err, "request cannot be nil")
	})
}
