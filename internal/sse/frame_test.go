package sse_test

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/workshopai/internal/sse"
)

func TestFrame_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		frame sse.Frame
		want  string
	}{
		{
			name:  "content frame",
			frame: sse.Content("1. Rockets\n"),
			want:  `{"content":"1. Rockets\n"}`,
		},
		{
			name:  "empty content frame keeps the field",
			frame: sse.Content(""),
			want:  `{"content":""}`,
		},
		{
			name:  "error frame",
			frame: sse.Error("rate limited"),
			want:  `{"error":"rate limited"}`,
		},
		{
			name:  "html is not escaped",
			frame: sse.Content("<topic>"),
			want:  `{"content":"<topic>"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.frame.MarshalJSON()
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(data))
			require.Equal(t, tt.want, string(data))
		})
	}
}

func TestParseLine(t *testing.T) {
	t.Run("should parse a content frame", func(t *testing.T) {
		frame, ok, err := sse.ParseLine(`data: {"content":"Hello"}`)

		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, sse.Content("Hello"), frame)
	})

	t.Run("should prefer error over content", func(t *testing.T) {
		frame, ok, err := sse.ParseLine(`data: {"content":"x","error":"boom"}`)

		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, sse.KindError, frame.Kind)
		require.Equal(t, "boom", frame.Text)
	})

	t.Run("should ignore lines without the data prefix", func(t *testing.T) {
		for _, line := range []string{"", "event: error", ": keep-alive", `data:{"content":"x"}`} {
			_, ok, err := sse.ParseLine(line)
			require.NoError(t, err, line)
			require.False(t, ok, line)
		}
	})

	t.Run("should report invalid json", func(t *testing.T) {
		_, ok, err := sse.ParseLine(`data: {"content":`)

		require.Error(t, err)
		require.False(t, ok)
		require.Contains(t, err.Error(), "invalid frame payload")
	})

	t.Run("should skip empty payloads", func(t *testing.T) {
		_, ok, err := sse.ParseLine(`data: {"content":""}`)

		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestWriter_WriteFrame(t *testing.T) {
	t.Run("should write frames and flush", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writer := sse.NewWriter(rec)

		require.NoError(t, writer.WriteFrame(sse.Content("a")))
		require.NoError(t, writer.WriteFrame(sse.Error("b")))

		require.Equal(t, "data: {\"content\":\"a\"}\n\ndata: {\"error\":\"b\"}\n\n", rec.Body.String())
		require.True(t, rec.Flushed)
	})

	t.Run("should work with plain writers", func(t *testing.T) {
		var buf bytes.Buffer
		writer := sse.NewWriter(&buf)

		require.NoError(t, writer.WriteFrame(sse.Content("x")))
		require.Equal(t, "data: {\"content\":\"x\"}\n\n", buf.String())
	})
}

func TestSetHeaders(t *testing.T) {
	rec := httptest.NewRecorder()

	sse.SetHeaders(rec.Header())

	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	require.Equal(t, "keep-alive", rec.Header().Get("Connection"))
}
