package sse

import (
	"fmt"
	"io"
	"net/http"
)

// Writer emits frames onto a response body, flushing after each one so the
// client sees every frame as soon as it is produced.
type Writer struct {
	out     io.Writer
	flusher http.Flusher
}

// NewWriter wraps out. Flushing is skipped when out is not an http.Flusher.
func NewWriter(out io.Writer) *Writer {
	flusher, _ := out.(http.Flusher)
	return &Writer{
		out:     out,
		flusher: flusher,
	}
}

// SetHeaders applies the event-stream response headers.
func SetHeaders(header http.Header) {
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
}

// WriteFrame writes one `data: <json>\n\n` frame.
func (w *Writer) WriteFrame(frame Frame) error {
	data, err := frame.MarshalJSON()
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w.out, "%s%s\n\n", DataPrefix, data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	if w.flusher != nil {
		w.flusher.Flush()
	}

	return nil
}
