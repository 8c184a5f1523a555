// Package sse implements the normalized server-sent event framing shared by
// the completion proxy and its consumers. Every frame is a single
// `data: <json>` line followed by a blank line, where the JSON object carries
// either a "content" or an "error" field.
package sse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DataPrefix starts every frame line.
const DataPrefix = "data: "

// Kind tags a frame as content or error.
type Kind int

const (
	// KindContent carries a delta of generated text.
	KindContent Kind = iota
	// KindError carries an upstream failure message.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Frame is one parsed SSE message.
type Frame struct {
	Kind Kind
	Text string
}

// Content builds a content frame.
func Content(text string) Frame {
	return Frame{Kind: KindContent, Text: text}
}

// Error builds an error frame.
func Error(message string) Frame {
	return Frame{Kind: KindError, Text: message}
}

type contentPayload struct {
	Content string `json:"content"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// wirePayload is the decoding side of both payload shapes.
type wirePayload struct {
	Content string `json:"content"`
	Error   string `json:"error"`
}

// MarshalJSON encodes the frame as {"content": ...} or {"error": ...}.
// HTML characters are left unescaped so deltas reach the client verbatim.
func (f Frame) MarshalJSON() ([]byte, error) {
	var payload any
	switch f.Kind {
	case KindError:
		payload = errorPayload{Error: f.Text}
	default:
		payload = contentPayload{Content: f.Text}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ParseLine interprets one line of an event stream.
//
// ok is false for lines that do not start with DataPrefix and for payloads
// that carry neither a non-empty error nor non-empty content. err is non-nil
// when the payload after the prefix is not a JSON object.
func ParseLine(line string) (Frame, bool, error) {
	if !strings.HasPrefix(line, DataPrefix) {
		return Frame{}, false, nil
	}

	var payload wirePayload
	if err := json.Unmarshal([]byte(line[len(DataPrefix):]), &payload); err != nil {
		return Frame{}, false, fmt.Errorf("invalid frame payload: %w", err)
	}

	switch {
	case payload.Error != "":
		return Error(payload.Error), true, nil
	case payload.Content != "":
		return Content(payload.Content), true, nil
	default:
		return Frame{}, false, nil
	}
}
