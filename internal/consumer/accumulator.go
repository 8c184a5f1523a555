package consumer

import (
	"strings"

	"github.com/davidbz/workshopai/internal/sse"
)

// errorPrefix precedes in-stream error messages in the accumulated text.
const errorPrefix = "\nError: "

// Accumulator is the append-only text buffer of one in-flight request.
// It must not be shared between requests.
type Accumulator struct {
	text   strings.Builder
	frozen bool
}

// Apply appends a frame and returns the accumulated text. Frames applied
// after Freeze are ignored.
func (a *Accumulator) Apply(frame sse.Frame) string {
	if a.frozen {
		return a.text.String()
	}

	switch frame.Kind {
	case sse.KindError:
		a.text.WriteString(errorPrefix)
		a.text.WriteString(frame.Text)
	default:
		a.text.WriteString(frame.Text)
	}

	return a.text.String()
}

// Freeze ends accumulation and returns the final text.
func (a *Accumulator) Freeze() string {
	a.frozen = true
	return a.text.String()
}

// Text returns the text accumulated so far.
func (a *Accumulator) Text() string {
	return a.text.String()
}
