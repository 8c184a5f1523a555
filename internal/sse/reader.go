package sse

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LineReader splits a raw byte stream into decoded text lines.
//
// Bytes pass through a stateful UTF-8 decoder, so a multi-byte character cut
// across two reads is held back until its remaining bytes arrive. Partial
// lines are carried the same way. Invalid sequences decode to U+FFFD.
type LineReader struct {
	buf *bufio.Reader
}

// NewLineReader wraps src.
func NewLineReader(src io.Reader) *LineReader {
	decoded := transform.NewReader(src, unicode.UTF8.NewDecoder())
	return &LineReader{
		buf: bufio.NewReader(decoded),
	}
}

// ReadLine returns the next line without its terminator. A trailing line
// that ends at EOF without a newline is still returned; io.EOF is reported
// on the following call.
func (r *LineReader) ReadLine() (string, error) {
	line, err := r.buf.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return trimEOL(line), nil
		}
		return "", err
	}

	return trimEOL(line), nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
