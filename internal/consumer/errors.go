package consumer

import (
	"errors"
	"fmt"
)

var (
	// ErrBlankInput is returned when the submitted input is empty or
	// whitespace. No request is made.
	ErrBlankInput = errors.New("input is blank")
	// ErrBusy is returned while the session already has a request in flight.
	ErrBusy = errors.New("a request is already in flight")
)

// TransportError is a failure outside the event stream: the request could
// not be sent, the server answered with a non-OK status, or the body could
// not be read.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	default:
		return "request failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SyntheticResult renders a failure the way it is shown to the user.
func SyntheticResult(err error) string {
	return "Error: " + err.Error()
}
