package consumer

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/observability"
	"github.com/davidbz/workshopai/internal/sections"
)

const eventBuffer = 64

// Streamer runs one completion request. *Client implements it.
type Streamer interface {
	Stream(ctx context.Context, req *domain.CompletionRequest, onUpdate UpdateFunc) (string, error)
}

// PromptBuilder turns user input into a completion request. version is the
// history version the result will be recorded under, starting at 1.
type PromptBuilder func(input string, version int) (*domain.CompletionRequest, error)

// PostProcessor derives sections from a final result.
type PostProcessor func(text string) []sections.Section

// EventKind tags session events.
type EventKind int

const (
	EventStarted EventKind = iota
	EventDelta
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventDelta:
		return "delta"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is delivered to the rendering layer. Text is the accumulated text
// for deltas and the final result for finished events.
type Event struct {
	Kind     EventKind
	Text     string
	Failed   bool
	Sections []sections.Section
	Entry    *Entry
}

// Result is the outcome of one submission.
type Result struct {
	Text     string
	Failed   bool
	Sections []sections.Section
	Entry    Entry
}

// Session is the per-page request handler: it owns one history, allows one
// request in flight, and publishes events on its channel.
type Session struct {
	id       string
	streamer Streamer
	build    PromptBuilder
	post     PostProcessor
	history  *History
	feedback bool
	events   chan Event
	busy     atomic.Bool
	now      func() time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPostProcessor sets the processor applied to every final result.
func WithPostProcessor(post PostProcessor) SessionOption {
	return func(s *Session) {
		s.post = post
	}
}

// WithFeedbackRecording stores every successful result as the feedback of
// its history entry.
func WithFeedbackRecording() SessionOption {
	return func(s *Session) {
		s.feedback = true
	}
}

// WithHistory shares an existing history with the session.
func WithHistory(history *History) SessionOption {
	return func(s *Session) {
		s.history = history
	}
}

// NewSession creates a session. Events must be drained by the caller while
// Submit runs.
func NewSession(streamer Streamer, build PromptBuilder, opts ...SessionOption) *Session {
	s := &Session{
		id:       uuid.NewString(),
		streamer: streamer,
		build:    build,
		history:  &History{},
		events:   make(chan Event, eventBuffer),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Events returns the channel the session publishes on.
func (s *Session) Events() <-chan Event {
	return s.events
}

// History returns the session history.
func (s *Session) History() *History {
	return s.history
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Close closes the event channel. The session must not be used afterwards.
func (s *Session) Close() {
	close(s.events)
}

// Submit builds a request from input and streams it. Blank input returns
// ErrBlankInput and a concurrent call returns ErrBusy, both without a
// network call. Prompt builder errors are returned as is. Every other
// failure becomes a synthetic result recorded in history.
func (s *Session) Submit(ctx context.Context, input string) (*Result, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrBlankInput
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	req, err := s.build(input, s.history.Len()+1)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithSessionID(ctx, s.id)
	ctx = observability.WithRequestID(ctx, observability.GenerateRequestID())
	logger := observability.FromContext(ctx)

	s.publish(ctx, Event{Kind: EventStarted})
	start := s.now()

	text, err := s.streamer.Stream(ctx, req, func(accumulated string) {
		s.publish(ctx, Event{Kind: EventDelta, Text: accumulated})
	})

	failed := err != nil
	if failed {
		logger.Warn("completion request failed", observability.Error(err))
		text = SyntheticResult(err)
	}

	var parsed []sections.Section
	if s.post != nil && !failed {
		parsed = s.post(text)
	}

	entry := s.history.Append(req.UserPrompt, text, failed, s.now())
	if s.feedback && !failed && s.history.SetFeedback(entry.Version, text) {
		entry.Feedback = text
	}

	logger.Info("completion request finished",
		observability.Int("version", entry.Version),
		observability.Bool("failed", failed),
		observability.Duration("duration", s.now().Sub(start)),
	)

	s.publish(ctx, Event{
		Kind:     EventFinished,
		Text:     text,
		Failed:   failed,
		Sections: parsed,
		Entry:    &entry,
	})

	return &Result{Text: text, Failed: failed, Sections: parsed, Entry: entry}, nil
}

// publish blocks until the event is taken or ctx is done. The finished
// event is still attempted on a cancelled context while buffer space
// remains.
func (s *Session) publish(ctx context.Context, event Event) {
	select {
	case s.events <- event:
		return
	default:
	}

	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}
