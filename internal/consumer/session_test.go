package consumer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/prompts"
	"github.com/davidbz/workshopai/internal/sections"
)

type fakeStreamer struct {
	calls   atomic.Int32
	deltas  []string
	result  string
	err     error
	release chan struct{}
	entered chan struct{}
	prompts []string
}

func (f *fakeStreamer) Stream(ctx context.Context, req *domain.CompletionRequest, onUpdate UpdateFunc) (string, error) {
	f.calls.Add(1)
	f.prompts = append(f.prompts, req.UserPrompt)
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	for _, delta := range f.deltas {
		onUpdate(delta)
	}
	return f.result, f.err
}

func rawBuilder(input string, _ int) (*domain.CompletionRequest, error) {
	return &domain.CompletionRequest{UserPrompt: input}, nil
}

func drain(s *Session) []Event {
	var events []Event
	for {
		select {
		case event := <-s.Events():
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestSession_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("should publish started, deltas and finished", func(t *testing.T) {
		streamer := &fakeStreamer{
			deltas: []string{"1. Rockets\n", "1. Rockets\n2. Planets\n"},
			result: "1. Rockets\n2. Planets\n",
		}
		session := NewSession(streamer, rawBuilder)

		result, err := session.Submit(ctx, "Tell me 10 things related with space")

		require.NoError(t, err)
		require.Equal(t, "1. Rockets\n2. Planets\n", result.Text)
		require.False(t, result.Failed)

		events := drain(session)
		require.Len(t, events, 4)
		require.Equal(t, EventStarted, events[0].Kind)
		require.Equal(t, EventDelta, events[1].Kind)
		require.Equal(t, "1. Rockets\n", events[1].Text)
		require.Equal(t, "1. Rockets\n2. Planets\n", events[2].Text)
		require.Equal(t, EventFinished, events[3].Kind)
		require.Equal(t, 1, events[3].Entry.Version)
		require.False(t, session.Busy())
	})

	t.Run("should ignore blank input without a request", func(t *testing.T) {
		streamer := &fakeStreamer{}
		session := NewSession(streamer, rawBuilder)

		_, err := session.Submit(ctx, "   \n\t")

		require.ErrorIs(t, err, ErrBlankInput)
		require.Zero(t, streamer.calls.Load())
		require.Empty(t, drain(session))
		require.Zero(t, session.History().Len())
	})

	t.Run("should reject a second submission while busy", func(t *testing.T) {
		streamer := &fakeStreamer{
			result:  "done",
			release: make(chan struct{}),
			entered: make(chan struct{}),
		}
		session := NewSession(streamer, rawBuilder)

		var wg sync.WaitGroup
		var firstErr error
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, firstErr = session.Submit(ctx, "first")
		}()

		<-streamer.entered
		require.True(t, session.Busy())

		_, err := session.Submit(ctx, "second")
		require.ErrorIs(t, err, ErrBusy)

		close(streamer.release)
		wg.Wait()

		require.NoError(t, firstErr)

		require.Equal(t, int32(1), streamer.calls.Load())
		require.False(t, session.Busy())
		require.Equal(t, 1, session.History().Len())
	})

	t.Run("should turn transport failures into one synthetic result", func(t *testing.T) {
		streamer := &fakeStreamer{
			result: "partial",
			err:    &TransportError{Err: errors.New("connection refused")},
		}
		post := func(string) []sections.Section {
			t.Fatal("post-processor must not run on failures")
			return nil
		}
		session := NewSession(streamer, rawBuilder, WithPostProcessor(post))

		result, err := session.Submit(ctx, "hello")

		require.NoError(t, err)
		require.True(t, result.Failed)
		require.Equal(t, "Error: connection refused", result.Text)

		entries := session.History().Entries()
		require.Len(t, entries, 1)
		require.True(t, entries[0].Failed)
		require.Equal(t, "Error: connection refused", entries[0].Response)

		events := drain(session)
		last := events[len(events)-1]
		require.Equal(t, EventFinished, last.Kind)
		require.True(t, last.Failed)
		require.False(t, session.Busy())
	})

	t.Run("should return prompt builder errors without a request", func(t *testing.T) {
		streamer := &fakeStreamer{}
		buildErr := errors.New("missing field role")
		session := NewSession(streamer, func(string, int) (*domain.CompletionRequest, error) {
			return nil, buildErr
		})

		_, err := session.Submit(ctx, "input")

		require.ErrorIs(t, err, buildErr)
		require.Zero(t, streamer.calls.Load())
		require.False(t, session.Busy())
	})

	t.Run("should attach sections from the post-processor", func(t *testing.T) {
		markers := []sections.Marker{{Name: "hints", Text: "Hints"}}
		streamer := &fakeStreamer{result: "Hints:\n1. Be specific\n2. Give context\n"}
		session := NewSession(streamer, rawBuilder, WithPostProcessor(func(text string) []sections.Section {
			return sections.Parse(text, markers)
		}))

		result, err := session.Submit(ctx, "input")

		require.NoError(t, err)
		require.Equal(t, []string{"Be specific", "Give context"}, sections.Lookup(result.Sections, "hints"))
	})

	t.Run("should number history versions in order", func(t *testing.T) {
		streamer := &fakeStreamer{result: "ok"}
		session := NewSession(streamer, rawBuilder)

		for _, prompt := range []string{"v1", "v2", "v3"} {
			_, err := session.Submit(ctx, prompt)
			require.NoError(t, err)
			drain(session)
		}

		entries := session.History().Entries()
		require.Len(t, entries, 3)
		for i, entry := range entries {
			require.Equal(t, i+1, entry.Version)
		}
		require.Equal(t, "v3", entries[2].Prompt)
	})

	t.Run("should pass the upcoming history version to the builder", func(t *testing.T) {
		catalog, err := prompts.Load()
		require.NoError(t, err)
		exercise, err := catalog.Get("context-clarity")
		require.NoError(t, err)

		streamer := &fakeStreamer{result: "ANALISIS KONTEKS: ok"}
		session := NewSession(streamer, exercise.Builder(map[string]string{"role": "engineer"}))

		for _, content := range []string{"fix the pump", "fix pump 3 before friday"} {
			_, err = session.Submit(ctx, content)
			require.NoError(t, err)
			drain(session)
		}

		require.Len(t, streamer.prompts, 2)
		require.Contains(t, streamer.prompts[0], "This is their first version.")
		require.NotContains(t, streamer.prompts[1], "This is their first version.")
		require.Contains(t, streamer.prompts[1], "This is version 2 of their prompt.")
		require.Contains(t, streamer.prompts[1], "EVALUASI IMPROVEMENT:")
	})

	t.Run("should record successful results as feedback when enabled", func(t *testing.T) {
		streamer := &fakeStreamer{result: "Add the deadline."}
		session := NewSession(streamer, rawBuilder, WithFeedbackRecording())

		result, err := session.Submit(ctx, "write a memo")

		require.NoError(t, err)
		require.Equal(t, "Add the deadline.", result.Entry.Feedback)
		require.Equal(t, "Add the deadline.", session.History().Entries()[0].Feedback)
	})

	t.Run("should not record failures as feedback", func(t *testing.T) {
		streamer := &fakeStreamer{err: &TransportError{Message: "boom"}}
		session := NewSession(streamer, rawBuilder, WithFeedbackRecording())

		_, err := session.Submit(ctx, "write a memo")

		require.NoError(t, err)
		require.Empty(t, session.History().Entries()[0].Feedback)
	})
}

func TestHistory(t *testing.T) {
	t.Run("should return a copy of entries", func(t *testing.T) {
		var history History
		history.Append("p", "r", false, time.Unix(0, 0))

		entries := history.Entries()
		entries[0].Response = "changed"

		require.Equal(t, "r", history.Entries()[0].Response)
	})

	t.Run("should set feedback on existing versions only", func(t *testing.T) {
		var history History
		history.Append("p", "r", false, time.Unix(0, 0))

		require.True(t, history.SetFeedback(1, "clear enough"))
		require.False(t, history.SetFeedback(2, "missing"))
		require.False(t, history.SetFeedback(0, "missing"))
		require.Equal(t, "clear enough", history.Entries()[0].Feedback)
	})
}
