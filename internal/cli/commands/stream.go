package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidbz/workshopai/internal/cli/ui"
	"github.com/davidbz/workshopai/internal/consumer"
)

var errRequestFailed = errors.New("request failed")

// submit streams input through session while rendering its events. A nil
// result with a nil error means the input was blank.
func submit(cmd *cobra.Command, session *consumer.Session, input string) (*consumer.Result, error) {
	out := printer(cmd)
	renderer := ui.NewStreamRenderer(out)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range session.Events() {
			renderer.Handle(event)
		}
	}()

	result, err := session.Submit(cmd.Context(), input)
	session.Close()
	<-done

	if errors.Is(err, consumer.ErrBlankInput) {
		out.Warning("Nothing to send: input is blank")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to submit: %w", err)
	}
	return result, nil
}
