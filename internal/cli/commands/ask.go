package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidbz/workshopai/internal/consumer"
	"github.com/davidbz/workshopai/internal/domain"
)

func newAskCmd(opts *options) *cobra.Command {
	var system string

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "stream a raw prompt",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			build := func(input string, _ int) (*domain.CompletionRequest, error) {
				return &domain.CompletionRequest{UserPrompt: input, SystemPrompt: system}, nil
			}

			session := consumer.NewSession(opts.client(), opts.override(cmd, build))
			result, err := submit(cmd, session, strings.Join(args, " "))
			if err != nil || result == nil {
				return err
			}
			if result.Failed {
				return errRequestFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "system prompt (default: the proxy's)")

	return cmd
}
