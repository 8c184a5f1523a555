// Package commands implements the workshop CLI.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidbz/workshopai/internal/cli"
	"github.com/davidbz/workshopai/internal/cli/ui"
	"github.com/davidbz/workshopai/internal/consumer"
	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/observability"
)

const version = "0.1.0"

// options carries the persistent flags and the loaded configuration.
type options struct {
	cfg         *cli.Config
	server      string
	model       string
	temperature float64
	verbose     bool
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:     "workshop",
		Short:   "Workshop AI exercises from the terminal",
		Version: version,
		Long: `Run the prompt-engineering workshop exercises against a completion proxy.
Responses stream to the terminal as they are generated.`,
		Example: `  # List the exercises
  $ workshop exercises

  # Ask for ten things related to a topic
  $ workshop run related-things "renewable energy"

  # Get feedback on a prompt and mail the report
  $ workshop run context-clarity --set role="HR manager" "Write a memo" --email me@example.com

  # Send a raw prompt
  $ workshop ask "Explain prompt chaining"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.server, "server", "s", "", "proxy base URL (default $WORKSHOP_SERVER)")
	flags.StringVarP(&opts.model, "model", "m", "", "override the model")
	flags.Float64VarP(&opts.temperature, "temperature", "t", 0, "override the sampling temperature")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(newExercisesCmd())
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newAskCmd(opts))

	return root
}

func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := cli.Load()
	if err != nil {
		return err
	}
	if o.server != "" {
		cfg.Consumer.BaseURL = o.server
	}
	o.cfg = cfg

	if !o.verbose && !cfg.Verbose {
		observability.SetLogger(zap.NewNop())
		return nil
	}

	if _, err = observability.InitLogger(&observability.LogConfig{Development: true}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func (o *options) client() *consumer.Client {
	return consumer.NewClient(o.cfg.Consumer, nil)
}

// override applies the --model and --temperature flags on top of a builder.
func (o *options) override(cmd *cobra.Command, build consumer.PromptBuilder) consumer.PromptBuilder {
	flags := cmd.Flags()
	return func(input string, version int) (*domain.CompletionRequest, error) {
		req, err := build(input, version)
		if err != nil {
			return nil, err
		}
		if flags.Changed("model") {
			req.Model = o.model
		}
		if flags.Changed("temperature") {
			req.Temperature = domain.Float(o.temperature)
		}
		return req, nil
	}
}

func printer(cmd *cobra.Command) *ui.Printer {
	return ui.NewPrinter(cmd.OutOrStdout())
}
