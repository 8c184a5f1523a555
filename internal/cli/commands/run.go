package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidbz/workshopai/internal/consumer"
	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/prompts"
	"github.com/davidbz/workshopai/internal/report"
	"github.com/davidbz/workshopai/internal/sections"
)

type runOptions struct {
	set   []string
	email string
}

func newRunCmd(opts *options) *cobra.Command {
	runOpts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <exercise> [input]",
		Short: "run a workshop exercise",
		Long: `Render an exercise prompt and stream the model's answer.

The input argument fills the exercise's input field; other fields are set
with --set name=value.`,
		Example: `  $ workshop run action-hints "customer onboarding"
  $ workshop run role-feedback --set context="Late invoices" "You are a finance analyst"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExercise(cmd, opts, runOpts, args)
		},
	}

	cmd.Flags().StringArrayVar(&runOpts.set, "set", nil, "field value as name=value (repeatable)")
	cmd.Flags().StringVar(&runOpts.email, "email", "", "mail the report to this address")

	return cmd
}

func runExercise(cmd *cobra.Command, opts *options, runOpts *runOptions, args []string) error {
	catalog, err := prompts.Load()
	if err != nil {
		return err
	}

	exercise, err := catalog.Get(args[0])
	if err != nil {
		return err
	}

	values, err := parseSet(runOpts.set)
	if err != nil {
		return err
	}

	input := strings.Join(args[1:], " ")
	if input == "" {
		input = values[exercise.Input]
	}
	delete(values, exercise.Input)

	out := printer(cmd)
	out.Title(exercise.Title)

	if exercise.Local {
		values[exercise.Input] = input
		rendered, renderErr := exercise.Render(values)
		if renderErr != nil {
			return renderErr
		}
		out.Boxed(rendered)
		return nil
	}

	sessionOpts := []consumer.SessionOption{}
	if exercise.Versioned {
		sessionOpts = append(sessionOpts, consumer.WithFeedbackRecording())
	}
	if len(exercise.Markers) > 0 {
		markers := exercise.Markers
		sessionOpts = append(sessionOpts, consumer.WithPostProcessor(func(text string) []sections.Section {
			return sections.Parse(text, markers)
		}))
	}

	client := opts.client()
	session := consumer.NewSession(client, opts.override(cmd, exercise.Builder(values)), sessionOpts...)

	result, err := submit(cmd, session, input)
	if err != nil || result == nil {
		return err
	}

	if runOpts.email != "" {
		if err = sendReport(cmd, client, opts, exercise, values, session.History(), runOpts.email); err != nil {
			return err
		}
	}

	if result.Failed {
		return errRequestFailed
	}
	return nil
}

func sendReport(
	cmd *cobra.Command,
	mailer domain.Mailer,
	opts *options,
	exercise *prompts.Exercise,
	values map[string]string,
	history *consumer.History,
	to string,
) error {
	renderer, err := report.NewRenderer()
	if err != nil {
		return err
	}

	msg, err := renderer.Render(report.Report{
		To:      to,
		Subject: "Workshop AI - " + exercise.Title,
		Title:   exercise.Title,
		Role:    values["role"],
		Entries: history.Entries(),
		Footer:  opts.cfg.Footer,
	})
	if err != nil {
		return err
	}

	receipt, err := mailer.Send(cmd.Context(), msg)
	if err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}

	printer(cmd).Success("Report sent to %s (%s)", msg.To, receipt.MessageID)
	return nil
}

var errBadSet = errors.New("expected name=value")

func parseSet(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", errBadSet, pair)
		}
		values[name] = value
	}
	return values, nil
}
