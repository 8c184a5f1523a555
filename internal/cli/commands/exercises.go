package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidbz/workshopai/internal/cli/ui"
	"github.com/davidbz/workshopai/internal/prompts"
)

func newExercisesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exercises",
		Short: "list workshop exercises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := prompts.Load()
			if err != nil {
				return err
			}

			out := printer(cmd)
			for _, exercise := range catalog.List() {
				out.Title(fmt.Sprintf("%s  %s", exercise.ID, exercise.Title))
				out.Info("  %s", exercise.Description)
				out.Raw(fmt.Sprintf("  fields: %s\n", describeFields(exercise)))
			}
			return nil
		},
	}
}

// describeFields marks required fields with * and the input field with >.
func describeFields(exercise *prompts.Exercise) string {
	names := make([]string, 0, len(exercise.Fields))
	for _, field := range exercise.Fields {
		name := field.Name
		if field.Required {
			name += "*"
		}
		if field.Name == exercise.Input {
			name = ">" + name
		}
		names = append(names, name)
	}

	desc := strings.Join(names, ", ")
	if exercise.Local {
		desc += " " + ui.Styles.Muted.Render("(local)")
	}
	return desc
}
