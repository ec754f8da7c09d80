package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects and their prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := flags.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			projects, err := store.GetAllProjects(commandContext(cmd))
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return writeJSON(out, projects)
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects.")
				return nil
			}
			for _, p := range projects {
				fmt.Fprintf(out, "%s  %s\n", p.ID, p.Name)
				for _, pr := range p.Prompts {
					fmt.Fprintf(out, "  %s  %s%s\n", pr.ID, pr.Name, emptyMarker(&pr))
				}
			}
			return nil
		},
	}
}

// emptyMarker flags prompts that would format to nothing.
func emptyMarker(p *types.Prompt) string {
	if types.FormatPrompt(p) == "" {
		return " (empty)"
	}
	return ""
}

func newTemplatesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List templates grouped by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := flags.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			templates, err := store.GetAllTemplates(commandContext(cmd))
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return writeJSON(out, templates)
			}
			for i, typ := range types.TemplateTypes {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s:\n", typ)
				for _, t := range templates {
					if t.Type != typ {
						continue
					}
					marker := ""
					if t.IsDefault {
						marker = " [default]"
					}
					fmt.Fprintf(out, "  %s  %s%s\n", t.ID, t.Name, marker)
				}
			}
			return nil
		},
	}
}
