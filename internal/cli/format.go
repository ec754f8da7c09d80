package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

func newFormatCmd(flags *rootFlags) *cobra.Command {
	var ralph bool

	cmd := &cobra.Command{
		Use:   "format <prompt-id>",
		Short: "Print a prompt assembled for an agent",
		Long: "Print the prompt's requirements and success criteria as one block of text.\n" +
			"With --ralph, append the loop-control block and print it as a single quoted\n" +
			"line suitable as a command-line argument.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := flags.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			prompt, err := store.GetPrompt(commandContext(cmd), args[0])
			if err != nil {
				return classify(err)
			}

			text := types.FormatPrompt(prompt)
			if ralph {
				text = types.RalphReady(text)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return writeJSON(out, map[string]string{"id": prompt.ID, "name": prompt.Name, "text": text})
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ralph, "ralph", false, "format as a single quoted line with loop control")
	return cmd
}
