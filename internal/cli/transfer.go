package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export projects, prompts, and user templates as JSON",
		Long: "Write an export to stdout, or to --output. When --output names a directory\n" +
			"the file is named prompt-builder-export-YYYY-MM-DD.json.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := flags.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			export, err := store.ExportAllData(commandContext(cmd))
			if err != nil {
				return classify(err)
			}
			data, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				return systemError(fmt.Errorf("marshal export: %w", err))
			}
			data = append(data, '\n')

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			path := output
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				path = filepath.Join(output, types.ExportFileName(time.Now()))
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return systemError(fmt.Errorf("write export: %w", err))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory")
	return cmd
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import an export file (additive)",
		Long:  "Add the projects, prompts, and templates in an export file under new IDs. Nothing existing is changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return userError(fmt.Errorf("read import file: %w", err))
			}
			var data types.ImportData
			if err := json.Unmarshal(raw, &data); err != nil {
				return userError(fmt.Errorf("parse import file: %w", err))
			}

			store, _, err := flags.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			result, err := store.ImportData(commandContext(cmd), data)
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return writeJSON(out, result)
			}
			fmt.Fprintf(out, "Imported %d projects, %d prompts, %d templates\n",
				result.Projects, result.Prompts, result.Templates)
			return nil
		},
	}
}
