package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/promptkit/internal/config"
	"github.com/mesh-intelligence/promptkit/internal/paths"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long:  "Write a default config.yaml if none exists, then create the database and seed the default templates.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(flags.configDir)
			if err != nil {
				return systemError(fmt.Errorf("resolve config dir: %w", err))
			}
			if _, err := config.WriteDefault(configDir); err != nil {
				return systemError(err)
			}

			store, dirs, err := flags.openStore()
			if err != nil {
				return err
			}
			if err := store.Detach(); err != nil {
				return systemError(fmt.Errorf("close store: %w", err))
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return writeJSON(out, map[string]string{
					"config_dir": dirs.configDir,
					"data_dir":   dirs.dataDir,
				})
			}
			fmt.Fprintf(out, "promptkit initialized\nconfig: %s\ndata:   %s\n", paths.ConfigFile(dirs.configDir), dirs.dataDir)
			return nil
		},
	}
}
