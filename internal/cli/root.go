// Package cli implements the promptkit command-line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/promptkit/internal/config"
	"github.com/mesh-intelligence/promptkit/internal/paths"
	"github.com/mesh-intelligence/promptkit/internal/sqlite"
	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// Exit codes. Success is 0.
const (
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values for one command tree.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error   { return &exitError{code: exitUserError, err: err} }
func systemError(err error) error { return &exitError{code: exitSysError, err: err} }

// classify picks user or system exit codes for a store error.
func classify(err error) error {
	switch {
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrDefaultTemplate):
		return userError(err)
	default:
		return systemError(err)
	}
}

// NewRootCmd creates the top-level "promptkit" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "promptkit",
		Short: "Compose structured prompts for coding agents",
		Long: "promptkit stores projects, prompts, and reusable templates in a local\n" +
			"SQLite database and serves them over a JSON HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: config data_dir or platform data dir)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(flags),
		newServeCmd(flags),
		newListCmd(flags),
		newTemplatesCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newFormatCmd(flags),
	)
	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	os.Exit(exitUserError)
}

// resolvedDirs holds the config dir, loaded config, and data dir.
type resolvedDirs struct {
	configDir string
	dataDir   string
	cfg       *config.Config
}

func (f *rootFlags) resolve() (*resolvedDirs, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return nil, systemError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, userError(err)
	}
	dataDir, err := paths.ResolveDataDir(f.dataDir, cfg.DataDir)
	if err != nil {
		return nil, systemError(fmt.Errorf("resolve data dir: %w", err))
	}
	return &resolvedDirs{configDir: configDir, dataDir: dataDir, cfg: cfg}, nil
}

// openStore attaches the SQLite store for a one-shot command. The caller
// must Detach it.
func (f *rootFlags) openStore() (types.Store, *resolvedDirs, error) {
	dirs, err := f.resolve()
	if err != nil {
		return nil, nil, err
	}
	store := sqlite.NewBackend()
	if err := store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dirs.dataDir}); err != nil {
		return nil, nil, systemError(fmt.Errorf("open store: %w", err))
	}
	return store, dirs, nil
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return systemError(fmt.Errorf("marshal output: %w", err))
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
