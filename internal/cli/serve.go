package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/promptkit/internal/httpapi"
	"github.com/mesh-intelligence/promptkit/internal/logging"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long:  "Open the store and serve the JSON API until interrupted (SIGINT or SIGTERM).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, dirs, err := flags.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			cfg := dirs.cfg
			if addr != "" {
				cfg.ListenAddr = addr
			}

			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return userError(err)
			}
			logger.Info("store attached", "data_dir", dirs.dataDir)

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			router := httpapi.NewRouter(store, logger, cfg.CORSOrigins)
			srv := httpapi.NewServer(httpapi.ServerConfig{
				Addr:            cfg.ListenAddr,
				ReadTimeout:     cfg.ReadTimeout,
				WriteTimeout:    cfg.WriteTimeout,
				ShutdownTimeout: cfg.ShutdownTimeout,
			}, router, logger)

			if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
				return systemError(fmt.Errorf("serve: %w", err))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides listen_addr)")
	return cmd
}

// commandContext returns the command's context, or Background when the
// command was run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
