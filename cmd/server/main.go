package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paranovaq/game-shop/internal/config"
	"github.com/paranovaq/game-shop/internal/logging"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

func main() {
	var flags rootFlags

	root := &cobra.Command{
		Use:          "gameshop",
		Short:        "Game storefront cart and inventory engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "gameshop.yaml", "Path to the YAML config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run a storefront session behind the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), flags, runServe)
			},
		},
		&cobra.Command{
			Use:   "catalog",
			Short: "Run the remote catalog gRPC server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), flags, runCatalog)
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// withRuntime loads and validates config, builds the logger and hands both
// to run.
func withRuntime(ctx context.Context, flags rootFlags, run func(context.Context, *config.Config, *zap.Logger) error) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Logging, flags.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return run(ctx, cfg, logger)
}
