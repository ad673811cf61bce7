package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/xraph/wayfarer/config"
)

func newMigrateCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run store schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")

	return cmd
}

func migrate(ctx context.Context, cfg *config.Config) error {
	logger := buildLogger(cfg.Log)

	s, cleanup, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate %s store: %w", cfg.Store.Driver, err)
	}

	logger.Info("migrations applied", slog.String("driver", cfg.Store.Driver))

	return nil
}
