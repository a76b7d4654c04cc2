package main

import (
	"context"

	"storeapi/internal/config"
	"storeapi/internal/logger"
	"storeapi/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// storeapi migrate: create indexes (mongo) or tables (postgres, sqlite).
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the configured store's schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		store, err := server.OpenStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		log.Info("store schema is up to date", zap.String("driver", store.Driver))
		return store.Close(ctx)
	},
}
