package main

import (
	"github.com/geocoder89/coursehub/internal/db"
	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
			if err != nil {
				log.ErrorContext(ctx, "db connect failed", "err", err)
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				log.ErrorContext(ctx, "migrate failed", "err", err)
				return err
			}

			log.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}
