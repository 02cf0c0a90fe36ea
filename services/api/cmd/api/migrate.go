package main

import (
	"github.com/cimillas/festival/services/api/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			pool, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := migrations.Apply(cmd.Context(), pool); err != nil {
				return err
			}
			version, dirty, err := migrations.Version(pool)
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "version", version, "dirty", dirty)
			return nil
		},
	}
}
