package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables, indexes and run database migrations",
	Long:  `Brings the configured storage backend's schema up to date and exits. The in-memory driver has nothing to migrate.`,
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		log.Info().Str("driver", appCfg.Storage.Driver).Msg("Running migrations...")
		st, err := openStores(ctx, appCfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		st.close()

		log.Info().Msg("Migrations complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
