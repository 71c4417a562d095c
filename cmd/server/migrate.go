package main

import (
	"cashon/internal/logger"
	"cashon/internal/repositories"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := repositories.InitDB(cfg.DB)
		if err != nil {
			return err
		}
		defer repositories.Close(db)

		logger.Info().Int("tables", len(repositories.Models())).Msg("schema migrated")
		return nil
	},
}
