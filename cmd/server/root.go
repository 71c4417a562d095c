package main

import (
	"cashon/internal/config"
	"cashon/internal/logger"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "cashon",
	Short:         "Wallet ledger, withdrawals, deposits and savings interest",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
		cfg = config.Load()

		pretty, _ := cmd.Flags().GetBool("pretty")
		logger.Init("cashon", cfg.LogLevel, pretty || !config.IsProduction())
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("pretty", false, "Human readable log output")
}
