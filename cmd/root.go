package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Hem1234567/laras-07/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "laras",
	Short: "Infrastructure project and land-acquisition data scraper",
	Long:  "Scrapes highway project listings, gazette notifications, court judgments and news, normalizes them and writes CSV, seed SQL and a remote projects table.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
