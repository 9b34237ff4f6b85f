package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fitpull/fitpull/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fitpull",
	Short: "Fitbit weekly report extraction agent",
	Long:  "Drives a browser through webmail, parses weekly Fitbit report emails into structured metrics via Claude, and stores them with week-over-week variance.",
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
