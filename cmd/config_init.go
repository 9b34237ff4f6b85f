package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fitpull/fitpull/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "config.yaml"
		if _, err := os.Stat(path); err == nil {
			return eris.Errorf("%s already exists, refusing to overwrite", path)
		}

		defaults := config.Config{
			Store: config.StoreConfig{
				Driver: "sqlite",
				Path:   "fitpull.db",
			},
			Anthropic: config.AnthropicConfig{
				Model: "claude-haiku-4-5-20251001",
			},
			Webmail: config.WebmailConfig{
				URL:              "https://gmail.com",
				ReportSubject:    "Your weekly progress report from Fitbit!",
				LoginTimeoutSecs: 300,
			},
			Extract: config.ExtractConfig{
				MaxEmails:       10,
				CallTimeoutSecs: 60,
				RatePerSec:      1.0,
			},
			Server: config.ServerConfig{
				Port: 3000,
			},
			Log: config.LogConfig{
				Level:  "info",
				Format: "json",
			},
		}

		data, err := yaml.Marshal(defaults)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", path)
		}

		fmt.Printf("Wrote %s. Set anthropic.key (or FITPULL_ANTHROPIC_KEY) before running.\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
