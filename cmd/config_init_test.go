package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fitpull/fitpull/internal/config"
)

func TestConfigInitWritesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, configInitCmd.RunE(configInitCmd, nil))

	data, err := os.ReadFile("config.yaml")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "Your weekly progress report from Fitbit!", cfg.Webmail.ReportSubject)
	assert.Equal(t, 10, cfg.Extract.MaxEmails)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("config.yaml", []byte("store:\n  driver: postgres\n"), 0o644))

	err := configInitCmd.RunE(configInitCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")

	// The existing file is untouched.
	data, err := os.ReadFile("config.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "postgres")
}
