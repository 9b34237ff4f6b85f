package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from an empty directory so no config.yaml is picked up.
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "fitpull.db", cfg.Store.Path)
	assert.Equal(t, "https://gmail.com", cfg.Webmail.URL)
	assert.Equal(t, "Your weekly progress report from Fitbit!", cfg.Webmail.ReportSubject)
	assert.Equal(t, 300, cfg.Webmail.LoginTimeoutSecs)
	assert.False(t, cfg.Webmail.Headless)
	assert.Equal(t, 10, cfg.Extract.MaxEmails)
	assert.Equal(t, 60, cfg.Extract.CallTimeoutSecs)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileOverrides(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })

	dir := t.TempDir()
	yaml := []byte(`
store:
  driver: postgres
  database_url: postgres://localhost/fitpull
webmail:
  login_timeout_secs: 30
server:
  port: 8080
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	require.NoError(t, os.Chdir(dir))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/fitpull", cfg.Store.DatabaseURL)
	assert.Equal(t, 30, cfg.Webmail.LoginTimeoutSecs)
	assert.Equal(t, 8080, cfg.Server.Port)
	// Untouched keys keep defaults.
	assert.Equal(t, 10, cfg.Extract.MaxEmails)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
