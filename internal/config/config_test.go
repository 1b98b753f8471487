package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the global and project config locations at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(GlobalPath()), 0o755))
	require.NoError(t, os.WriteFile(GlobalPath(), []byte("store: file\nendpoint: https://global.example\nlog_level: warn\n"), 0o600))
	require.NoError(t, os.WriteFile(ProjectPath(), []byte("endpoint: https://project.example\nsubmit_timeout: 5s\n"), 0o600))
	t.Setenv("ONBOARD_LOG_LEVEL", "debug")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":9999"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store, "global file")
	assert.Equal(t, "https://project.example", cfg.Endpoint, "project overrides global")
	assert.Equal(t, 5*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, "debug", cfg.LogLevel, "env overrides files")
	assert.Equal(t, ":9999", cfg.Addr, "flags override everything")
}

func TestLoad_UnsetFlagDoesNotOverride(t *testing.T) {
	isolate(t)
	t.Setenv("ONBOARD_ADDR", ":7000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	t.Setenv("ONBOARD_STORE", "floppy")
	_, err := Load(nil)
	assert.ErrorContains(t, err, "store must be one of")

	t.Setenv("ONBOARD_STORE", StorePostgres)
	_, err = Load(nil)
	assert.ErrorContains(t, err, "postgres_dsn is required")
}

func TestWriteProject_RoundTrip(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Endpoint = "https://api.example/register"
	cfg.SessionTTL = 2 * time.Hour
	cfg.RedactPatterns = []string{"^emergency_"}
	require.NoError(t, WriteProject(cfg))

	raw, err := os.ReadFile(ProjectPath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "session_ttl: 2h0m0s")
	assert.Contains(t, string(raw), "submit_timeout: 30s")

	info, err := os.Stat(ProjectPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.True(t, Exists())
}

func TestGlobalPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, filepath.Join("/custom/config", "onboard", "onboard.yml"), GlobalPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	got := GlobalPath()
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "onboard.yml", filepath.Base(got))
}
