package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TASKBOARD_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_FileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
store:
  path: /tmp/board.db
  adapter_timeout: 3s
redis:
  addr: localhost:6379
log:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, "/tmp/board.db", cfg.Store.Path)
	require.Equal(t, 3*time.Second, cfg.Store.AdapterTimeout)
	require.Equal(t, "warn", cfg.Store.LogLevel)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, "taskboard:changes:", cfg.Redis.ChannelPrefix)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9000\"\n")
	t.Setenv("TASKBOARD_CONFIG", path)
	t.Setenv("TASKBOARD_ADDR", ":7000")
	t.Setenv("TASKBOARD_DB", "env.db")
	t.Setenv("TASKBOARD_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.Server.Addr)
	require.Equal(t, "env.db", cfg.Store.Path)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map]"))
	require.ErrorContains(t, err, "failed to parse config")

	_, err = Load(writeConfig(t, "log:\n  format: xml\n"))
	require.ErrorContains(t, err, "log.format")
}
