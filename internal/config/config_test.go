package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_DATA_HOME", "/xdg")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "taskgraph", cfg.Events.SubjectPrefix)
	assert.Empty(t, cfg.Events.NATSURL)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, filepath.Join("/xdg", "taskgraph"), cfg.Data.Dir)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  dir: /var/lib/taskgraph
log:
  level: DEBUG
server:
  addr: 127.0.0.1:9000
  allowed_origins: [http://localhost:3000]
`), 0600))
	t.Setenv("TASKGRAPH_LOG_FORMAT", "json")
	t.Setenv("TASKGRAPH_EVENTS_NATS_URL", "nats://localhost:4222")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/taskgraph", cfg.Data.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATSURL)
}

func TestLoad_LocalDirConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.Mkdir(LocalDirName, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(LocalDirName, ".taskgraph.yaml"), []byte("log:\n  level: warn\n"), 0600))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, LocalDirName, cfg.Data.Dir)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(viper.New(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")

	t.Setenv("TASKGRAPH_LOG_LEVEL", "chatty")
	_, err = Load(viper.New(), "")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestDefaultDataDir_GlobalFallback(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")

	original := GetGlobalDir
	defer func() { GetGlobalDir = original }()
	GetGlobalDir = func() (string, error) { return "/home/test/.taskgraph", nil }

	dir, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/test/.taskgraph", dir)
}
