package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDaemon_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadDaemon("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Pool.Workers)
	assert.False(t, cfg.Pool.LogTasks)
	assert.Equal(t, 30*time.Second, cfg.Pool.ReportInterval)
	assert.Equal(t, 5*time.Minute, cfg.Pool.StallTimeout)
	assert.Equal(t, ":8080", cfg.REST.Addr)
	assert.Equal(t, 15*time.Second, cfg.REST.ReadTimeout)
	assert.Equal(t, ":9090", cfg.GRPC.Addr)
	assert.True(t, cfg.GRPC.EnableReflection)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadDaemon_FileAndEnv(t *testing.T) {
	path := writeConfig(t, "poold.yaml", `
pool:
  workers: 10
  log_tasks: true
rest:
  addr: ":18080"
  idle_timeout: 2m
logging:
  level: debug
  format: text
  file: /tmp/poold.log
`)
	t.Setenv("GOPOOL_POOL_WORKERS", "6")
	t.Setenv("GOPOOL_GRPC_ADDR", "127.0.0.1:19090")

	cfg, err := LoadDaemon(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Pool.Workers)
	assert.True(t, cfg.Pool.LogTasks)
	assert.Equal(t, ":18080", cfg.REST.Addr)
	assert.Equal(t, 2*time.Minute, cfg.REST.IdleTimeout)
	assert.Equal(t, "127.0.0.1:19090", cfg.GRPC.Addr)

	opts := cfg.Logging.Options()
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, "text", opts.Format)
	assert.Equal(t, "/tmp/poold.log", opts.File)
	assert.Equal(t, 100, opts.MaxSizeMB)
}

func TestLoadDaemon_MissingExplicitFile(t *testing.T) {
	_, err := LoadDaemon(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadDaemon_Invalid(t *testing.T) {
	path := writeConfig(t, "poold.yaml", `
pool:
  workers: 0
metrics:
  path: metrics
logging:
  level: loud
  format: xml
`)

	_, err := LoadDaemon(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool.workers")
	assert.Contains(t, err.Error(), "metrics.path")
	assert.Contains(t, err.Error(), "unknown log level")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestDaemonConfig_Validate(t *testing.T) {
	cfg := DaemonConfig{
		Pool:    PoolConfig{Workers: 1},
		GRPC:    GRPCConfig{Addr: ":9090"},
		Logging: LoggingConfig{Level: "warn", Format: "json"},
	}
	assert.NoError(t, cfg.Validate())

	cfg.GRPC.Addr = ""
	assert.ErrorContains(t, cfg.Validate(), "rest.addr")
}

func TestLoadClient(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOPOOL_CLIENT_ADDR", "pool.internal:9090")
	t.Setenv("GOPOOL_CLIENT_TIMEOUT", "5s")

	cfg, err := LoadClient("")
	require.NoError(t, err)

	assert.Equal(t, "pool.internal:9090", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 30*time.Second, cfg.KeepaliveTime)
	assert.Equal(t, 5*time.Second, cfg.KeepaliveTimeout)
}
