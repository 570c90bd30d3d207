package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	conf, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, 30*time.Second, conf.ShutdownTimeout)
	assert.False(t, conf.SeedDemo)
	assert.Equal(t, 3000, conf.HTTP.Port)
	assert.Equal(t, "*", conf.HTTP.CORSOrigins)
	assert.True(t, conf.HTTP.AccessLog)
	assert.Equal(t, BackendMemory, conf.Storage.Backend)
	assert.Equal(t, 256, conf.Storage.QueueSize)
	assert.Equal(t, "quicktasks.db", conf.Storage.SQLite.Path)
	assert.Equal(t, "localhost:6379", conf.Storage.Redis.Addr)
	assert.Equal(t, "quicktasks:", conf.Storage.Redis.Prefix)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("QUICKTASKS_HTTP_PORT", "8081")
	t.Setenv("QUICKTASKS_SEED_DEMO", "true")
	t.Setenv("QUICKTASKS_STORAGE_BACKEND", "sqlite")
	t.Setenv("QUICKTASKS_STORAGE_SQLITE_PATH", "/tmp/tasks.db")
	t.Setenv("QUICKTASKS_SHUTDOWN_TIMEOUT", "5s")

	conf, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 8081, conf.HTTP.Port)
	assert.True(t, conf.SeedDemo)
	assert.Equal(t, BackendSQLite, conf.Storage.Backend)
	assert.Equal(t, "/tmp/tasks.db", conf.Storage.SQLite.Path)
	assert.Equal(t, 5*time.Second, conf.ShutdownTimeout)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown backend", key: "QUICKTASKS_STORAGE_BACKEND", value: "postgres"},
		{name: "unknown log level", key: "QUICKTASKS_LOG_LEVEL", value: "verbose"},
		{name: "unsupported log level", key: "QUICKTASKS_LOG_LEVEL", value: "debug"},
		{name: "port out of range", key: "QUICKTASKS_HTTP_PORT", value: "70000"},
		{name: "zero queue size", key: "QUICKTASKS_STORAGE_QUEUE_SIZE", value: "0"},
		{name: "not a number", key: "QUICKTASKS_HTTP_PORT", value: "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("QUICKTASKS_STORAGE_BACKEND=redis\nQUICKTASKS_STORAGE_REDIS_PREFIX=test:\n"), 0o600))

	// godotenv never overrides variables that are already set, so register
	// cleanup for the ones the file introduces.
	t.Cleanup(func() {
		os.Unsetenv("QUICKTASKS_STORAGE_BACKEND")
		os.Unsetenv("QUICKTASKS_STORAGE_REDIS_PREFIX")
	})

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, conf.Storage.Backend)
	assert.Equal(t, "test:", conf.Storage.Redis.Prefix)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, conf.Storage.Backend)
}
