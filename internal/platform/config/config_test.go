package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "pgx", cfg.Postgres.Driver)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Empty(t, cfg.Modules)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaffold.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
modules = ["core.*"]

[server]
addr = ":9090"
shutdown_timeout = "3s"

[store]
driver = "redis"

[redis]
url = "redis://localhost:6379/0"
pool_size = 4

[kafka]
brokers = ["localhost:9092"]
events = ["core.thing.thing_created"]
`), 0o600))

	cfg, err := load(envOf(map[string]string{
		"CONFIG_FILE":   path,
		"SCAFFOLD_ADDR": ":7070",
		"KAFKA_TOPIC":   "things",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, StoreRedis, cfg.Store.Driver)
	assert.Equal(t, 4, cfg.Redis.PoolSize)
	assert.Equal(t, 3*time.Second, cfg.Redis.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, []string{"core.*"}, cfg.Modules)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "things", cfg.Kafka.Topic)
	assert.Equal(t, []string{"core.thing.thing_created"}, cfg.Kafka.Events)
}

func TestLoadParsesLists(t *testing.T) {
	cfg, err := load(envOf(map[string]string{
		"KAFKA_BROKERS": "a:9092, b:9092,,",
		"MODULES":       "core.thing",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"core.thing"}, cfg.Modules)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown store", env: map[string]string{"STORE_DRIVER": "mongo"}},
		{name: "postgres without dsn", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "redis without url", env: map[string]string{"STORE_DRIVER": "redis"}},
		{name: "unknown pg driver", env: map[string]string{"POSTGRES_DRIVER": "mysql"}},
		{name: "bad duration", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{name: "bad pool size", env: map[string]string{"REDIS_POOL_SIZE": "many"}},
		{name: "missing file", env: map[string]string{"CONFIG_FILE": "/nonexistent/scaffold.toml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(envOf(tt.env))
			require.Error(t, err)
		})
	}
}
