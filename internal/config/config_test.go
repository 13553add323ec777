package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"ENV", "APP_PORT", "APP_NAME", "STORE_HTTP", "STORE_GRPC", "STORE_GRPC_PORT",
	"STORE_TIMEOUT_MS", "PROXY_HTTP", "STORE_DRIVER", "MONGO_URI", "MONGO_DB_NAME",
	"SQLITE_PATH", "POSTGRES_DSN", "SHUTDOWN_TIMEOUT_MS", "TRACE_STDOUT",
	"REMOTE_LOG_HTTP_URI", "REMOTE_TRACE_RPC_URI", "REMOTE_PROFILING_HTTP_URI",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allVars {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, errs := Load()
	require.Empty(t, errs)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "supermarket-inventory", cfg.AppName)
	assert.Equal(t, "http://localhost:3001", cfg.StoreHTTP)
	assert.Equal(t, "http://localhost:3000", cfg.ProxyHTTP)
	assert.Equal(t, "localhost:50051", cfg.StoreGRPC)
	assert.Equal(t, "50051", cfg.StoreGRPCPort)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "products.db", cfg.SQLitePath)
	assert.Zero(t, cfg.StoreTimeoutMs)
	assert.Equal(t, int64(10000), cfg.ShutdownTimeoutMs)
	assert.False(t, cfg.TraceStdout)
	assert.Empty(t, cfg.AppPort)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("STORE_HTTP", "http://store:9000/")
	t.Setenv("STORE_TIMEOUT_MS", "2500")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("TRACE_STDOUT", "true")

	cfg, errs := Load()
	require.Empty(t, errs)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "http://store:9000", cfg.StoreHTTP)
	assert.Equal(t, int64(2500), cfg.StoreTimeoutMs)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.True(t, cfg.TraceStdout)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_TIMEOUT_MS", "soon")
	t.Setenv("SHUTDOWN_TIMEOUT_MS", "-5")
	t.Setenv("TRACE_STDOUT", "maybe")
	t.Setenv("STORE_DRIVER", "oracle")

	cfg, errs := Load()
	assert.Len(t, errs, 4)
	assert.Zero(t, cfg.StoreTimeoutMs)
	assert.Equal(t, int64(10000), cfg.ShutdownTimeoutMs)
	assert.False(t, cfg.TraceStdout)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
}

func TestMissing(t *testing.T) {
	cfg := &Config{MongoURI: "mongodb://localhost:27017"}

	assert.Equal(t, []string{"MONGO_DB_NAME", "POSTGRES_DSN"},
		cfg.Missing("MONGO_URI", "MONGO_DB_NAME", "POSTGRES_DSN"))
	assert.Empty(t, cfg.Missing("MONGO_URI"))
}

func TestSafeConfigOmitsCredentials(t *testing.T) {
	cfg := &Config{
		AppName:     "inventory",
		MongoURI:    "mongodb://user:secret@db:27017",
		PostgresDSN: "postgres://user:secret@db/products",
	}

	attrs := StructAttrs("data", cfg.ToSafeConfig())
	keys := make(map[string]slog.Value, len(attrs))
	for _, a := range attrs {
		keys[a.Key] = a.Value
	}

	assert.Equal(t, "inventory", keys["data.app_name"].String())
	assert.NotContains(t, keys, "data.mongo_uri")
	assert.NotContains(t, keys, "data.postgres_dsn")
}
