package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"supermarket-inventory/internal/logger"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env                    string
	AppPort                string
	AppName                string
	StoreHTTP              string
	StoreGRPC              string
	StoreTimeoutMs         int64
	StoreGRPCPort          string
	ProxyHTTP              string
	StoreDriver            string
	MongoURI               string
	MongoDBName            string
	SQLitePath             string
	PostgresDSN            string
	ShutdownTimeoutMs      int64
	TraceStdout            bool
	RemoteLogHttpURI       string
	RemoteTraceRpcURI      string
	RemoteProfilingHttpURI string
}

// SafeConfig is the loggable view of Config (no credentials).
type SafeConfig struct {
	Env                    string `json:"env"`
	AppPort                string `json:"app_port"`
	AppName                string `json:"app_name"`
	StoreHTTP              string `json:"store_http"`
	StoreGRPC              string `json:"store_grpc"`
	StoreTimeoutMs         int64  `json:"store_timeout_ms"`
	StoreGRPCPort          string `json:"store_grpc_port"`
	ProxyHTTP              string `json:"proxy_http"`
	StoreDriver            string `json:"store_driver"`
	MongoDBName            string `json:"mongo_db_name"`
	SQLitePath             string `json:"sqlite_path"`
	ShutdownTimeoutMs      int64  `json:"shutdown_timeout_ms"`
	TraceStdout            bool   `json:"trace_stdout"`
	RemoteLogHttpURI       string `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "3000"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + "." + jsonKey(f)

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		case reflect.Bool:
			attrs = append(attrs, slog.Bool(key, v.Field(i).Bool()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

// jsonKey uses the `json:"..."` tag when present, camelCase->snake otherwise.
func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func (c *Config) ToSafeConfig() SafeConfig {
	return SafeConfig{
		Env:                    c.Env,
		AppPort:                c.AppPort,
		AppName:                c.AppName,
		StoreHTTP:              c.StoreHTTP,
		StoreGRPC:              c.StoreGRPC,
		StoreTimeoutMs:         c.StoreTimeoutMs,
		StoreGRPCPort:          c.StoreGRPCPort,
		ProxyHTTP:              c.ProxyHTTP,
		StoreDriver:            c.StoreDriver,
		MongoDBName:            c.MongoDBName,
		SQLitePath:             c.SQLitePath,
		ShutdownTimeoutMs:      c.ShutdownTimeoutMs,
		TraceStdout:            c.TraceStdout,
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
	}
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

var log = logger.Instance()
var (
	configInstance *Config
	configOnce     sync.Once
)

func getString(varName, fallback string) string {
	if val := os.Getenv(varName); val != "" {
		return val
	}
	return fallback
}

func setInt64(varName string, fallback int64) (int64, error) {
	val := os.Getenv(varName)
	if val == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(val, 10, 64)
	if err != nil || num < 0 {
		return fallback, fmt.Errorf("invalid %s %q", varName, val)
	}
	return num, nil
}

func setBool(varName string) (bool, error) {
	val := os.Getenv(varName)
	if val == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", varName, val)
	}
	return b, nil
}

// Load reads the configuration from the environment. Malformed numeric or
// boolean values are reported and replaced by their defaults.
func Load() (*Config, []error) {
	var errs []error

	cfg := &Config{
		Env:                    getString("ENV", "development"),
		AppPort:                os.Getenv("APP_PORT"),
		AppName:                getString("APP_NAME", "supermarket-inventory"),
		StoreHTTP:              strings.TrimRight(getString("STORE_HTTP", "http://localhost:3001"), "/"),
		StoreGRPC:              getString("STORE_GRPC", "localhost:50051"),
		StoreGRPCPort:          getString("STORE_GRPC_PORT", "50051"),
		ProxyHTTP:              strings.TrimRight(getString("PROXY_HTTP", "http://localhost:3000"), "/"),
		StoreDriver:            strings.ToLower(getString("STORE_DRIVER", DriverMongo)),
		MongoURI:               os.Getenv("MONGO_URI"),
		MongoDBName:            os.Getenv("MONGO_DB_NAME"),
		SQLitePath:             getString("SQLITE_PATH", "products.db"),
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		RemoteLogHttpURI:       os.Getenv("REMOTE_LOG_HTTP_URI"),
		RemoteTraceRpcURI:      os.Getenv("REMOTE_TRACE_RPC_URI"),
		RemoteProfilingHttpURI: os.Getenv("REMOTE_PROFILING_HTTP_URI"),
	}

	var err error
	if cfg.StoreTimeoutMs, err = setInt64("STORE_TIMEOUT_MS", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.ShutdownTimeoutMs, err = setInt64("SHUTDOWN_TIMEOUT_MS", 10000); err != nil {
		errs = append(errs, err)
	}
	if cfg.TraceStdout, err = setBool("TRACE_STDOUT"); err != nil {
		errs = append(errs, err)
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver))
		cfg.StoreDriver = DriverMongo
	}

	return cfg, errs
}

func Instance() *Config {
	configOnce.Do(func() {
		// Load .env file (optional)
		if err := godotenv.Load(); err != nil {
			log.Warn("No .env file found, using system environment variables")
		}

		var errs []error
		configInstance, errs = Load()
		for _, err := range errs {
			log.Warn("Falling back to default", slog.String("error", err.Error()))
		}

		if configInstance.RemoteLogHttpURI == "" {
			log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if configInstance.RemoteTraceRpcURI == "" {
			log.Warn("Missing REMOTE_TRACE_RPC_URI will skip sending trace")
		}
		if configInstance.RemoteProfilingHttpURI == "" {
			log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		logger.ConfigureRemote(configInstance.RemoteLogHttpURI, configInstance.AppName)

		attrs := StructAttrs("data", configInstance.ToSafeConfig())
		anyAttrs := make([]any, len(attrs))
		for i, a := range attrs {
			anyAttrs[i] = a
		}
		log.Info("Configuration loaded successfully", anyAttrs...)
	})

	return configInstance
}

// Missing returns the names of the given environment variables whose
// configured value is empty.
func (c *Config) Missing(names ...string) []string {
	values := map[string]string{
		"APP_PORT":      c.AppPort,
		"APP_NAME":      c.AppName,
		"STORE_HTTP":    c.StoreHTTP,
		"STORE_GRPC":    c.StoreGRPC,
		"PROXY_HTTP":    c.ProxyHTTP,
		"MONGO_URI":     c.MongoURI,
		"MONGO_DB_NAME": c.MongoDBName,
		"SQLITE_PATH":   c.SQLitePath,
		"POSTGRES_DSN":  c.PostgresDSN,
	}

	var missing []string
	for _, name := range names {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Require exits the process when any of the named variables is empty.
func (c *Config) Require(names ...string) {
	if missing := c.Missing(names...); len(missing) > 0 {
		log.Error("Missing required environment variables", slog.Any("missing", missing))
		os.Exit(1)
	}
}
