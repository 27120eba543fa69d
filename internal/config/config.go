package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/observability"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	BasePath    string
	Database    DatabaseConfig
	Log         observability.LogConfig
	Metrics     MetricsConfig
	Serverless  *ServerlessConfig
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("BASE_PATH", "")
	v.SetDefault(EnvDatabaseDriver, "sqlserver")
	v.SetDefault(EnvDatabasePort, 0)
	v.SetDefault(EnvDatabaseConnectTimeout, "30s")
	v.SetDefault(EnvDatabaseEncrypt, true)
	v.SetDefault(EnvDatabaseTrustServerCert, true)
	v.SetDefault(EnvDatabaseAutoMigrate, false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")

	serverless := DetectServerless()

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		BasePath:    normalizeBasePath(v.GetString("BASE_PATH")),
		Database: DatabaseConfig{
			Driver:                 v.GetString(EnvDatabaseDriver),
			Server:                 v.GetString(EnvDatabaseServer),
			Port:                   v.GetInt(EnvDatabasePort),
			Name:                   v.GetString(EnvDatabaseName),
			Username:               v.GetString(EnvDatabaseUsername),
			Password:               v.GetString(EnvDatabasePassword),
			ConnectTimeout:         durationOrDefault(v.GetString(EnvDatabaseConnectTimeout), 30*time.Second),
			Encrypt:                v.GetBool(EnvDatabaseEncrypt),
			TrustServerCertificate: v.GetBool(EnvDatabaseTrustServerCert),
			AutoMigrate:            v.GetBool(EnvDatabaseAutoMigrate),
		},
		Log: observability.LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
		Serverless: serverless,
	}

	if config.Log.Format == "" {
		if serverless.Mode != ModeServer {
			config.Log.Format = "json"
		} else {
			config.Log.Format = "text"
		}
	}

	AdaptConfigForServerless(config)

	return config, nil
}

func normalizeBasePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return ""
	}
	return "/" + strings.Trim(path, "/")
}

func durationOrDefault(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	// bare numbers are seconds
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
