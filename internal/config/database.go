package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/database"
)

// Environment keys for the database connection
const (
	EnvDatabaseDriver          = "ENV_DATABASE_DRIVER"
	EnvDatabaseServer          = "ENV_DATABASE_SERVER"
	EnvDatabasePort            = "ENV_DATABASE_PORT"
	EnvDatabaseName            = "ENV_DATABASE_NAME"
	EnvDatabaseUsername        = "ENV_DATABASE_USERNAME"
	EnvDatabasePassword        = "ENV_DATABASE_PASSWORD"
	EnvDatabaseConnectTimeout  = "ENV_DATABASE_CONNECT_TIMEOUT"
	EnvDatabaseEncrypt         = "ENV_DATABASE_ENCRYPT"
	EnvDatabaseTrustServerCert = "ENV_DATABASE_TRUST_SERVER_CERTIFICATE"
	EnvDatabaseAutoMigrate     = "ENV_DATABASE_AUTO_MIGRATE"
)

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Driver                 string
	Server                 string
	Port                   int
	Name                   string
	Username               string
	Password               string
	ConnectTimeout         time.Duration
	Encrypt                bool
	TrustServerCertificate bool
	AutoMigrate            bool
}

// MissingConfigError lists required environment keys that were not set
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Keys, ", "))
}

// Validate validates the database configuration. File-backed SQLite only
// needs a name; network drivers need all four credentials.
func (c *DatabaseConfig) Validate() error {
	dialect, err := database.DialectFor(c.Driver)
	if err != nil {
		return err
	}

	required := []struct {
		key   string
		value string
	}{
		{EnvDatabaseServer, c.Server},
		{EnvDatabaseName, c.Name},
		{EnvDatabaseUsername, c.Username},
		{EnvDatabasePassword, c.Password},
	}

	var missing []string
	for _, r := range required {
		if dialect.Name() == database.DialectSQLite && r.key != EnvDatabaseName {
			continue
		}
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}

	if len(missing) > 0 {
		return &MissingConfigError{Keys: missing}
	}

	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect timeout cannot be negative")
	}

	return nil
}

// ToConnectionConfig converts DatabaseConfig to database.ConnectionConfig
func (c *DatabaseConfig) ToConnectionConfig(logger *logrus.Logger) *database.ConnectionConfig {
	return &database.ConnectionConfig{
		Driver:                 c.Driver,
		Server:                 c.Server,
		Port:                   c.Port,
		Name:                   c.Name,
		Username:               c.Username,
		Password:               c.Password,
		ConnectTimeout:         c.ConnectTimeout,
		Encrypt:                c.Encrypt,
		TrustServerCertificate: c.TrustServerCertificate,
		Logger:                 logger,
	}
}
