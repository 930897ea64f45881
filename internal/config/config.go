// ABOUTME: Configuration loading and parsing for beerbot
// ABOUTME: Supports YAML files with environment variable expansion

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete beerbot configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Matrix   MatrixConfig   `yaml:"matrix"`
	Bot      BotConfig      `yaml:"bot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds web server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig selects the storage backend. The choice is made once at
// startup and never re-evaluated.
type DatabaseConfig struct {
	// Backend is "sqlite" (embedded file) or "postgres" (networked)
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"` // sqlite file path
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds networked-backend connection parameters
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"` // defaults to "require"
}

// MatrixConfig holds chat adapter configuration
type MatrixConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Homeserver    string   `yaml:"homeserver"`
	UserID        string   `yaml:"user_id"`
	AccessToken   string   `yaml:"access_token"`
	AllowedRooms  []string `yaml:"allowed_rooms"`
	CommandPrefix string   `yaml:"command_prefix"`
}

// BotConfig holds command behavior toggles
type BotConfig struct {
	// AutoRegister registers unknown users on their first drink command
	// instead of requiring an explicit register. Off by default.
	AutoRegister bool `yaml:"auto_register"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in unset fields with sensible defaults
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "0.0.0.0:8080"
	}
	if c.Database.Backend == "" {
		c.Database.Backend = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "beerbot.db"
	}
	if c.Database.Postgres.Port == 0 {
		c.Database.Postgres.Port = 5432
	}
	if c.Database.Postgres.SSLMode == "" {
		c.Database.Postgres.SSLMode = "require"
	}
	if c.Matrix.CommandPrefix == "" {
		c.Matrix.CommandPrefix = "!beer"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case "sqlite":
		// Path has a default; nothing else required.
	case "postgres":
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for the postgres backend")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required for the postgres backend")
		}
		if c.Database.Postgres.DBName == "" {
			return fmt.Errorf("database.postgres.dbname is required for the postgres backend")
		}
	default:
		return fmt.Errorf("database.backend must be \"sqlite\" or \"postgres\", got %q", c.Database.Backend)
	}

	if c.Matrix.Enabled {
		if c.Matrix.Homeserver == "" {
			return fmt.Errorf("matrix.homeserver is required when matrix is enabled")
		}
		if c.Matrix.UserID == "" {
			return fmt.Errorf("matrix.user_id is required when matrix is enabled")
		}
		if c.Matrix.AccessToken == "" {
			return fmt.Errorf("matrix.access_token is required when matrix is enabled")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}
