package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds all configuration for the webhook service
type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Database DatabaseConfig    `yaml:"database"`
	RabbitMQ RabbitMQConfig    `yaml:"rabbitmq"`
	Session  SessionConfig     `yaml:"session"`
	Intents  map[string]string `yaml:"intents"`
	Locale   string            `yaml:"locale"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"`
	MaxConns int    `yaml:"max_conns"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Exchange string `yaml:"exchange"`
}

// SessionConfig tunes the in-memory session order store
type SessionConfig struct {
	Shards          int  `yaml:"shards"`
	RetainOnFailure bool `yaml:"retain_on_failure"`
}

// DefaultIntents maps intent kinds to the display names configured on the
// NLU platform agent. The irregular spacing is what the agent sends.
func DefaultIntents() map[string]string {
	return map[string]string{
		"add_to_order":      "order.add-context: ongoing-order",
		"remove_from_order": "order.remove - context: ongoing-order",
		"complete_order":    "order-complete-context:ongoing order",
		"track_order":       "track.order-context: ordering-ongoing",
	}
}

// Default returns a configuration usable without a file: embedded sqlite,
// messaging disabled.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   DriverSQLite,
			Port:     5432,
			SSLMode:  "disable",
			Path:     "eatopia.db",
			MaxConns: 10,
		},
		RabbitMQ: RabbitMQConfig{
			Port:     5672,
			Exchange: "orders_topic",
		},
		Session: SessionConfig{
			Shards: 32,
		},
		Intents: DefaultIntents(),
		Locale:  "en",
	}
}

// Load reads configuration from a YAML file. Keys absent from the file keep
// their defaults; a handful of environment variables override the file.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(cfg.Intents) == 0 {
		cfg.Intents = DefaultIntents()
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides secrets and the listen port from the environment
func (c *Config) applyEnv() error {
	if v := os.Getenv("EATOPIA_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("EATOPIA_RABBITMQ_PASSWORD"); v != "" {
		c.RabbitMQ.Password = v
	}
	if v := os.Getenv("EATOPIA_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EATOPIA_PORT value: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks the values that would otherwise fail late at startup
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("database.host and database.database are required for postgres")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite3")
		}
	default:
		return fmt.Errorf("unknown database driver: %s", c.Database.Driver)
	}

	if c.RabbitMQ.Enabled && c.RabbitMQ.Host == "" {
		return fmt.Errorf("rabbitmq.host is required when rabbitmq is enabled")
	}
	if c.Session.Shards < 1 {
		return fmt.Errorf("session.shards must be positive, got %d", c.Session.Shards)
	}
	return nil
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DatabaseURL returns the data source name for the configured driver
func (c *Config) DatabaseURL() string {
	if c.Database.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Database.Path)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database, c.Database.SSLMode)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
