package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/unisphere/academics/internal/pkg/helpers"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT" validate:"required,numeric"`
		Mode string `yaml:"mode" env:"SERVER_MODE" validate:"oneof=development production test"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST" validate:"required"`
		Port            string `yaml:"port" env:"DB_PORT" validate:"required,numeric"`
		User            string `yaml:"user" env:"DB_USER" validate:"required"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME" validate:"required"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" validate:"gte=0"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" validate:"gt=0,gtefield=MaxIdleConns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" validate:"required"`
		// IsolationLevel is used for every unit of work. Row and advisory locks
		// make read committed sufficient; serializable adds a retryable backstop.
		IsolationLevel string `yaml:"isolation_level" env:"DB_ISOLATION_LEVEL" validate:"oneof='read committed' 'repeatable read' serializable"`
		TxTimeout      string `yaml:"tx_timeout" env:"DB_TX_TIMEOUT" validate:"required"`
		AutoMigrate    bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret" env:"JWT_SECRET" validate:"required,min=16"`
		Issuer string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error fatal"`
		Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json pretty"`
	} `yaml:"logging"`

	Engine struct {
		// DefaultMaxPrerequisiteDepth bounds prerequisite chain walks for
		// curricula that do not declare a cycle count.
		DefaultMaxPrerequisiteDepth int `yaml:"default_max_prerequisite_depth" env:"ENGINE_DEFAULT_MAX_PREREQUISITE_DEPTH" validate:"gt=0"`
		MaxCriteriaWeight           int `yaml:"max_criteria_weight" env:"ENGINE_MAX_CRITERIA_WEIGHT" validate:"gt=0,lte=100"`
	} `yaml:"engine"`
}

var validate = validator.New()

// LoadConfig loads configuration from a .env file, a YAML file and environment
// variables, in increasing order of precedence. Both files are optional.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults and environment only
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// Override with environment variables
	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "academics"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.IsolationLevel = "read committed"
	config.Database.TxTimeout = "30s"
	config.Database.AutoMigrate = true

	// JWT defaults
	config.JWT.Issuer = "unisphere.app"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Engine defaults
	config.Engine.DefaultMaxPrerequisiteDepth = 32
	config.Engine.MaxCriteriaWeight = 100
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return err
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid connection max lifetime: %w", err)
	}
	if _, err := time.ParseDuration(config.Database.TxTimeout); err != nil {
		return fmt.Errorf("invalid transaction timeout: %w", err)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// TxIsoLevel returns the configured isolation level in pgx form
func (c *Config) TxIsoLevel() pgx.TxIsoLevel {
	switch c.Database.IsolationLevel {
	case "serializable":
		return pgx.Serializable
	case "repeatable read":
		return pgx.RepeatableRead
	default:
		return pgx.ReadCommitted
	}
}

// TxTimeoutDuration returns the per-transaction timeout
func (c *Config) TxTimeoutDuration() time.Duration {
	return helpers.ParseDuration(c.Database.TxTimeout, 30*time.Second)
}
