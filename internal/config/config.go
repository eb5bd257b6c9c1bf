package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the typed application configuration. JWT settings are not part
// of it: the token service reads them from viper on every call.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
	Bcrypt   BcryptConfig
}

type AppConfig struct {
	Port        string
	Environment string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type RabbitMQConfig struct {
	URL string // empty disables event publishing
}

type LogConfig struct {
	Level  string
	Format string
}

type BcryptConfig struct {
	Cost int
}

// NewViper returns a viper instance with defaults, an optional config.yaml
// from the working directory, and environment overrides (jwt.key → JWT_KEY).
func NewViper() (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.environment", "development")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "file:users.db?cache=shared")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("bcrypt.cost", bcrypt.DefaultCost)
	v.SetDefault("jwt.key", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Port:        v.GetString("app.port"),
			Environment: v.GetString("app.environment"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			DSN:    v.GetString("database.dsn"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString("rabbitmq.url"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Bcrypt: BcryptConfig{
			Cost: v.GetInt("bcrypt.cost"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if cfg.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %s", cfg.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}

	if cfg.App.Port == "" {
		return errors.New("app.port is required")
	}
	return nil
}
