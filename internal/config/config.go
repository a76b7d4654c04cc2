// Package config loads runtime settings from the environment and from an
// optional per-environment dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers understood by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Mongo holds the document store connection settings.
type Mongo struct {
	URI                    string
	Database               string
	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	ReadPreference         string
}

// Config is the fully resolved application configuration.
type Config struct {
	Env                string
	Port               string
	StoreDriver        string
	Mongo              Mongo
	DatabaseDSN        string
	JWTSecret          string
	TokenTTL           time.Duration
	BcryptCost         int
	RabbitMQURL        string
	ConsumeEvents      bool
	HideInternalErrors bool
	LogLevel           string
}

// IsProduction reports whether the service runs in a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Addr is the listen address handed to fiber.App.Listen.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("DB_URI", "mongodb://localhost:27017")
	v.SetDefault("DB_NAME", "storeapi")
	v.SetDefault("DATABASE_DSN", "storeapi.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENTS_CONSUME", false)
	v.SetDefault("HIDE_INTERNAL_ERRORS", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_MAX_POOL_SIZE", 5)
	v.SetDefault("MONGO_SERVER_SELECTION_TIMEOUT", 5*time.Second)
	v.SetDefault("MONGO_SOCKET_TIMEOUT", 45*time.Second)
	v.SetDefault("MONGO_READ_PREFERENCE", "secondaryPreferred")
}

// Load resolves the configuration. Environment variables take precedence over
// values read from ".env.<APP_ENV>" in dir; a missing file is not an error.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	env := v.GetString("APP_ENV")
	path := ".env." + env
	if dir != "" {
		path = strings.TrimSuffix(dir, "/") + "/" + path
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:         v.GetString("APP_ENV"),
		Port:        v.GetString("PORT"),
		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		Mongo: Mongo{
			URI:                    v.GetString("DB_URI"),
			Database:               v.GetString("DB_NAME"),
			MaxPoolSize:            v.GetUint64("MONGO_MAX_POOL_SIZE"),
			ServerSelectionTimeout: v.GetDuration("MONGO_SERVER_SELECTION_TIMEOUT"),
			SocketTimeout:          v.GetDuration("MONGO_SOCKET_TIMEOUT"),
			ReadPreference:         v.GetString("MONGO_READ_PREFERENCE"),
		},
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		ConsumeEvents:      v.GetBool("EVENTS_CONSUME"),
		HideInternalErrors: v.GetBool("HIDE_INTERNAL_ERRORS"),
		LogLevel:           v.GetString("LOG_LEVEL"),
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q (supported: mongo, postgres, sqlite, memory)", cfg.StoreDriver)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return cfg, nil
}
