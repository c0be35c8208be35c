package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string
	Environment  string
	LogLevel     string
	SessionKey   string
	StoreBackend string
	StoreTTL     time.Duration
	MaxUploadMB  int64
	Redis        RedisConfig
	Database     DatabaseConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Load reads configuration from the environment (and an optional .env file)
// on top of defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigName(".env")
	v.AddConfigPath(".")

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_KEY", "dev-insecure")
	v.SetDefault("STORE_BACKEND", BackendMemory)
	v.SetDefault("STORE_TTL", "168h")
	v.SetDefault("MAX_UPLOAD_MB", 25)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "printorder")
	v.SetDefault("DB_SSLMODE", "disable")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:         v.GetString("PORT"),
		Environment:  strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:     strings.ToLower(v.GetString("LOG_LEVEL")),
		SessionKey:   v.GetString("SESSION_KEY"),
		StoreBackend: strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
		StoreTTL:     v.GetDuration("STORE_TTL"),
		MaxUploadMB:  v.GetInt64("MAX_UPLOAD_MB"),
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Database: DatabaseConfig{
			DSN:      v.GetString("DB_DSN"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.IsProduction() && c.SessionKey == "dev-insecure" {
		return fmt.Errorf("SESSION_KEY must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func (c *Config) IsDev() bool {
	return c.Environment == "" || c.Environment == "development" || c.Environment == "dev"
}

// ConnString returns DB_DSN when set, otherwise one assembled from the
// DB_* parts.
func (d DatabaseConfig) ConnString() string {
	if strings.TrimSpace(d.DSN) != "" {
		return d.DSN
	}
	return "host=" + d.Host + " user=" + d.User + " password=" + d.Password + " dbname=" + d.DBName + " port=" + d.Port + " sslmode=" + d.SSLMode
}
