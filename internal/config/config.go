package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds the runtime settings, loaded from environment variables
// and an optional .env file in the working directory.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Storage: postgres | sqlite | memory
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	// Remote sync, disabled when REDIS_URL or SYNC_KEY is empty
	RedisURL         string        `mapstructure:"REDIS_URL"`
	SyncKey          string        `mapstructure:"SYNC_KEY"`
	SyncPushDebounce time.Duration `mapstructure:"SYNC_PUSH_DEBOUNCE"`
	SyncPullInterval time.Duration `mapstructure:"SYNC_PULL_INTERVAL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Business
	Timezone          string `mapstructure:"TIMEZONE"`
	LowStockThreshold string `mapstructure:"LOW_STOCK_THRESHOLD"`
	StoreName         string `mapstructure:"STORE_NAME"`
}

// Load reads configuration from the environment. A missing .env file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "ledger.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SYNC_KEY", "")
	v.SetDefault("SYNC_PUSH_DEBOUNCE", "1500ms")
	v.SetDefault("SYNC_PULL_INTERVAL", "30s")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRATION_HOURS", 12)
	v.SetDefault("TIMEZONE", "America/Argentina/Buenos_Aires")
	v.SetDefault("LOW_STOCK_THRESHOLD", "2")
	v.SetDefault("STORE_NAME", "Ledger POS")

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the timezone used to derive order numbers and report days.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SyncEnabled reports whether remote snapshot sync should run.
func (c *Config) SyncEnabled() bool {
	return c.RedisURL != "" && c.SyncKey != ""
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
