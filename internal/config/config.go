package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage driver selection. The memory driver backs local development and
// demos; postgres is the production driver.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Timestamp field variants for webhook notices.
const (
	TimestampPerAction = "perAction"
	TimestampUnified   = "actionAt"
)

type Config struct {
	Port                  string        `mapstructure:"PORT"`
	Env                   string        `mapstructure:"ENV"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
	StorageDriver         string        `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL           string        `mapstructure:"DATABASE_URL"`
	DBMaxConns            int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns            int32         `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir         string        `mapstructure:"MIGRATIONS_DIR"`
	DashboardWindowDays   int           `mapstructure:"DASHBOARD_WINDOW_DAYS"`
	RefreshInterval       time.Duration `mapstructure:"REFRESH_INTERVAL"`
	CompletedWebhookURL   string        `mapstructure:"COMPLETED_WEBHOOK_URL"`
	CancelledWebhookURL   string        `mapstructure:"CANCELLED_WEBHOOK_URL"`
	WebhookSecret         string        `mapstructure:"WEBHOOK_SECRET"`
	WebhookTimestampField string        `mapstructure:"WEBHOOK_TIMESTAMP_FIELD"`
	WebhookTimeout        time.Duration `mapstructure:"WEBHOOK_TIMEOUT"`
	CORSOrigins           []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS          float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst        int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout        time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit             string        `mapstructure:"BODY_LIMIT"`
	MetricsEnabled        bool          `mapstructure:"METRICS_ENABLED"`
	TLSEnabled            bool          `mapstructure:"TLS_ENABLED"`
	TLSCertFile           string        `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile            string        `mapstructure:"TLS_KEY_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("DASHBOARD_WINDOW_DAYS", 20)
	v.SetDefault("REFRESH_INTERVAL", "30s")
	v.SetDefault("WEBHOOK_TIMESTAMP_FIELD", TimestampPerAction)
	v.SetDefault("WEBHOOK_TIMEOUT", "10s")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("METRICS_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("STORAGE_DRIVER")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("MIGRATIONS_DIR")
	v.BindEnv("DASHBOARD_WINDOW_DAYS")
	v.BindEnv("REFRESH_INTERVAL")
	v.BindEnv("COMPLETED_WEBHOOK_URL")
	v.BindEnv("CANCELLED_WEBHOOK_URL")
	v.BindEnv("WEBHOOK_SECRET")
	v.BindEnv("WEBHOOK_TIMESTAMP_FIELD")
	v.BindEnv("WEBHOOK_TIMEOUT")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("METRICS_ENABLED")
	v.BindEnv("TLS_ENABLED")
	v.BindEnv("TLS_CERT_FILE")
	v.BindEnv("TLS_KEY_FILE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
	}
	if cfg.StorageDriver == StorageMemory {
		log.Println("WARNING: STORAGE_DRIVER=memory — appointments are not persisted across restarts.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER is %q", StoragePostgres)
		}
	case StorageMemory:
		if c.IsProduction() {
			return fmt.Errorf("STORAGE_DRIVER=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, c.StorageDriver)
	}

	switch c.DashboardWindowDays {
	case -1, 0, 20:
	default:
		return fmt.Errorf("DASHBOARD_WINDOW_DAYS must be -1 (all), 0 (upcoming), or 20, got %d", c.DashboardWindowDays)
	}

	if f := c.WebhookTimestampField; f != TimestampPerAction && f != TimestampUnified {
		return fmt.Errorf("WEBHOOK_TIMESTAMP_FIELD must be %q or %q, got %q", TimestampPerAction, TimestampUnified, f)
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
