package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	// Cron spec for the payment reconciliation pass.
	ReconcileSpec string `mapstructure:"SCHEDULER_RECONCILE_SPEC"`
	// PROCESSING payment batches older than this get their collection
	// updates re-applied.
	ReconcileAfter string `mapstructure:"SCHEDULER_RECONCILE_AFTER"`
	Timezone       string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	// Fallback per-kg rates used only when the settings table has no row
	// for a grade.
	GradeARate string `mapstructure:"GRADE_A_RATE"`
	GradeBRate string `mapstructure:"GRADE_B_RATE"`
	GradeCRate string `mapstructure:"GRADE_C_RATE"`
	// Attempts for the optimistic-concurrency ledger write before giving up.
	LedgerRetries   int    `mapstructure:"LEDGER_RETRIES"`
	PricingCacheTTL string `mapstructure:"PRICING_CACHE_TTL"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("GRADE_A_RATE", "0.0")
	viper.SetDefault("GRADE_B_RATE", "0.0")
	viper.SetDefault("GRADE_C_RATE", "0.0")
	viper.SetDefault("LEDGER_RETRIES", 3)
	viper.SetDefault("PRICING_CACHE_TTL", "5m")
	viper.SetDefault("SCHEDULER_RECONCILE_SPEC", "0 */10 * * * *")
	viper.SetDefault("SCHEDULER_RECONCILE_AFTER", "15m")
	viper.SetDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.LedgerRetries <= 0 {
		return fmt.Errorf("LEDGER_RETRIES must be greater than 0")
	}

	for key, rate := range map[string]string{
		"GRADE_A_RATE": c.Business.GradeARate,
		"GRADE_B_RATE": c.Business.GradeBRate,
		"GRADE_C_RATE": c.Business.GradeCRate,
	} {
		if _, err := decimal.NewFromString(rate); err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", key, err)
		}
	}

	if _, err := time.ParseDuration(c.Business.PricingCacheTTL); err != nil {
		return fmt.Errorf("PRICING_CACHE_TTL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Scheduler.ReconcileAfter); err != nil {
		return fmt.Errorf("SCHEDULER_RECONCILE_AFTER must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// FallbackRates returns the configured per-grade fallback rates as decimals.
func (c *Config) FallbackRates() map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal, 3)
	for grade, raw := range map[string]string{
		"A": c.Business.GradeARate,
		"B": c.Business.GradeBRate,
		"C": c.Business.GradeCRate,
	} {
		rate, _ := decimal.NewFromString(raw)
		rates[grade] = rate
	}
	return rates
}

// GetPricingCacheTTL returns the pricing cache TTL as duration
func (c *Config) GetPricingCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Business.PricingCacheTTL)
	return ttl
}

// GetReconcileAfter returns the reconciliation age threshold as duration
func (c *Config) GetReconcileAfter() time.Duration {
	threshold, _ := time.ParseDuration(c.Scheduler.ReconcileAfter)
	return threshold
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}
