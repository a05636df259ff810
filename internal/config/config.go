package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Log    LogConfig
	Coupon CouponConfig
	Email  EmailConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
type DBConfig struct {
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	User           string `envconfig:"DB_USER" default:"postgres"`
	Password       string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name           string `envconfig:"DB_NAME" default:"coupon_db"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns       int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns       int    `envconfig:"DB_MIN_CONNS" default:"5"`
	ConnectRetries int    `envconfig:"DB_CONNECT_RETRIES" default:"5"`
}

// DSN returns the PostgreSQL connection string.
// Pool bounds are appended only when set.
func (c DBConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.sslMode())
	if c.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", c.MaxConns)
	}
	if c.MinConns > 0 {
		dsn += fmt.Sprintf("&pool_min_conns=%d", c.MinConns)
	}
	return dsn
}

func (c DBConfig) sslMode() string {
	if c.SSLMode == "" {
		return "disable"
	}
	return c.SSLMode
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// CouponConfig holds the issuance policy.
type CouponConfig struct {
	ExpiryDays         int  `envconfig:"COUPON_EXPIRY_DAYS" default:"30"`
	DiscountPercentage int  `envconfig:"DISCOUNT_PERCENTAGE" default:"10"`
	CodeAttempts       int  `envconfig:"COUPON_CODE_ATTEMPTS" default:"5"`
	SerializeIssuance  bool `envconfig:"COUPON_SERIALIZE_ISSUANCE" default:"false"`
}

// ExpiryWindow returns the configured expiry as a duration.
func (c CouponConfig) ExpiryWindow() time.Duration {
	return time.Duration(c.ExpiryDays) * 24 * time.Hour
}

// EmailConfig holds the outbound email provider settings.
// Leaving the credentials empty disables delivery; issuance still works.
type EmailConfig struct {
	From            string `envconfig:"EMAIL_FROM"`
	AccessKeyID     string `envconfig:"EMAIL_AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"EMAIL_AWS_SECRET_ACCESS_KEY"`
	Region          string `envconfig:"EMAIL_AWS_REGION"`
	Endpoint        string `envconfig:"EMAIL_ENDPOINT"`
}

// HasCredentials reports whether every value needed to reach the provider is set.
func (c EmailConfig) HasCredentials() bool {
	return c.From != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Region != ""
}

// Validate checks the values envconfig cannot express in tags.
func (c *Config) Validate() error {
	if c.Coupon.ExpiryDays < 1 {
		return fmt.Errorf("COUPON_EXPIRY_DAYS must be at least 1, got %d", c.Coupon.ExpiryDays)
	}
	if c.Coupon.DiscountPercentage < 0 || c.Coupon.DiscountPercentage > 100 {
		return fmt.Errorf("DISCOUNT_PERCENTAGE must be between 0 and 100, got %d", c.Coupon.DiscountPercentage)
	}
	if c.Coupon.CodeAttempts < 1 {
		return fmt.Errorf("COUPON_CODE_ATTEMPTS must be at least 1, got %d", c.Coupon.CodeAttempts)
	}
	return nil
}

// Load reads an optional .env file, then parses environment variables into the Config struct.
// Variables already present in the environment win over the .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
