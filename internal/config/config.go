package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"RFM Clothing Shop"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Timezone string `envconfig:"APP_TIMEZONE" default:"Asia/Manila"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"rfmclothingshop"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
		Issuer    string        `envconfig:"JWT_ISSUER" default:"rfmclothingshop"`
		TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"12h"`

		// Bootstrap admin created on startup when ADMIN_EMAIL is set and no such account exists.
		AdminEmail    string `envconfig:"ADMIN_EMAIL"`
		AdminName     string `envconfig:"ADMIN_NAME" default:"Administrator"`
		AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	RateLimit struct {
		// Payment submission rate in limiter format, e.g. "30-M" for 30 per minute.
		Payments string `envconfig:"RATE_LIMIT_PAYMENTS" default:"30-M"`
	}

	Reconcile struct {
		QueueURL        string `envconfig:"RECONCILE_QUEUE_URL"`
		Region          string `envconfig:"AWS_REGION" default:"ap-southeast-1"`
		AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
		Worker          bool   `envconfig:"RECONCILE_WORKER" default:"false"`
	}

	Console struct {
		// Account the admin console acts as when approving or rejecting payments.
		AccountID int64 `envconfig:"CONSOLE_ACCOUNT_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location resolves the configured business timezone used for report periods.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MinJWTSecretLength is the shortest accepted HS256 signing secret, in bytes.
const MinJWTSecretLength = 32

func (c *Config) validate() error {
	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return errors.New("JWT_SECRET must be at least 32 bytes")
	}

	return nil
}
