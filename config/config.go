package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const defaultAccessSecret = "change-me-in-production"

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Cloudinary CloudinaryConfig
	Stripe     StripeConfig
	PDFShift   PDFShiftConfig
	SMTP       SMTPConfig
	Redis      RedisConfig
	Throttle   ThrottleConfig
	Lockout    LockoutConfig
	Seed       SeedConfig
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8000"`
	Env          string        `env:"APP_ENV" envDefault:"development"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	SiteURL      string        `env:"SITE_URL" envDefault:"https://api.leisuretimez.com"`
	FrontendURL  string        `env:"FRONTEND_URL" envDefault:"https://www.leisuretimez.com"`
	MediaRoot    string        `env:"MEDIA_ROOT" envDefault:"media"`
}

type DatabaseConfig struct {
	// Driver is "mysql" in production and "sqlite" for local development.
	Driver          string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN             string        `env:"DB_DSN" envDefault:"leisuretimez.db"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_ACCESS_SECRET" envDefault:"change-me-in-production"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET" envDefault:"change-me-refresh"`
	AccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"24h"`
	RefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`
	Issuer        string        `env:"JWT_ISSUER" envDefault:"leisuretimez"`
}

type OAuthConfig struct {
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
	Folder    string `env:"CLOUDINARY_FOLDER" envDefault:"leisuretimez"`
}

type StripeConfig struct {
	PublicKey     string `env:"STRIPE_PUBLIC_KEY"`
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	Currency      string `env:"STRIPE_CURRENCY" envDefault:"usd"`
}

type PDFShiftConfig struct {
	APIKey   string        `env:"PDFSHIFT_API_KEY"`
	Endpoint string        `env:"PDFSHIFT_ENDPOINT" envDefault:"https://api.pdfshift.io/v3/convert/pdf"`
	Timeout  time.Duration `env:"PDFSHIFT_TIMEOUT" envDefault:"30s"`
}

type SMTPConfig struct {
	Host         string `env:"EMAIL_HOST" envDefault:"smtp.zoho.com"`
	Port         int    `env:"EMAIL_PORT" envDefault:"587"`
	User         string `env:"EMAIL_HOST_USER" envDefault:"support@leisuretimez.com"`
	Password     string `env:"EMAIL_HOST_PASSWORD"`
	From         string `env:"DEFAULT_FROM_EMAIL" envDefault:"support@leisuretimez.com"`
	AdminEmail   string `env:"ADMIN_EMAIL" envDefault:"contact@leisuretimez.com"`
	ContactEmail string `env:"CONTACT_FROM_EMAIL" envDefault:"contact@leisuretimez.com"`
}

type RedisConfig struct {
	// URL is optional; counters fall back to process memory when empty.
	URL string `env:"REDIS_URL"`
}

type ThrottleConfig struct {
	AnonPerMinute int `env:"THROTTLE_ANON_PER_MINUTE" envDefault:"30"`
	UserPerMinute int `env:"THROTTLE_USER_PER_MINUTE" envDefault:"120"`
}

type LockoutConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	Window      time.Duration `env:"LOGIN_LOCKOUT_WINDOW" envDefault:"15m"`
}

// SeedConfig creates the first staff account on boot when both fields are set.
type SeedConfig struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Server.Env == "production" }

func (c *Config) validate() error {
	if c.Database.Driver != "mysql" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.IsProduction() && c.JWT.AccessSecret == defaultAccessSecret {
		return errors.New("JWT_ACCESS_SECRET must be set in production")
	}
	if c.Throttle.AnonPerMinute <= 0 || c.Throttle.UserPerMinute <= 0 {
		return errors.New("throttle rates must be positive")
	}
	return nil
}
