package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	defaultDBPort       = 5432
	defaultDBSSLMode    = "disable"
	defaultCurrency     = "MXN"
	defaultSMTPPort     = 465
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Stripe   StripeConfig
	Auth     AuthConfig
	Checkout CheckoutConfig
	SMTP     SMTPConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig stores Postgres connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the connection string consumed by the Postgres driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// StripeConfig collects payment provider secrets.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// AuthConfig groups session token verification settings.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// CheckoutConfig holds the storefront checkout parameters.
type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// SMTPConfig configures the order confirmation mailer. Mail is disabled when
// Host is empty.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether outbound mail is configured.
func (c SMTPConfig) Enabled() bool { return strings.TrimSpace(c.Host) != "" }

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Load reads configuration from the environment, optionally seeded from a
// local .env file (ignored when absent).
func Load() (Config, error) {
	_ = godotenv.Load(defaultEnvFile)

	cfg := Config{
		Server: ServerConfig{
			Port:         envOrDefault("PORT", defaultPort),
			ReadTimeout:  durationEnv("SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationEnv("SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationEnv("SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     intEnv("DB_PORT", defaultDBPort),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  envOrDefault("DB_SSLMODE", defaultDBSSLMode),
		},
		Stripe: StripeConfig{
			APIKey:        os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			Issuer:    os.Getenv("JWT_ISSUER"),
		},
		Checkout: CheckoutConfig{
			Currency:   strings.ToUpper(envOrDefault("CHECKOUT_CURRENCY", defaultCurrency)),
			SuccessURL: os.Getenv("CHECKOUT_SUCCESS_URL"),
			CancelURL:  os.Getenv("CHECKOUT_CANCEL_URL"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     intEnv("SMTP_PORT", defaultSMTPPort),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string

	requireString := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	requireString("DB_HOST", c.Database.Host)
	requireString("DB_USER", c.Database.User)
	requireString("DB_NAME", c.Database.Name)
	requireString("STRIPE_SECRET_KEY", c.Stripe.APIKey)
	requireString("STRIPE_WEBHOOK_SECRET", c.Stripe.WebhookSecret)
	requireString("JWT_SECRET", c.Auth.JWTSecret)
	requireString("CHECKOUT_SUCCESS_URL", c.Checkout.SuccessURL)
	requireString("CHECKOUT_CANCEL_URL", c.Checkout.CancelURL)

	if c.SMTP.Enabled() && strings.TrimSpace(c.SMTP.From) == "" {
		missing = append(missing, "SMTP_FROM")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func envOrDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func intEnv(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
