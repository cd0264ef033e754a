package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	PublicBaseURL      string
	CORSAllowedOrigins []string

	StripeSecretKey       string
	StripeWebhookSecret   string
	StripePaymentLabel    string
	StripeDefaultCurrency string
	StripeCancelURL       string
	StripeSuccessURL      string
	StripePaidStatus      string

	WebhookMaxBodyBytes int64
	ShutdownTimeout     time.Duration
}

// Load reads configuration from environment variables and optional .env files.
// Required Stripe secrets are validated here so that a misconfigured deployment
// fails before any payment flow runs.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		PublicBaseURL:      strings.TrimRight(strings.TrimSpace(k.String("PUBLIC_BASE_URL")), "/"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		StripeSecretKey:       strings.TrimSpace(k.String("STRIPE_SECRET_KEY")),
		StripeWebhookSecret:   strings.TrimSpace(k.String("STRIPE_WEBHOOK_SECRET")),
		StripePaymentLabel:    valueOrDefault(k.String("STRIPE_PAYMENT_LABEL"), "Pay with Stripe"),
		StripeDefaultCurrency: valueOrDefault(k.String("STRIPE_DEFAULT_CURRENCY"), "USD"),
		StripeCancelURL:       strings.TrimSpace(k.String("STRIPE_CANCEL_URL")),
		StripeSuccessURL:      strings.TrimSpace(k.String("STRIPE_SUCCESS_URL")),
		StripePaidStatus:      valueOrDefault(k.String("STRIPE_PAID_STATUS"), "PROCESSING"),

		WebhookMaxBodyBytes: parseInt64(k.String("STRIPE_WEBHOOK_MAX_BODY_BYTES"), 65536),
		ShutdownTimeout:     parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("PUBLIC_BASE_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// SuccessRedirectURL is the absolute URL Stripe redirects to after payment.
// An explicit STRIPE_SUCCESS_URL wins over the derived default.
func (c *Config) SuccessRedirectURL() string {
	if c.StripeSuccessURL != "" {
		return c.StripeSuccessURL
	}
	return c.PublicBaseURL + "/stripe/success"
}

// CancelRedirectURL is the absolute URL Stripe redirects to on cancellation.
func (c *Config) CancelRedirectURL() string {
	if c.StripeCancelURL != "" {
		return c.StripeCancelURL
	}
	return c.PublicBaseURL + "/stripe/cancel"
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt64(value string, fallback int64) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
