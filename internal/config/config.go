// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/neomorfeo/settle/internal/domain"
)

// Config holds everything main needs to wire the service.
type Config struct {
	Port         string
	DatabasePath string
	PublicURL    string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeMaxRetries    int64
	StripeCountry       string

	ResendAPIKey string
	EmailFrom    string
	SupportEmail string

	Fees domain.FeeSchedule
}

// Load reads a .env file if one exists, then the process environment.
func Load() (*Config, error) {
	// Best-effort; production sets real environment variables.
	_ = godotenv.Load()

	defaults := domain.DefaultFeeSchedule()

	flatFee, err := envOrDefaultInt64("PLATFORM_FEE_MINOR", defaults.FlatFee)
	if err != nil {
		return nil, err
	}
	retries, err := envOrDefaultInt64("STRIPE_MAX_RETRIES", 2)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                envOrDefault("PORT", "8080"),
		DatabasePath:        envOrDefault("DATABASE_PATH", "settle.db"),
		PublicURL:           strings.TrimRight(envOrDefault("PUBLIC_URL", "http://localhost:8080"), "/"),
		StripeSecretKey:     strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		StripeWebhookSecret: strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
		StripeMaxRetries:    retries,
		StripeCountry:       envOrDefault("STRIPE_ACCOUNT_COUNTRY", "GB"),
		ResendAPIKey:        strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		EmailFrom:           envOrDefault("EMAIL_FROM", "Settle <billing@settle.local>"),
		SupportEmail:        envOrDefault("SUPPORT_EMAIL", "support@settle.local"),
		Fees: domain.FeeSchedule{
			FlatFee:  flatFee,
			Currency: strings.ToLower(envOrDefault("CURRENCY", defaults.Currency)),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Fees.FlatFee < 0 {
		return fmt.Errorf("PLATFORM_FEE_MINOR must not be negative, got %d", c.Fees.FlatFee)
	}
	if len(c.Fees.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3-letter ISO code, got %q", c.Fees.Currency)
	}
	if c.StripeMaxRetries < 0 {
		return fmt.Errorf("STRIPE_MAX_RETRIES must not be negative, got %d", c.StripeMaxRetries)
	}

	if _, err := mail.ParseAddress(c.SupportEmail); err != nil {
		return fmt.Errorf("SUPPORT_EMAIL must be an email address: %w", err)
	}

	u, err := url.Parse(c.PublicURL)
	if err != nil {
		return fmt.Errorf("PUBLIC_URL must be a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("PUBLIC_URL must use http or https, got %q", c.PublicURL)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt64(key string, fallback int64) (int64, error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
		}
		return n, nil
	}
	return fallback, nil
}
