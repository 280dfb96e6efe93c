package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultJWTTTL         = "24h"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultStudioTimezone = "Europe/Budapest"
	defaultSMTPPort       = "587"
	defaultFeeDueDays     = "8"
)

// Config is the full runtime configuration, loaded from the environment.
type Config struct {
	AppEnv         string
	HTTPAddr       string
	DatabaseURL    string
	JWTSecret      string
	JWTTTL         time.Duration
	StudioTimezone *time.Location

	Invoicing InvoicingConfig
	SMTP      SMTPConfig
	Calendar  CalendarConfig
}

// InvoicingConfig gates invoice issuance; with an empty APIKey the service
// runs, but invoice steps are reported as not configured.
type InvoicingConfig struct {
	BaseURL    string
	APIKey     string
	FeeDueDays int
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	AdminAddr string
}

type CalendarConfig struct {
	BaseURL    string
	APIKey     string
	CalendarID string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = getEnv("HTTP_ADDR", defaultHTTPAddr)
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	tzName := getEnv("STUDIO_TIMEZONE", defaultStudioTimezone)
	cfg.StudioTimezone, err = time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid STUDIO_TIMEZONE value %q: %w", tzName, err)
	}

	cfg.Invoicing.BaseURL = strings.TrimSpace(os.Getenv("INVOICING_BASE_URL"))
	cfg.Invoicing.APIKey = strings.TrimSpace(os.Getenv("INVOICING_API_KEY"))
	cfg.Invoicing.FeeDueDays, err = parseIntEnv("INVOICING_FEE_DUE_DAYS", defaultFeeDueDays)
	if err != nil {
		return nil, err
	}

	cfg.SMTP.Host = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	cfg.SMTP.Port, err = parseIntEnv("SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = strings.TrimSpace(os.Getenv("SMTP_FROM"))
	cfg.SMTP.AdminAddr = strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))

	cfg.Calendar.BaseURL = strings.TrimSpace(os.Getenv("CALENDAR_BASE_URL"))
	cfg.Calendar.APIKey = strings.TrimSpace(os.Getenv("CALENDAR_API_KEY"))
	cfg.Calendar.CalendarID = strings.TrimSpace(os.Getenv("CALENDAR_ID"))

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Invoicing.FeeDueDays <= 0 {
		return fmt.Errorf("INVOICING_FEE_DUE_DAYS must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.Invoicing.APIKey == "" {
			return fmt.Errorf("in prod/release INVOICING_API_KEY must be set")
		}
		if cfg.SMTP.Host == "" || cfg.SMTP.From == "" {
			return fmt.Errorf("in prod/release SMTP_HOST and SMTP_FROM must be set")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
