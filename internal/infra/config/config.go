package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL        string
	MigrationsPath     string
	HTTPPort           string
	WebhookVerifyToken string
	LogLevel           string
	Environment        string

	// Support contacts shown by the inbound menu.
	AcademyEmail string
	AcademyPhone string

	// Cron specs for the periodic jobs.
	CronSpecPendingContent string
	CronSpecReminders      string
	CronSpecAnalytics      string
	CronSpecCleanup        string

	// PacingDelay is the mandatory wait between consecutive outbound sends.
	PacingDelay time.Duration
	// ReminderWindow is the lookahead window for course reminders.
	ReminderWindow time.Duration
	// MessageRetention is how long message-log rows are kept.
	MessageRetention time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.WebhookVerifyToken = os.Getenv("WHATSAPP_VERIFY_TOKEN")
	if cfg.WebhookVerifyToken == "" {
		return nil, fmt.Errorf("WHATSAPP_VERIFY_TOKEN is not set")
	}

	cfg.MigrationsPath = os.Getenv("MIGRATIONS_PATH")
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	cfg.HTTPPort = os.Getenv("HTTP_PORT")
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.AcademyEmail = os.Getenv("ACADEMY_EMAIL")
	if cfg.AcademyEmail == "" {
		cfg.AcademyEmail = "info@eplusweb.com"
	}
	cfg.AcademyPhone = os.Getenv("ACADEMY_PHONE")
	if cfg.AcademyPhone == "" {
		cfg.AcademyPhone = "+966XXXXXXXXX"
	}

	cfg.CronSpecPendingContent = os.Getenv("CRON_SPEC_PENDING_CONTENT")
	if cfg.CronSpecPendingContent == "" {
		cfg.CronSpecPendingContent = "* * * * *" // Default: every minute
	}
	cfg.CronSpecReminders = os.Getenv("CRON_SPEC_REMINDERS")
	if cfg.CronSpecReminders == "" {
		cfg.CronSpecReminders = "*/5 * * * *" // Default: every 5 minutes
	}
	cfg.CronSpecAnalytics = os.Getenv("CRON_SPEC_ANALYTICS")
	if cfg.CronSpecAnalytics == "" {
		cfg.CronSpecAnalytics = "0 0 * * *" // Default: daily at midnight
	}
	cfg.CronSpecCleanup = os.Getenv("CRON_SPEC_CLEANUP")
	if cfg.CronSpecCleanup == "" {
		cfg.CronSpecCleanup = "0 0 * * 0" // Default: weekly on Sunday
	}

	pacingMS, err := intEnv("MESSAGE_PACING_MS", 1500)
	if err != nil {
		return nil, err
	}
	cfg.PacingDelay = time.Duration(pacingMS) * time.Millisecond

	windowHours, err := intEnv("REMINDER_WINDOW_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.ReminderWindow = time.Duration(windowHours) * time.Hour

	retentionDays, err := intEnv("MESSAGE_RETENTION_DAYS", 90)
	if err != nil {
		return nil, err
	}
	cfg.MessageRetention = time.Duration(retentionDays) * 24 * time.Hour

	return cfg, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return v, nil
}
