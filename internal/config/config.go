package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	Database   DatabaseConfig
	Automation AutomationConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// DatabaseConfig holds the database connection string.
type DatabaseConfig struct {
	URL string
}

// AutomationConfig holds the settings the automation cycle and scheduler run
// with. CadenceMinutes is only the restart default; the live cadence is owned
// by the scheduler.
type AutomationConfig struct {
	Channels       []string
	DefaultCity    string
	CadenceMinutes int
	SportsAPIKey   string
	WeatherContact string
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultCadenceMinutes = 30
	defaultCity           = "Seattle"
	defaultSportsAPIKey   = "demo_key"
	defaultWeatherContact = "contact@example.com"

	// Cadence bounds enforced at every boundary that accepts an interval.
	MinCadenceMinutes = 5
	MaxCadenceMinutes = 1440
)

var defaultChannels = []string{"Twitter", "Facebook", "Instagram"}

// Load reads configuration from environment variables, applying defaults when
// values are not provided or invalid.
func Load() (Config, error) {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Automation: AutomationConfig{
			Channels:       defaultChannels,
			DefaultCity:    getEnv("DEFAULT_CITY", defaultCity),
			CadenceMinutes: defaultCadenceMinutes,
			SportsAPIKey:   getEnv("SPORTS_API_KEY", defaultSportsAPIKey),
			WeatherContact: getEnv("WEATHER_CONTACT", defaultWeatherContact),
		},
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if v := os.Getenv("AUTOMATION_CADENCE_MINUTES"); v != "" {
		minutes, err := ParseCadence(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid AUTOMATION_CADENCE_MINUTES: %w", err)
		}
		cfg.Automation.CadenceMinutes = minutes
	}

	if v := os.Getenv("AUTOMATION_CHANNELS"); v != "" {
		channels, err := parseChannels(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid AUTOMATION_CHANNELS: %w", err)
		}
		cfg.Automation.Channels = channels
	}

	return cfg, nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

// ParseCadence parses and bounds-checks a cadence value in minutes. The same
// check guards the reconfiguration endpoint.
func ParseCadence(raw string) (int, error) {
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer number of minutes")
	}
	if minutes < MinCadenceMinutes || minutes > MaxCadenceMinutes {
		return 0, fmt.Errorf("must be between %d and %d minutes", MinCadenceMinutes, MaxCadenceMinutes)
	}
	return minutes, nil
}

func parseChannels(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	channels := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		channels = append(channels, name)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("must name at least one channel")
	}
	return channels, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
