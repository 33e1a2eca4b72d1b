package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/practicum-hub/homework-bot/internal/domain/homework"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Required credential variables.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Homework API
	Practicum PracticumConfig

	// Telegram Bot
	Telegram TelegramConfig

	// Polling loop
	Poller PollerConfig

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Version     string
}

// PracticumConfig holds homework API settings.
type PracticumConfig struct {
	Token          string
	Endpoint       string
	RequestTimeout time.Duration
}

// TelegramConfig holds Telegram Bot settings.
type TelegramConfig struct {
	// Bot token from @BotFather
	Token string

	// Recipient of every notification
	ChatID int64

	// Bot API endpoint template, empty for the public API
	APIEndpoint string

	// Delivery attempts for transient failures
	SendAttempts int

	RequestTimeout time.Duration
}

// PollerConfig holds polling loop settings.
type PollerConfig struct {
	// Pause between two cycles
	RetryPeriod time.Duration
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string // debug, info, warn, error, critical
	LogFormat string // json, console
}

// LoadDotEnv reads a .env file from the working directory if there is one.
// Variables already present in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// CheckTokens reports whether all three credentials are set.
func CheckTokens() bool {
	return len(MissingTokens()) == 0
}

// MissingTokens returns the names of unset credential variables.
func MissingTokens() []string {
	var missing []string
	for _, key := range []string{EnvPracticumToken, EnvTelegramToken, EnvTelegramChatID} {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	if missing := MissingTokens(); len(missing) > 0 {
		return nil, homework.NewError("Load", homework.ErrConfigMissing,
			fmt.Sprintf("environment variables not set: %s", strings.Join(missing, ", ")))
	}

	cfg := &Config{
		App:           loadAppConfig(),
		Practicum:     loadPracticumConfig(),
		Poller:        loadPollerConfig(),
		Observability: loadObservabilityConfig(),
	}

	var err error
	cfg.Telegram, err = loadTelegramConfig()
	if err != nil {
		return nil, fmt.Errorf("telegram config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadAppConfig() AppConfig {
	return AppConfig{
		Name:        getEnv("APP_NAME", "homework-bot"),
		Environment: Environment(getEnv("APP_ENV", string(EnvProduction))),
		Version:     getEnv("APP_VERSION", "0.1.0"),
	}
}

func loadPracticumConfig() PracticumConfig {
	return PracticumConfig{
		Token:          os.Getenv(EnvPracticumToken),
		Endpoint:       getEnv("PRACTICUM_ENDPOINT", "https://practicum.yandex.ru/api/user_api/homework_statuses/"),
		RequestTimeout: getEnvDuration("PRACTICUM_REQUEST_TIMEOUT", 30*time.Second),
	}
}

func loadTelegramConfig() (TelegramConfig, error) {
	raw := strings.TrimSpace(os.Getenv(EnvTelegramChatID))
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return TelegramConfig{}, fmt.Errorf("%s must be a numeric chat id, got %q", EnvTelegramChatID, raw)
	}

	return TelegramConfig{
		Token:          os.Getenv(EnvTelegramToken),
		ChatID:         chatID,
		APIEndpoint:    getEnv("TELEGRAM_API_ENDPOINT", ""),
		SendAttempts:   getEnvInt("TELEGRAM_SEND_ATTEMPTS", 3),
		RequestTimeout: getEnvDuration("TELEGRAM_REQUEST_TIMEOUT", 30*time.Second),
	}, nil
}

func loadPollerConfig() PollerConfig {
	return PollerConfig{
		RetryPeriod: getEnvDuration("RETRY_PERIOD", 10*time.Minute),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Poller.RetryPeriod <= 0 {
		errs = append(errs, "RETRY_PERIOD must be positive")
	}
	if c.Practicum.RequestTimeout <= 0 {
		errs = append(errs, "PRACTICUM_REQUEST_TIMEOUT must be positive")
	}
	if c.Telegram.SendAttempts < 1 {
		errs = append(errs, "TELEGRAM_SEND_ATTEMPTS must be at least 1")
	}
	if c.Telegram.APIEndpoint != "" && strings.Count(c.Telegram.APIEndpoint, "%s") != 2 {
		errs = append(errs, "TELEGRAM_API_ENDPOINT must contain two %s placeholders (token, method)")
	}
	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, "LOG_FORMAT must be json or console")
	}
	switch c.App.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Sprintf("invalid APP_ENV: %s", c.App.Environment))
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// Helper functions for reading environment variables

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	// Bare numbers are seconds.
	if s, err := strconv.Atoi(val); err == nil {
		return time.Duration(s) * time.Second
	}
	return defaultVal
}
