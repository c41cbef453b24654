package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigurationError means the process cannot serve requests at all: no
// rail provider configured or a mandatory credential missing. It is logged
// in full but never shown verbatim to end users.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// RTTSettings are the credentials for the RealTimeTrains API.
type RTTSettings struct {
	Username string
	Password string
	BaseURL  string
}

// TransportAPISettings are the credentials for TransportAPI.
type TransportAPISettings struct {
	AppID   string
	AppKey  string
	BaseURL string
}

type Config struct {
	Environment   string
	LogLevel      zerolog.Level
	HTTPTimeout   time.Duration
	TelegramToken string
	// RTT and TransportAPI are nil when their credentials are absent.
	// Provider order is fixed: RTT first, TransportAPI second.
	RTT          *RTTSettings
	TransportAPI *TransportAPISettings
	DefaultLimit int
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the per-provider HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:  "production",
		LogLevel:     zerolog.InfoLevel,
		HTTPTimeout:  10 * time.Second,
		DefaultLimit: 5,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// LoadFromEnv loads configuration from environment variables. At least one
// rail provider and the Telegram token are mandatory.
func LoadFromEnv() (*Config, error) {
	cfg := New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
	)

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, &ConfigurationError{Message: "missing Telegram credential in environment: TELEGRAM_BOT_TOKEN"}
	}

	cfg.RTT = rttFromEnv()
	cfg.TransportAPI = transportAPIFromEnv()
	if cfg.RTT == nil && cfg.TransportAPI == nil {
		return nil, &ConfigurationError{Message: "at least one rail data provider must be configured"}
	}

	cfg.DefaultLimit = getIntEnvOrDefault("DEFAULT_RESULT_LIMIT", 5)

	return cfg, nil
}

func rttFromEnv() *RTTSettings {
	username := os.Getenv("RTT_USERNAME")
	password := os.Getenv("RTT_PASSWORD")
	if username == "" || password == "" {
		return nil
	}
	return &RTTSettings{
		Username: username,
		Password: password,
		BaseURL:  getEnvOrDefault("RTT_BASE_URL", "https://api.rtt.io"),
	}
}

func transportAPIFromEnv() *TransportAPISettings {
	appID := os.Getenv("TRANSPORT_API_APP_ID")
	appKey := os.Getenv("TRANSPORT_API_APP_KEY")
	if appID == "" || appKey == "" {
		return nil
	}
	return &TransportAPISettings{
		AppID:   appID,
		AppKey:  appKey,
		BaseURL: getEnvOrDefault("TRANSPORT_API_BASE_URL", "https://transportapi.com/v3"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
