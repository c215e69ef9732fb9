package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/SAP-F-2025/course-marketplace/internal/identity"
)

const (
	AuthModeCasdoor = "casdoor"
	AuthModeStatic  = "static"
)

type CasdoorConfig = identity.CasdoorConfig

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type PaymentConfig struct {
	PaystackSecretKey string
	PaystackBaseURL   string
	CallbackURL       string
}

// StaticToken maps a bearer token to a subject for AUTH_MODE=static
type StaticToken struct {
	Token   string
	Subject string
	Email   string
}

type Config struct {
	Port            string
	Environment     string
	LogLevel        slog.Level
	ShutdownTimeout time.Duration

	Database DatabaseConfig
	RedisURL string

	AuthMode     string
	Casdoor      CasdoorConfig
	StaticTokens []StaticToken
	FrontendURL  string

	Kafka   KafkaConfig
	Payment PaymentConfig

	MetricsEnabled bool
}

// LoadConfig reads the environment, optionally seeded from a .env file
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getBool("DB_AUTO_MIGRATE", true),
		},
		RedisURL: os.Getenv("REDIS_URL"),
		AuthMode: strings.ToLower(getEnv("AUTH_MODE", AuthModeCasdoor)),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
		FrontendURL: os.Getenv("FRONTEND_URL"),
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "course-marketplace.events"),
		},
		Payment: PaymentConfig{
			PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
			PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			CallbackURL:       os.Getenv("PAYMENT_CALLBACK_URL"),
		},
		MetricsEnabled: getBool("METRICS_ENABLED", true),
	}

	tokens, err := parseStaticTokens(os.Getenv("AUTH_STATIC_TOKENS"))
	if err != nil {
		return nil, err
	}
	cfg.StaticTokens = tokens

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	switch c.AuthMode {
	case AuthModeCasdoor:
		if c.Casdoor.Endpoint == "" || c.Casdoor.ClientID == "" || c.Casdoor.Cert == "" {
			errs = append(errs, errors.New("CASDOOR_ENDPOINT, CASDOOR_CLIENT_ID and CASDOOR_CERT are required in casdoor auth mode"))
		}
	case AuthModeStatic:
		if c.IsProduction() {
			errs = append(errs, errors.New("static auth mode is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode))
	}

	if c.IsProduction() && c.Payment.PaystackSecretKey == "" {
		errs = append(errs, errors.New("PAYSTACK_SECRET_KEY is required in production"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// parseStaticTokens reads "token:subject:email" entries separated by commas
func parseStaticTokens(raw string) ([]StaticToken, error) {
	var tokens []StaticToken
	for _, entry := range splitList(raw) {
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid AUTH_STATIC_TOKENS entry %q", entry)
		}
		token := StaticToken{Token: parts[0], Subject: parts[1]}
		if len(parts) > 2 {
			token.Email = parts[2]
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
