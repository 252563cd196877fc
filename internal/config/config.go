package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Security SecurityConfig
	Email    EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
}

type AuthConfig struct {
	JWTSecret         string
	AccessTokenExpiry time.Duration
}

// SecurityConfig holds the thresholds and windows for the login security core.
// The IP and email windows are deliberately independent knobs.
type SecurityConfig struct {
	IPFailureWindow      time.Duration // trailing window for the IP block rule
	IPFailureThreshold   int
	EmailFailureWindow   time.Duration // trailing window for the per-email rule
	EmailFailureThreshold int
	RecognizerLookback   time.Duration // how far back the recognizer reads successes
	RecognizerLimit      int           // cap on records the recognizer considers
	ConfirmationTTL      time.Duration // token validity from attempt time
	DenySweepWindow      time.Duration // how far back a denial re-flags successes
	AttemptRetention     time.Duration // expires_at = attempted_at + retention
	NotifyTimeout        time.Duration // upper bound on a single dispatch call
	CleanupInterval      time.Duration
	TimingDelayBaseMs    int
	TimingDelayRandomMs  int
}

type EmailConfig struct {
	AWSRegion   string
	FromAddress string
	BaseURL     string // base for confirm/deny links in emails
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "sentinel"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS"),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
		},
		Auth: AuthConfig{
			JWTSecret:         jwtSecret,
			AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		},
		Security: SecurityConfig{
			IPFailureWindow:       getEnvAsDuration("RATE_LIMIT_IP_WINDOW", 60*time.Minute),
			IPFailureThreshold:    getEnvAsInt("RATE_LIMIT_IP_THRESHOLD", 10),
			EmailFailureWindow:    getEnvAsDuration("RATE_LIMIT_EMAIL_WINDOW", 15*time.Minute),
			EmailFailureThreshold: getEnvAsInt("RATE_LIMIT_EMAIL_THRESHOLD", 5),
			RecognizerLookback:    getEnvAsDuration("RECOGNIZER_LOOKBACK", 30*24*time.Hour),
			RecognizerLimit:       getEnvAsInt("RECOGNIZER_LIMIT", 10),
			ConfirmationTTL:       getEnvAsDuration("CONFIRMATION_TTL", 24*time.Hour),
			DenySweepWindow:       getEnvAsDuration("DENY_SWEEP_WINDOW", 7*24*time.Hour),
			AttemptRetention:      getEnvAsDuration("ATTEMPT_RETENTION", 30*24*time.Hour),
			NotifyTimeout:         getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
			CleanupInterval:       getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
			TimingDelayBaseMs:     getEnvAsInt("TIMING_DELAY_BASE_MS", 200),
			TimingDelayRandomMs:   getEnvAsInt("TIMING_DELAY_RANDOM_MS", 100),
		},
		Email: EmailConfig{
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
			BaseURL:     getEnv("EMAIL_BASE_URL", "http://localhost:8080"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	if err := validateSecurity(&cfg.Security); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for the JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

// validateSecurity rejects configurations that would disable the core rules
func validateSecurity(sc *SecurityConfig) error {
	if sc.IPFailureThreshold < 1 || sc.EmailFailureThreshold < 1 {
		return fmt.Errorf("rate limit thresholds must be at least 1")
	}
	if sc.IPFailureWindow <= 0 || sc.EmailFailureWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	if sc.ConfirmationTTL <= 0 {
		return fmt.Errorf("CONFIRMATION_TTL must be positive")
	}
	if sc.AttemptRetention < sc.RecognizerLookback {
		return fmt.Errorf("ATTEMPT_RETENTION must cover RECOGNIZER_LOOKBACK")
	}
	if sc.RecognizerLimit < 1 {
		return fmt.Errorf("RECOGNIZER_LIMIT must be at least 1")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
