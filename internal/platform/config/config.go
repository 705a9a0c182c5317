package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	Addr          string
	JWTSigningKey string

	// DatabaseURL selects the postgres-backed ledger; empty keeps the
	// in-memory stores (dev and tests).
	DatabaseURL string

	// RedisURL enables the authority response cache; empty disables it.
	RedisURL          string
	AuthorityCacheTTL time.Duration

	// WWCC holds per-jurisdiction authority endpoints and keys. A
	// jurisdiction with no entry is a valid, expected state: submissions
	// for it fall back to manual review.
	WWCC map[string]AuthorityConfig

	OCRServiceURL string
	OCRAPIKey     string

	// ExternalTimeout bounds every authority and OCR call. Timeouts are
	// treated like any other transport failure (manual review).
	ExternalTimeout time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	KafkaBrokers []string
	KafkaTopic   string

	AllowedOrigins []string
}

// AuthorityConfig is the wiring for one jurisdiction's WWCC registry.
type AuthorityConfig struct {
	Endpoint string
	APIKey   string
}

// jurisdictions enumerates the eight Australian states and territories.
var jurisdictions = []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "ACT", "NT"}

// FromEnv builds a Config from environment variables so main stays lean.
// Authority endpoints follow the <STATE>_WWCC_API_URL / <STATE>_WWCC_API_KEY
// convention; only jurisdictions with an endpoint set are wired up.
func FromEnv() Config {
	wwcc := make(map[string]AuthorityConfig)
	for _, state := range jurisdictions {
		endpoint := os.Getenv(state + "_WWCC_API_URL")
		if endpoint == "" {
			continue
		}
		wwcc[state] = AuthorityConfig{
			Endpoint: endpoint,
			APIKey:   os.Getenv(state + "_WWCC_API_KEY"),
		}
	}

	return Config{
		Addr:              getEnv("CAREGUARD_ADDR", ":8080"),
		JWTSigningKey:     getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		AuthorityCacheTTL: getEnvDuration("AUTHORITY_CACHE_TTL", 5*time.Minute),
		WWCC:              wwcc,
		OCRServiceURL:     getEnv("OCR_SERVICE_URL", ""),
		OCRAPIKey:         getEnv("OCR_API_KEY", ""),
		ExternalTimeout:   getEnvDuration("EXTERNAL_TIMEOUT", 15*time.Second),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPFrom:          getEnv("SMTP_FROM", "verifications@careguard.local"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		KafkaBrokers:      getEnvList("KAFKA_BROKERS"),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "careguard.verification.checks"),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
