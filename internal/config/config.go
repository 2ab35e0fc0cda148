package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string

	// Server
	ServerAddr   string
	BaseURL      string
	SiteTitle    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database
	DatabaseURL  string
	DBTraceLevel string // pgx tracelog level, "none" disables query logging
	AutoMigrate  bool

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session cookies carry OIDC login state only.
	SessionSecret string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Verified-token cache. Empty RedisURL disables caching.
	RedisURL      string
	TokenCacheTTL time.Duration

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "tls" or "starttls"

	EmailNotifyModeratorsOnSubmit bool
	EmailNotifyAuthorOnReview     bool

	// Object storage for media references. Empty S3Bucket disables the
	// existence check and only URL syntax is validated.
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	// Pending digest job. A zero interval disables it.
	PendingDigestInterval time.Duration
	PendingDigestMinAge   time.Duration

	// Policy is loaded from CONFIG_FILE.
	Policy *PolicyConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	policy, err := LoadPolicy(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:          getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ServerAddr:   getEnv("SERVER_ADDR", ":3000"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:3000"),
		SiteTitle:    getEnv("SITE_TITLE", "Campus Board"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 10*time.Second),

		DatabaseURL:  getEnv("DATABASE_URL", "postgres://localhost:5432/campusboard?sslmode=disable"),
		DBTraceLevel: getEnv("DB_TRACE_LEVEL", "none"),
		AutoMigrate:  getEnv("AUTO_MIGRATE", "true") == "true",

		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),

		RedisURL:      getEnv("REDIS_URL", ""),
		TokenCacheTTL: getDuration("TOKEN_CACHE_TTL", 5*time.Minute),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Campus Board"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		EmailNotifyModeratorsOnSubmit: getEnv("EMAIL_NOTIFY_MODERATORS_ON_SUBMIT", "true") == "true",
		EmailNotifyAuthorOnReview:     getEnv("EMAIL_NOTIFY_AUTHOR_ON_REVIEW", "true") == "true",

		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL: strings.TrimSuffix(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),

		PendingDigestInterval: getDuration("PENDING_DIGEST_INTERVAL", 0),
		PendingDigestMinAge:   getDuration("PENDING_DIGEST_MIN_AGE", 24*time.Hour),

		Policy: policy,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsS3Enabled returns true if media references are checked against a bucket.
func (c *Config) IsS3Enabled() bool {
	return c.S3Bucket != "" && c.S3PublicBaseURL != ""
}
