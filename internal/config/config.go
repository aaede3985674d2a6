package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret    string
	JWTExpiry    time.Duration
	ServiceToken string // Shared secret for service-to-service profile updates

	// Identity provider (OpenID Connect)
	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: AWS S3, MinIO, Cloudflare R2, DigitalOcean Spaces, etc.)
	StorageBackend string // "s3" or "minio"
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3Endpoint     string // Optional for AWS, required for minio
	S3UseSSL       bool   // minio only
	ImageURLExpiry time.Duration

	// Uploads
	UploadDirect     bool // Presigned PUT straight to the bucket instead of relaying through the app
	UploadSlotExpiry time.Duration
	UploadMaxBytes   int64

	// Live updates
	EventBuffer    int64 // Per-subscriber queue; a full queue drops events
	EventHeartbeat time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Sneakerbase"),
		AppEnv:  envRequired("APP_ENV"), // 'development' or 'production'
		AppURL:  envRequired("APP_URL"), // Base URL for OIDC redirects and relay upload slots
		Port:    envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/sneakerbase.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		JWTSecret:    envRequired("JWT_SECRET"),
		JWTExpiry:    envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		ServiceToken: envString("SERVICE_TOKEN", ""),

		OIDCIssuerURL:    envString("OIDC_ISSUER_URL", ""),
		OIDCClientID:     envString("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: envString("OIDC_CLIENT_SECRET", ""),

		SentryDSN: envString("SENTRY_DSN", ""),

		StorageBackend: envString("STORAGE_BACKEND", "s3"),
		S3Region:       envRequired("S3_REGION"),
		S3Bucket:       envRequired("S3_BUCKET"),
		S3AccessKey:    envRequired("S3_ACCESS_KEY"),
		S3SecretKey:    envRequired("S3_SECRET_KEY"),
		S3Endpoint:     envString("S3_ENDPOINT", ""),
		S3UseSSL:       envBool("S3_USE_SSL", false),
		ImageURLExpiry: envDuration("IMAGE_URL_EXPIRY", 24*time.Hour),

		UploadDirect:     envBool("UPLOAD_DIRECT", false),
		UploadSlotExpiry: envDuration("UPLOAD_SLOT_EXPIRY", 15*time.Minute),
		UploadMaxBytes:   envInt64("UPLOAD_MAX_BYTES", 5<<20), // 5MB

		EventBuffer:    envInt64("EVENT_BUFFER", 32),
		EventHeartbeat: envDuration("EVENT_HEARTBEAT", 25*time.Second),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures sign-in is possible in production deployments.
// Development runs without an identity provider so the API can be explored with bearer tokens from tests.
func validateProduction(cfg *Config) {
	if cfg.OIDCIssuerURL == "" || cfg.OIDCClientID == "" {
		slog.Error("production deployment requires OIDC_ISSUER_URL and OIDC_CLIENT_ID")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// IdentityEnabled reports whether an OpenID Connect provider is configured.
func (c *Config) IdentityEnabled() bool {
	return c.OIDCIssuerURL != "" && c.OIDCClientID != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		OIDCIssuerURL: c.OIDCIssuerURL,
		OIDCClientID:  c.OIDCClientID,

		StorageBackend:   c.StorageBackend,
		S3Endpoint:       c.S3Endpoint,
		UploadDirect:     c.UploadDirect,
		UploadSlotExpiry: c.UploadSlotExpiry,
		UploadMaxBytes:   c.UploadMaxBytes,
	}
}
