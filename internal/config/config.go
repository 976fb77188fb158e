// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// DefaultAppLabel is the application label mixed into master key derivation.
// Changing it makes every existing record unreadable.
const DefaultAppLabel = "keyvault-vault-key"

// Config holds all application configuration.
type Config struct {
	// VaultDataDir is the directory holding one record file per secret id.
	VaultDataDir string
	// VaultAppLabel is the fixed label combined with host identity to derive the master key.
	VaultAppLabel string
	// VaultCipherAlgorithm is the AEAD used for new records ("aes-gcm" or "chacha20-poly1305").
	VaultCipherAlgorithm string
	// VaultKDFIterations is the PBKDF2 iteration count for master and password-derived keys.
	VaultKDFIterations int
	// VaultListConcurrency bounds the number of record files decoded in parallel when listing.
	VaultListConcurrency int

	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ServerShutdownTimeout bounds graceful shutdown of the HTTP servers.
	ServerShutdownTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// RateLimitEnabled indicates whether per-IP rate limiting of operations is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Vault
		VaultDataDir:         env.GetString("VAULT_DATA_DIR", defaultVaultDir()),
		VaultAppLabel:        env.GetString("VAULT_APP_LABEL", DefaultAppLabel),
		VaultCipherAlgorithm: env.GetString("VAULT_CIPHER_ALGORITHM", string(cryptoDomain.AESGCM)),
		VaultKDFIterations:   env.GetInt("VAULT_KDF_ITERATIONS", cryptoDomain.MinKDFIterations),
		VaultListConcurrency: env.GetInt("VAULT_LIST_CONCURRENCY", 8),

		// Server configuration. The boundary is local, so bind to loopback by default.
		ServerHost:            env.GetString("SERVER_HOST", "127.0.0.1"),
		ServerPort:            env.GetInt("SERVER_PORT", 8090),
		ServerShutdownTimeout: env.GetDuration("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 20.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 40),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "keyvault"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8091),
	}
}

// Validate checks the configuration for values the application cannot start with.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.VaultDataDir, validation.Required),
		validation.Field(&c.VaultAppLabel, validation.Required),
		validation.Field(&c.VaultCipherAlgorithm,
			validation.Required,
			validation.In(string(cryptoDomain.AESGCM), string(cryptoDomain.ChaCha20)),
		),
		validation.Field(&c.VaultKDFIterations, validation.Required, validation.Min(cryptoDomain.MinKDFIterations)),
		validation.Field(&c.VaultListConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.RateLimitRequestsPerSec,
			validation.When(c.RateLimitEnabled, validation.Required, validation.Min(0.001)),
		),
		validation.Field(&c.RateLimitBurst, validation.When(c.RateLimitEnabled, validation.Required, validation.Min(1))),
		validation.Field(&c.MetricsNamespace, validation.When(c.MetricsEnabled, validation.Required)),
		validation.Field(&c.MetricsPort,
			validation.When(c.MetricsEnabled, validation.Required, validation.Min(1), validation.Max(65535)),
		),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid configuration: "+err.Error())
	}
	return nil
}

// CipherAlgorithm returns the parsed VaultCipherAlgorithm.
func (c *Config) CipherAlgorithm() (cryptoDomain.Algorithm, error) {
	return cryptoDomain.ParseAlgorithm(c.VaultCipherAlgorithm)
}

// AllowOrigins splits CORSAllowOrigins into trimmed, non-empty origins.
func (c *Config) AllowOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// defaultVaultDir returns <user config dir>/keyvault/vault, falling back to a
// directory under the working directory when no config dir is known.
func defaultVaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".keyvault", "vault")
	}
	return filepath.Join(base, "keyvault", "vault")
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
