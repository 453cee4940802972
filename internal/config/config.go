// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the gateway.
type Config struct {
	HTTPAddr  string
	UploadDir string
	AppEnv    string

	// Object storage (S3-compatible, MinIO by default)
	Endpoint   string
	Port       string
	UseSSL     bool
	AccessKey  string
	SecretKey  string
	BucketName string

	// Optional: upload ledger in Postgres and bearer auth on the gateway routes.
	DatabaseURL string
	JWTSecret   string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		HTTPAddr:  getEnv("HTTP_ADDR", ":3000"),
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		AppEnv:    getEnv("APP_ENV", "development"),

		Endpoint:   getEnv("ENDPOINT", "localhost"),
		Port:       getEnv("PORT", "9000"),
		UseSSL:     getEnv("USE_SSL", "false") == "true",
		AccessKey:  getEnv("ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("SECRET_KEY", "minioadmin"),
		BucketName: getEnv("BUCKET_NAME", "uploads"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}
}

// StorageAddr returns the host:port of the object store and whether TLS must be used.
// ENDPOINT may be a bare host, a host:port, or a URL with an http/https scheme; in the
// last two forms PORT is ignored.
func (c *Config) StorageAddr() (string, bool, error) {
	raw := strings.TrimSpace(c.Endpoint)
	if raw == "" {
		return "", false, fmt.Errorf("empty storage endpoint")
	}

	secure := c.UseSSL
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, fmt.Errorf("parse storage endpoint: %w", err)
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid storage endpoint %q", raw)
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("storage endpoint must not contain a path")
		}
		if u.Scheme == "https" {
			secure = true
		}
		raw = u.Host
	}

	if _, _, err := net.SplitHostPort(raw); err == nil {
		return raw, secure, nil
	}
	if c.Port == "" {
		return raw, secure, nil
	}
	return net.JoinHostPort(raw, c.Port), secure, nil
}

// LedgerEnabled reports whether uploads are recorded in Postgres.
func (c *Config) LedgerEnabled() bool {
	return c.DatabaseURL != ""
}

// AuthEnabled reports whether the gateway routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
