package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DBDriver selects postgres or sqlite; the
	// sqlite path is only consulted for the sqlite driver.
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration (rate limiting)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Export pipeline configuration
	ExportStorage   string // "local" or "s3"
	ExportDir       string
	S3Bucket        string
	WkhtmltopdfPath string

	// Migrations
	MigrationsDir string
}

// LoadConfig creates a new Config instance with values from environment
// variables, falling back to Docker secrets in production.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case Production:
		loadProdConfig(cfg)
	default:
		loadEnvConfig(cfg)
	}

	applyDefaults(cfg, env)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig loads configuration straight from environment variables
// (development, test and CI).
func loadEnvConfig(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBDriver = os.Getenv("DB_DRIVER")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.ExportStorage = os.Getenv("EXPORT_STORAGE")
	cfg.ExportDir = os.Getenv("EXPORT_DIR")
	cfg.S3Bucket = os.Getenv("S3_BUCKET_NAME")
	cfg.WkhtmltopdfPath = os.Getenv("WKHTMLTOPDF_PATH")
	cfg.MigrationsDir = os.Getenv("MIGRATIONS_DIR")

	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.RedisDB = n
		}
	}
}

// loadProdConfig loads configuration from Docker secrets, with environment
// variables as a fallback per key.
func loadProdConfig(cfg *Config) {
	get := func(secret, envKey string) string {
		if v := readSecret(secret); v != "" {
			return v
		}
		return os.Getenv(envKey)
	}

	cfg.ServerPort = get("server_port", "SERVER_PORT")
	cfg.ServerHost = get("server_host", "SERVER_HOST")
	cfg.DBDriver = get("db_driver", "DB_DRIVER")
	cfg.DBHost = get("db_host", "DB_HOST")
	cfg.DBPort = get("db_port", "DB_PORT")
	cfg.DBUser = get("db_user", "DB_USER")
	cfg.DBPassword = get("db_password", "DB_PASSWORD")
	cfg.DBName = get("db_name", "DB_NAME")
	cfg.DBSSLMode = get("db_ssl_mode", "DB_SSL_MODE")
	cfg.RedisHost = get("redis_host", "REDIS_HOST")
	cfg.RedisPort = get("redis_port", "REDIS_PORT")
	cfg.RedisPassword = get("redis_password", "REDIS_PASSWORD")
	cfg.RedisURL = get("redis_url", "REDIS_URL")
	cfg.JWTSecret = get("jwt_secret", "JWT_SECRET")
	cfg.ExportStorage = get("export_storage", "EXPORT_STORAGE")
	cfg.ExportDir = get("export_dir", "EXPORT_DIR")
	cfg.S3Bucket = get("s3_bucket_name", "S3_BUCKET_NAME")
	cfg.WkhtmltopdfPath = get("wkhtmltopdf_path", "WKHTMLTOPDF_PATH")
	cfg.MigrationsDir = get("migrations_dir", "MIGRATIONS_DIR")
}

// applyDefaults fills in the values a fresh checkout should run with.
func applyDefaults(cfg *Config, env Environment) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.ServerHost == "" {
		cfg.ServerHost = "0.0.0.0"
	}
	if cfg.DBDriver == "" {
		if env == Production || env == CI {
			cfg.DBDriver = "postgres"
		} else {
			cfg.DBDriver = "sqlite"
		}
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "cuppa.db"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
	if cfg.RedisHost == "" {
		cfg.RedisHost = "localhost"
	}
	if cfg.RedisPort == "" {
		cfg.RedisPort = "6379"
	}
	if cfg.JWTSecret == "" && env != Production {
		cfg.JWTSecret = "dev-secret"
	}
	if cfg.ExportStorage == "" {
		cfg.ExportStorage = "local"
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "exports"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
