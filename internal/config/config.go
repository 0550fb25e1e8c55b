package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the process configuration for the API server and credctl.
type Config struct {
	Port        string
	Database    DatabaseConfig
	Redis       RedisConfig
	Minio       MinioConfig
	Auth        AuthConfig
	Jobs        JobsConfig
	LogFormat   string
	LogLevel    string
	Environment string
}

type DatabaseConfig struct {
	URL    string
	APIKey string
	Schema string
}

// Configured reports whether both connection parameters are present.
func (d DatabaseConfig) Configured() bool {
	return strings.TrimSpace(d.URL) != "" && strings.TrimSpace(d.APIKey) != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	JWKSURL    string
	RedirectTo string
}

type JobsConfig struct {
	ComplianceSweep time.Duration
	Concurrency     int
}

// ConnectionFile holds the two connection slots persisted by `credctl db-setup`.
type ConnectionFile struct {
	DatabaseURL string `toml:"database_url"`
	APIKey      string `toml:"api_key"`
}

// Load reads .env (if present), the environment, and falls back to the
// connection file for missing connection parameters.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			URL:    os.Getenv("DATABASE_URL"),
			APIKey: os.Getenv("API_KEY"),
			Schema: getEnv("DB_SCHEMA", "public"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			Bucket:    getEnv("MINIO_BUCKET", "provider-documents"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			TokenTTL:   getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
			JWKSURL:    os.Getenv("AUTH_JWKS_URL"),
			RedirectTo: getEnv("AUTH_REDIRECT_URL", "http://localhost:5173"),
		},
		Jobs: JobsConfig{
			ComplianceSweep: getEnvAsDuration("COMPLIANCE_SWEEP_INTERVAL", 24*time.Hour),
			Concurrency:     getEnvAsInt("WORKER_CONCURRENCY", 5),
		},
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" || cfg.Database.APIKey == "" {
		path := getEnv("CREDHUB_CONNECTION_FILE", DefaultConnectionFilePath())
		file, err := LoadConnectionFile(path)
		if err != nil {
			return nil, err
		}
		if file != nil {
			if cfg.Database.URL == "" {
				cfg.Database.URL = file.DatabaseURL
			}
			if cfg.Database.APIKey == "" {
				cfg.Database.APIKey = file.APIKey
			}
		}
	}

	return cfg, nil
}

// DefaultConnectionFilePath is ~/.config/credhub/connection.toml.
func DefaultConnectionFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "credhub-connection.toml"
	}
	return filepath.Join(dir, "credhub", "connection.toml")
}

// LoadConnectionFile returns nil without error when the file does not exist.
func LoadConnectionFile(path string) (*ConnectionFile, error) {
	file := &ConnectionFile{}
	_, err := toml.DecodeFile(path, file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load connection file: %w", err)
	}
	return file, nil
}

// SaveConnectionFile writes both slots, creating the parent directory.
func SaveConnectionFile(path string, file ConnectionFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(file); err != nil {
		return fmt.Errorf("failed to write connection file: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
