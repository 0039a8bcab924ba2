package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/campusconnect/backend/internal/pkg/helpers"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		StoragePath    string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		PublicBaseURL  string   `yaml:"public_base_url" env:"SERVER_PUBLIC_BASE_URL"`
		CookieSecure   bool     `yaml:"cookie_secure" env:"SERVER_COOKIE_SECURE"`
		CookieDomain   string   `yaml:"cookie_domain" env:"SERVER_COOKIE_DOMAIN"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
		CookieName             string `yaml:"cookie_name" env:"JWT_COOKIE_NAME"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		Enabled        bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		Addr           string `yaml:"addr" env:"REDIS_ADDR"`
		Password       string `yaml:"password" env:"REDIS_PASSWORD"`
		DB             int    `yaml:"db" env:"REDIS_DB"`
		PresencePrefix string `yaml:"presence_prefix" env:"REDIS_PRESENCE_PREFIX"`
	} `yaml:"redis"`

	Media struct {
		Driver        string `yaml:"driver" env:"MEDIA_DRIVER"`
		Bucket        string `yaml:"bucket" env:"MEDIA_BUCKET"`
		Region        string `yaml:"region" env:"MEDIA_REGION"`
		Endpoint      string `yaml:"endpoint" env:"MEDIA_ENDPOINT"`
		AccessKey     string `yaml:"access_key" env:"MEDIA_ACCESS_KEY"`
		SecretKey     string `yaml:"secret_key" env:"MEDIA_SECRET_KEY"`
		Folder        string `yaml:"folder" env:"MEDIA_FOLDER"`
		PublicBaseURL string `yaml:"public_base_url" env:"MEDIA_PUBLIC_BASE_URL"`
		MaxUploadMB   int    `yaml:"max_upload_mb" env:"MEDIA_MAX_UPLOAD_MB"`
	} `yaml:"media"`

	Worker struct {
		Enabled     bool `yaml:"enabled" env:"WORKER_ENABLED"`
		Concurrency int  `yaml:"concurrency" env:"WORKER_CONCURRENCY"`
	} `yaml:"worker"`

	RateLimit struct {
		AuthPerMinute int `yaml:"auth_per_minute" env:"RATELIMIT_AUTH_PER_MINUTE"`
		Burst         int `yaml:"burst" env:"RATELIMIT_BURST"`
	} `yaml:"ratelimit"`

	Seed struct {
		Enabled          bool   `yaml:"enabled" env:"SEED_ENABLED"`
		College          string `yaml:"college" env:"SEED_COLLEGE"`
		DirectorName     string `yaml:"director_name" env:"SEED_DIRECTOR_NAME"`
		DirectorEmail    string `yaml:"director_email" env:"SEED_DIRECTOR_EMAIL"`
		DirectorPassword string `yaml:"director_password" env:"SEED_DIRECTOR_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a .env file, a YAML file and environment variables,
// in that order of increasing precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is fine; anything else is worth failing for
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = []string{"http://localhost:5173"}
	config.Server.StoragePath = "uploads"
	config.Server.PublicBaseURL = "http://localhost:8080"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campusconnect"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "3d"
	config.JWT.RefreshTokenExpiration = "30d"
	config.JWT.Issuer = "campusconnect"
	config.JWT.CookieName = "auth_token"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.Addr = "localhost:6379"
	config.Redis.PresencePrefix = "campus"

	config.Media.Driver = "local"
	config.Media.Folder = "campusconnect"
	config.Media.MaxUploadMB = 25

	config.Worker.Concurrency = 5

	config.RateLimit.AuthPerMinute = 30
	config.RateLimit.Burst = 10
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	// cors.New panics on an empty list or an origin without an http(s) scheme
	if len(config.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin is required")
	}
	for _, origin := range config.Server.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("allowed origin %q must be \"*\" or start with http:// or https://", origin)
		}
	}

	if _, err := helpers.ParseTTL(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := helpers.ParseTTL(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	switch config.Media.Driver {
	case "local":
	case "s3":
		if config.Media.Bucket == "" || config.Media.Region == "" {
			return fmt.Errorf("media bucket and region are required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown media driver %q", config.Media.Driver)
	}

	if config.Worker.Enabled && !config.Redis.Enabled {
		return fmt.Errorf("worker requires redis to be enabled")
	}

	if config.Seed.Enabled && (config.Seed.DirectorEmail == "" || config.Seed.DirectorPassword == "" || config.Seed.College == "") {
		return fmt.Errorf("seed requires college, director email and director password")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// MaxUploadBytes returns the multipart memory limit for uploads
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Media.MaxUploadMB) << 20
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
