package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Registry save modes
const (
	SaveModeAppend = "append"
	SaveModeInsert = "insert"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port          string `yaml:"port" env:"SERVER_PORT"`
		Mode          string `yaml:"mode" env:"NODE_ENV"`
		PublicBaseURL string `yaml:"public_base_url" env:"PUBLIC_BASE_URL"`
		ReadTimeout   string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout  string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
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

	Mongo struct {
		URI            string `yaml:"uri" env:"MONGODB_URI"`
		Database       string `yaml:"database" env:"MONGODB_DATABASE"`
		Collection     string `yaml:"collection" env:"MONGODB_COLLECTION"`
		ConnectTimeout string `yaml:"connect_timeout" env:"MONGODB_CONNECT_TIMEOUT"`
	} `yaml:"mongo"`

	Storage struct {
		Region          string `yaml:"region" env:"AWS_REGION"`
		Bucket          string `yaml:"bucket" env:"AWS_BUCKET_NAME"`
		AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY"`
		SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_KEY"`
		Endpoint        string `yaml:"endpoint" env:"AWS_ENDPOINT_URL"`
		UsePathStyle    bool   `yaml:"use_path_style" env:"AWS_USE_PATH_STYLE"`
		StagingDir      string `yaml:"staging_dir" env:"UPLOADS_PATH"`
		MaxUploadSizeMB int    `yaml:"max_upload_size_mb" env:"MAX_UPLOAD_SIZE_MB"`
	} `yaml:"storage"`

	JWT struct {
		Secret     string `yaml:"secret" env:"JWT_SECRET"`
		Expiration string `yaml:"expiration" env:"JWT_EXPIRE"`
		Issuer     string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Session struct {
		TTL          string `yaml:"ttl" env:"SESSION_TTL"`
		CookieName   string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
		CookieMaxAge string `yaml:"cookie_max_age" env:"SESSION_COOKIE_MAX_AGE"`
		CookieDomain string `yaml:"cookie_domain" env:"SESSION_COOKIE_DOMAIN"`
	} `yaml:"session"`

	Auth struct {
		AllowAdminRegistration bool `yaml:"allow_admin_registration" env:"ALLOW_ADMIN_REGISTRATION"`
	} `yaml:"auth"`

	Registry struct {
		SaveMode string `yaml:"save_mode" env:"REGISTRY_SAVE_MODE"`
	} `yaml:"registry"`

	Analysis struct {
		BaseURL string `yaml:"base_url" env:"ANALYSIS_BASE_URL"`
		Timeout string `yaml:"timeout" env:"ANALYSIS_TIMEOUT"`
	} `yaml:"analysis"`

	Seed struct {
		AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, a .env file and environment variables.
// Precedence: environment > .env > yaml > defaults.
func LoadConfig(configPath string) (*Config, error) {
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

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "30s"
	config.Server.WriteTimeout = "120s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "resultsportal"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Mongo.URI = "mongodb://localhost:27017"
	config.Mongo.Database = "resultsportal"
	config.Mongo.Collection = "files"
	config.Mongo.ConnectTimeout = "10s"

	config.Storage.Region = "ap-south-1"
	config.Storage.StagingDir = "uploads"
	config.Storage.MaxUploadSizeMB = 10

	config.JWT.Expiration = "24h"
	config.JWT.Issuer = "resultsportal"

	config.Session.TTL = "168h"
	config.Session.CookieName = "token"
	config.Session.CookieMaxAge = "24h"

	config.Registry.SaveMode = SaveModeInsert

	config.Analysis.BaseURL = "http://localhost:5001"
	config.Analysis.Timeout = "120s"

	config.Seed.AdminName = "Administrator"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Mongo.URI == "" {
		return fmt.Errorf("mongodb uri is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if config.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}

	durations := map[string]string{
		"database conn_max_lifetime": config.Database.ConnMaxLifetime,
		"mongo connect_timeout":      config.Mongo.ConnectTimeout,
		"jwt expiration":             config.JWT.Expiration,
		"session ttl":                config.Session.TTL,
		"session cookie_max_age":     config.Session.CookieMaxAge,
		"analysis timeout":           config.Analysis.Timeout,
		"server read_timeout":        config.Server.ReadTimeout,
		"server write_timeout":       config.Server.WriteTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch config.Registry.SaveMode {
	case SaveModeAppend, SaveModeInsert:
	default:
		return fmt.Errorf("registry save_mode must be %q or %q, got %q", SaveModeAppend, SaveModeInsert, config.Registry.SaveMode)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
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
