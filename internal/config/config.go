package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Photos    PhotosConfig    `yaml:"photos"`
	Search    SearchConfig    `yaml:"search"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host                string   `yaml:"host"`
	Port                int      `yaml:"port"`
	Environment         string   `yaml:"environment"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings. URL wins over
// the individual fields when set
type PostgresConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SQLiteConfig contains SQLite settings
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PhotosConfig contains photo storage and normalization settings
type PhotosConfig struct {
	Backend       string   `yaml:"backend"`
	BaseDir       string   `yaml:"base_dir"`
	PublicPrefix  string   `yaml:"public_prefix"`
	MaxFileSizeMB int      `yaml:"max_file_size_mb"`
	MaxFiles      int      `yaml:"max_files"`
	MaxWidth      int      `yaml:"max_width"`
	MaxHeight     int      `yaml:"max_height"`
	JPEGQuality   int      `yaml:"jpeg_quality"`
	Workers       int      `yaml:"workers"`
	S3            S3Config `yaml:"s3"`
}

// S3Config contains object storage settings for the s3 photo backend
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

// GeocodingConfig contains Google Geocoding settings
type GeocodingConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	CacheSize         int     `yaml:"cache_size"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	FailureThreshold  int     `yaml:"failure_threshold"`
	ResetMinutes      int     `yaml:"reset_minutes"`
}

// AuthConfig contains session and admin bootstrap settings
type AuthConfig struct {
	SessionSecret      string `yaml:"session_secret"`
	SessionName        string `yaml:"session_name"`
	SessionMaxAgeHours int    `yaml:"session_max_age_hours"`
	SecureCookies      bool   `yaml:"secure_cookies"`
	AdminUsername      string `yaml:"admin_username"`
	AdminPassword      string `yaml:"admin_password"`
}

// RateLimitConfig contains rate limiting settings for public endpoints
type RateLimitConfig struct {
	Enabled                bool `yaml:"enabled"`
	LeadRequestsPerMinute  int  `yaml:"lead_requests_per_minute"`
	LeadRequestsPerHour    int  `yaml:"lead_requests_per_hour"`
	LoginRequestsPerMinute int  `yaml:"login_requests_per_minute"`
	LoginRequestsPerHour   int  `yaml:"login_requests_per_hour"`
}

// SchedulerConfig contains nightly job settings
type SchedulerConfig struct {
	GeocodeEnabled bool   `yaml:"geocode_enabled"`
	GeocodeTime    string `yaml:"geocode_time"`
	SweepEnabled   bool   `yaml:"sweep_enabled"`
	SweepTime      string `yaml:"sweep_time"`
	SweepDryRun    bool   `yaml:"sweep_dry_run"`
	Timezone       string `yaml:"timezone"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                5000,
			Environment:         "development",
			AllowedOrigins:      []string{"http://localhost:5173"},
			ReadTimeoutSeconds:  60,
			WriteTimeoutSeconds: 120,
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			SQLite: SQLiteConfig{
				Path: "rental.db",
			},
			Postgres: PostgresConfig{
				Port:    5432,
				SSLMode: "disable",
			},
			MySQL: MySQLConfig{
				Port: 3306,
			},
		},
		Photos: PhotosConfig{
			Backend:       "filesystem",
			BaseDir:       ".",
			PublicPrefix:  "/",
			MaxFileSizeMB: 20,
			MaxFiles:      10,
			MaxWidth:      1920,
			MaxHeight:     1080,
			JPEGQuality:   80,
			Workers:       4,
			S3: S3Config{
				Region:       "us-east-1",
				UsePathStyle: true,
			},
		},
		Search: SearchConfig{
			Meilisearch: MeilisearchConfig{
				Index: "properties",
			},
		},
		Geocoding: GeocodingConfig{
			BaseURL:           "https://maps.googleapis.com/maps/api/geocode/json",
			RequestsPerSecond: 5,
			CacheSize:         1024,
			TimeoutSeconds:    10,
			FailureThreshold:  5,
			ResetMinutes:      10,
		},
		Auth: AuthConfig{
			SessionName:        "rental_session",
			SessionMaxAgeHours: 24 * 7,
		},
		RateLimit: RateLimitConfig{
			Enabled:                true,
			LeadRequestsPerMinute:  5,
			LeadRequestsPerHour:    30,
			LoginRequestsPerMinute: 10,
			LoginRequestsPerHour:   100,
		},
		Scheduler: SchedulerConfig{
			GeocodeEnabled: false,
			GeocodeTime:    "03:00",
			SweepEnabled:   false,
			SweepTime:      "04:00",
			SweepDryRun:    true,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides file values with environment variables
func (c *Config) ApplyEnv() {
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	c.Server.Environment = getEnvOrConfig(c.Server.Environment, "APP_ENV", c.Server.Environment)
	if env := os.Getenv("NODE_ENV"); env != "" && os.Getenv("APP_ENV") == "" {
		c.Server.Environment = env
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	c.Database.Type = getEnvOrConfig(c.Database.Type, "DB_TYPE", c.Database.Type)
	switch c.Database.Type {
	case "mysql":
		c.Database.MySQL.Host = getEnvOrConfig(c.Database.MySQL.Host, "DB_HOST", "mysql")
		c.Database.MySQL.Port = getEnvInt("DB_PORT", c.Database.MySQL.Port)
		c.Database.MySQL.User = getEnvOrConfig(c.Database.MySQL.User, "DB_USER", "rental_user")
		c.Database.MySQL.Password = getEnvOrConfig(c.Database.MySQL.Password, "DB_PASSWORD", "")
		c.Database.MySQL.Database = getEnvOrConfig(c.Database.MySQL.Database, "DB_NAME", "rental_db")
	case "postgres":
		c.Database.Postgres.URL = getEnvOrConfig(c.Database.Postgres.URL, "DATABASE_URL", "")
		c.Database.Postgres.Host = getEnvOrConfig(c.Database.Postgres.Host, "DB_HOST", "db")
		c.Database.Postgres.Port = getEnvInt("DB_PORT", c.Database.Postgres.Port)
		c.Database.Postgres.User = getEnvOrConfig(c.Database.Postgres.User, "DB_USER", "rental_user")
		c.Database.Postgres.Password = getEnvOrConfig(c.Database.Postgres.Password, "DB_PASSWORD", "")
		c.Database.Postgres.Database = getEnvOrConfig(c.Database.Postgres.Database, "DB_NAME", "rental_db")
	case "sqlite":
		c.Database.SQLite.Path = getEnvOrConfig(c.Database.SQLite.Path, "SQLITE_PATH", "rental.db")
	}

	c.Photos.Backend = getEnvOrConfig(c.Photos.Backend, "PHOTOS_BACKEND", "filesystem")
	c.Photos.BaseDir = getEnvOrConfig(c.Photos.BaseDir, "PHOTOS_BASE_DIR", ".")
	c.Photos.S3.Endpoint = getEnvOrConfig(c.Photos.S3.Endpoint, "S3_ENDPOINT", "")
	c.Photos.S3.Region = getEnvOrConfig(c.Photos.S3.Region, "S3_REGION", "us-east-1")
	c.Photos.S3.Bucket = getEnvOrConfig(c.Photos.S3.Bucket, "S3_BUCKET", "")
	c.Photos.S3.AccessKeyID = getEnvOrConfig(c.Photos.S3.AccessKeyID, "S3_ACCESS_KEY_ID", "")
	c.Photos.S3.SecretAccessKey = getEnvOrConfig(c.Photos.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY", "")
	c.Photos.S3.PublicBaseURL = getEnvOrConfig(c.Photos.S3.PublicBaseURL, "S3_PUBLIC_BASE_URL", "")

	c.Search.Meilisearch.Host = getEnvOrConfig(c.Search.Meilisearch.Host, "MEILISEARCH_HOST", "")
	c.Search.Meilisearch.APIKey = getEnvOrConfig(c.Search.Meilisearch.APIKey, "MEILISEARCH_KEY", "")

	c.Geocoding.APIKey = getEnvOrConfig(c.Geocoding.APIKey, "GOOGLE_GEOCODING_API_KEY", "")

	c.Auth.SessionSecret = getEnvOrConfig(c.Auth.SessionSecret, "SESSION_SECRET", "")
	c.Auth.AdminUsername = getEnvOrConfig(c.Auth.AdminUsername, "ADMIN_USERNAME", "")
	c.Auth.AdminPassword = getEnvOrConfig(c.Auth.AdminPassword, "ADMIN_PASSWORD", "")

	c.Logging.Level = getEnvOrConfig(c.Logging.Level, "LOG_LEVEL", "info")
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Type {
	case "mysql", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported database.type %q", c.Database.Type))
	}
	switch c.Photos.Backend {
	case "filesystem":
	case "s3":
		if c.Photos.S3.Bucket == "" {
			errs = append(errs, errors.New("photos.s3.bucket is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported photos.backend %q", c.Photos.Backend))
	}
	if c.Photos.MaxFiles <= 0 {
		errs = append(errs, errors.New("photos.max_files must be positive"))
	}
	if c.Photos.MaxFileSizeMB <= 0 {
		errs = append(errs, errors.New("photos.max_file_size_mb must be positive"))
	}
	if c.Photos.MaxWidth <= 0 || c.Photos.MaxHeight <= 0 {
		errs = append(errs, errors.New("photos.max_width and photos.max_height must be positive"))
	}
	if c.Photos.JPEGQuality < 1 || c.Photos.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("photos.jpeg_quality %d out of range 1-100", c.Photos.JPEGQuality))
	}
	if c.IsProduction() && c.Auth.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetReadTimeout returns the read timeout as a duration
func (c *ServerConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// MaxFileSize returns the per-file upload limit in bytes
func (c *PhotosConfig) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// GetTimeout returns the geocoding request timeout as a duration
func (c *GeocodingConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetResetTimeout returns how long the geocoder stays paused after tripping
func (c *GeocodingConfig) GetResetTimeout() time.Duration {
	return time.Duration(c.ResetMinutes) * time.Minute
}

// GetSessionMaxAge returns the session lifetime in seconds
func (c *AuthConfig) GetSessionMaxAge() int {
	return c.SessionMaxAgeHours * 3600
}

func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	if configValue != "" {
		return configValue
	}
	return defaultValue
}

func getEnvInt(envKey string, fallback int) int {
	value := os.Getenv(envKey)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
