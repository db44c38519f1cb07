package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Canvas CanvasConfig
	OCR    OCRConfig
	Scan   ScanConfig
	Queue  QueueConfig
	Email  EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds token signing settings for caregiver sessions and
// one-click assignment links.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	AssignTokenExpiry  time.Duration `mapstructure:"assign_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds settings for the scan image archive.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// CanvasConfig holds Canvas API settings.
type CanvasConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AccessToken string `mapstructure:"access_token"`
	PerPage     int    `mapstructure:"per_page"`
}

// OCRConfig holds Mistral OCR provider settings.
type OCRConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ScanConfig holds reconciliation settings.
type ScanConfig struct {
	MaxFileSizeMB    int64 `mapstructure:"max_file_size_mb"`
	CandidateWindow  int   `mapstructure:"candidate_window_days"`
	RecentWindowDays int   `mapstructure:"recent_window_days"`
}

// QueueConfig holds scan queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// PollInterval returns the poll interval as a duration.
func (q *QueueConfig) PollInterval() time.Duration {
	return time.Duration(q.PollIntervalSecs) * time.Second
}

// EmailConfig holds notification delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	NotifyTo    string `mapstructure:"notify_to"`
	BaseURL     string `mapstructure:"base_url"`
}

// Load reads configuration from environment variables with the CANVAS_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CANVAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "canvas")
	v.SetDefault("db.password", "canvas_secret")
	v.SetDefault("db.name", "canvas_parent")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.assign_expiry", "72h")
	v.SetDefault("jwt.issuer", "canvas-parent-cli")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "canvas-parent-scans")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Canvas defaults
	v.SetDefault("canvas.base_url", "https://canvas.instructure.com")
	v.SetDefault("canvas.access_token", "")
	v.SetDefault("canvas.per_page", 100)

	// OCR defaults
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.model", "mistral-ocr-latest")
	v.SetDefault("ocr.timeout_secs", 60)

	// Scan defaults
	v.SetDefault("scan.max_file_size_mb", 25)
	v.SetDefault("scan.candidate_window_days", 14)
	v.SetDefault("scan.recent_window_days", 30)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.concurrency", 3)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@example.com")
	v.SetDefault("email.from_name", "Canvas Parent")
	v.SetDefault("email.notify_to", "")
	v.SetDefault("email.base_url", "http://localhost:8080")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "CANVAS_SERVER_PORT",
		"server.read_timeout":        "CANVAS_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "CANVAS_SERVER_WRITE_TIMEOUT",
		"server.environment":         "CANVAS_SERVER_ENVIRONMENT",
		"db.host":                    "CANVAS_DB_HOST",
		"db.port":                    "CANVAS_DB_PORT",
		"db.user":                    "CANVAS_DB_USER",
		"db.password":                "CANVAS_DB_PASSWORD",
		"db.name":                    "CANVAS_DB_NAME",
		"db.sslmode":                 "CANVAS_DB_SSLMODE",
		"db.max_open":                "CANVAS_DB_MAX_OPEN",
		"db.max_idle":                "CANVAS_DB_MAX_IDLE",
		"jwt.secret":                 "CANVAS_JWT_SECRET",
		"jwt.access_expiry":          "CANVAS_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":         "CANVAS_JWT_REFRESH_EXPIRY",
		"jwt.assign_expiry":          "CANVAS_JWT_ASSIGN_EXPIRY",
		"jwt.issuer":                 "CANVAS_JWT_ISSUER",
		"s3.region":                  "CANVAS_S3_REGION",
		"s3.bucket":                  "CANVAS_S3_BUCKET",
		"s3.endpoint":                "CANVAS_S3_ENDPOINT",
		"s3.access_key":              "CANVAS_S3_ACCESS_KEY",
		"s3.secret_key":              "CANVAS_S3_SECRET_KEY",
		"s3.presign_expiry":          "CANVAS_S3_PRESIGN_EXPIRY",
		"canvas.base_url":            "CANVAS_CANVAS_BASE_URL",
		"canvas.access_token":        "CANVAS_CANVAS_ACCESS_TOKEN",
		"canvas.per_page":            "CANVAS_CANVAS_PER_PAGE",
		"ocr.api_key":                "CANVAS_OCR_API_KEY",
		"ocr.model":                  "CANVAS_OCR_MODEL",
		"ocr.timeout_secs":           "CANVAS_OCR_TIMEOUT_SECS",
		"scan.max_file_size_mb":      "CANVAS_SCAN_MAX_FILE_SIZE_MB",
		"scan.candidate_window_days": "CANVAS_SCAN_CANDIDATE_WINDOW_DAYS",
		"scan.recent_window_days":    "CANVAS_SCAN_RECENT_WINDOW_DAYS",
		"queue.poll_interval_secs":   "CANVAS_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":          "CANVAS_QUEUE_CONCURRENCY",
		"email.provider":             "CANVAS_EMAIL_PROVIDER",
		"email.region":               "CANVAS_EMAIL_REGION",
		"email.from_address":         "CANVAS_EMAIL_FROM_ADDRESS",
		"email.from_name":            "CANVAS_EMAIL_FROM_NAME",
		"email.notify_to":            "CANVAS_EMAIL_NOTIFY_TO",
		"email.base_url":             "CANVAS_EMAIL_BASE_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CANVAS_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CANVAS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		AssignTokenExpiry:  v.GetDuration("jwt.assign_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Canvas = CanvasConfig{
		BaseURL:     v.GetString("canvas.base_url"),
		AccessToken: v.GetString("canvas.access_token"),
		PerPage:     v.GetInt("canvas.per_page"),
	}
	cfg.OCR = OCRConfig{
		APIKey:      v.GetString("ocr.api_key"),
		Model:       v.GetString("ocr.model"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.Scan = ScanConfig{
		MaxFileSizeMB:    v.GetInt64("scan.max_file_size_mb"),
		CandidateWindow:  v.GetInt("scan.candidate_window_days"),
		RecentWindowDays: v.GetInt("scan.recent_window_days"),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		NotifyTo:    v.GetString("email.notify_to"),
		BaseURL:     v.GetString("email.base_url"),
	}

	return cfg, nil
}
