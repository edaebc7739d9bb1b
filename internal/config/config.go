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
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Upload   UploadConfig
	Pipeline PipelineConfig
	CORS     CORSConfig
	Log      LogConfig
	DB       DBConfig
	Archive  ArchiveConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// OCRConfig holds LLMWhisperer document extraction settings.
type OCRConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxPolls     int           `mapstructure:"max_polls"`
	TimeoutSecs  int           `mapstructure:"timeout_secs"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// LLMConfig holds the structuring model settings.
type LLMConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"default_model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	MaxRetries  int    `mapstructure:"max_retries"`
}

// UploadConfig holds limits applied before any upstream call.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// PipelineConfig holds orchestrator-level settings. The timeout spans all
// stages of one request, independent of each client's per-call timeout.
type PipelineConfig struct {
	TimeoutSecs int `mapstructure:"timeout_secs"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DBConfig holds PostgreSQL settings for the optional extraction audit log.
// The audit log is disabled unless enabled is set.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
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

// ArchiveConfig holds S3 settings for optional original-document archival.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Load reads configuration from environment variables with the INVOX_ prefix.
// Missing OCR or LLM API keys are a fatal configuration error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "360s")
	v.SetDefault("server.environment", "development")

	// OCR defaults (LLMWhisperer v2)
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.base_url", "https://llmwhisperer-api.us-central.unstract.com/api/v2")
	v.SetDefault("ocr.poll_interval", "2s")
	v.SetDefault("ocr.max_polls", 150)
	v.SetDefault("ocr.timeout_secs", 60)
	v.SetDefault("ocr.max_retries", 3)

	// LLM defaults
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.default_model", "gpt-4o")
	v.SetDefault("llm.timeout_secs", 300)
	v.SetDefault("llm.max_retries", 2)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 25)

	// Pipeline defaults
	v.SetDefault("pipeline.timeout_secs", 600)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// DB defaults (audit log off unless enabled)
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invox")
	v.SetDefault("db.password", "invox_secret")
	v.SetDefault("db.name", "invox_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Archive defaults (off unless enabled)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "invox-archive")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")
	v.SetDefault("archive.key_prefix", "invoices")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "INVOX_SERVER_PORT",
		"server.read_timeout":     "INVOX_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "INVOX_SERVER_WRITE_TIMEOUT",
		"server.environment":      "INVOX_SERVER_ENVIRONMENT",
		"ocr.api_key":             "INVOX_OCR_API_KEY",
		"ocr.base_url":            "INVOX_OCR_BASE_URL",
		"ocr.poll_interval":       "INVOX_OCR_POLL_INTERVAL",
		"ocr.max_polls":           "INVOX_OCR_MAX_POLLS",
		"ocr.timeout_secs":        "INVOX_OCR_TIMEOUT_SECS",
		"ocr.max_retries":         "INVOX_OCR_MAX_RETRIES",
		"llm.api_key":             "INVOX_LLM_API_KEY",
		"llm.default_model":       "INVOX_LLM_DEFAULT_MODEL",
		"llm.timeout_secs":        "INVOX_LLM_TIMEOUT_SECS",
		"llm.max_retries":         "INVOX_LLM_MAX_RETRIES",
		"upload.max_file_size_mb": "INVOX_UPLOAD_MAX_FILE_SIZE_MB",
		"pipeline.timeout_secs":   "INVOX_PIPELINE_TIMEOUT_SECS",
		"cors.allowed_origins":    "INVOX_CORS_ALLOWED_ORIGINS",
		"log.level":               "INVOX_LOG_LEVEL",
		"log.format":              "INVOX_LOG_FORMAT",
		"db.enabled":              "INVOX_DB_ENABLED",
		"db.host":                 "INVOX_DB_HOST",
		"db.port":                 "INVOX_DB_PORT",
		"db.user":                 "INVOX_DB_USER",
		"db.password":             "INVOX_DB_PASSWORD",
		"db.name":                 "INVOX_DB_NAME",
		"db.sslmode":              "INVOX_DB_SSLMODE",
		"db.max_open":             "INVOX_DB_MAX_OPEN",
		"db.max_idle":             "INVOX_DB_MAX_IDLE",
		"archive.enabled":         "INVOX_ARCHIVE_ENABLED",
		"archive.region":          "INVOX_ARCHIVE_REGION",
		"archive.bucket":          "INVOX_ARCHIVE_BUCKET",
		"archive.endpoint":        "INVOX_ARCHIVE_ENDPOINT",
		"archive.access_key":      "INVOX_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":      "INVOX_ARCHIVE_SECRET_KEY",
		"archive.key_prefix":      "INVOX_ARCHIVE_KEY_PREFIX",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	// Legacy env names from the pre-Go deployment keep working so existing
	// environments need no changes.
	if key := os.Getenv("LLMWHISPERER_API_KEY"); key != "" && os.Getenv("INVOX_OCR_API_KEY") == "" {
		v.Set("ocr.api_key", key)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && os.Getenv("INVOX_LLM_API_KEY") == "" {
		v.Set("llm.api_key", key)
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" && os.Getenv("INVOX_CORS_ALLOWED_ORIGINS") == "" {
		v.Set("cors.allowed_origins", origins)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVOX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.OCR = OCRConfig{
		APIKey:       v.GetString("ocr.api_key"),
		BaseURL:      strings.TrimSuffix(v.GetString("ocr.base_url"), "/"),
		PollInterval: v.GetDuration("ocr.poll_interval"),
		MaxPolls:     v.GetInt("ocr.max_polls"),
		TimeoutSecs:  v.GetInt("ocr.timeout_secs"),
		MaxRetries:   v.GetInt("ocr.max_retries"),
	}
	cfg.LLM = LLMConfig{
		APIKey:      v.GetString("llm.api_key"),
		Model:       v.GetString("llm.default_model"),
		TimeoutSecs: v.GetInt("llm.timeout_secs"),
		MaxRetries:  v.GetInt("llm.max_retries"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Pipeline = PipelineConfig{
		TimeoutSecs: v.GetInt("pipeline.timeout_secs"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Archive = ArchiveConfig{
		Enabled:   v.GetBool("archive.enabled"),
		Region:    v.GetString("archive.region"),
		Bucket:    v.GetString("archive.bucket"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
		KeyPrefix: v.GetString("archive.key_prefix"),
	}

	return cfg, nil
}

// Validate checks the settings the pipeline cannot run without. Both upstream
// API keys are required; their absence is a startup-fatal error for the
// server (tooling like the migration runner does not need them).
func (c *Config) Validate() error {
	if c.OCR.APIKey == "" {
		return fmt.Errorf("OCR API key is required (set INVOX_OCR_API_KEY or LLMWHISPERER_API_KEY)")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required (set INVOX_LLM_API_KEY or OPENAI_API_KEY)")
	}
	return nil
}
