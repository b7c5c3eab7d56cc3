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
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	Google    GoogleConfig
	Gmail     GmailConfig
	Extractor ExtractorConfig
	Session   SessionConfig
	Raster    RasterConfig
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

// JWTConfig holds session token signing settings.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// S3Config holds object storage settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GoogleConfig holds the OAuth client used for the Google sign-in flow.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// GmailConfig holds invoice email search settings.
type GmailConfig struct {
	Query      string `mapstructure:"query"`
	MaxResults int64  `mapstructure:"max_results"`
}

// ExtractorConfig holds multimodal extraction endpoint settings.
type ExtractorConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// SessionConfig holds server-side session settings.
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RasterConfig holds PDF rasterization settings.
type RasterConfig struct {
	Pdftoppm string `mapstructure:"pdftoppm"`
	DPI      int    `mapstructure:"dpi"`
}

// Load reads configuration from environment variables with the AUTOINVOICE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AUTOINVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "autoinvoice")
	v.SetDefault("db.password", "autoinvoice_secret")
	v.SetDefault("db.name", "autoinvoice_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "autoinvoice")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "invoice-files")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.public_base_url", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Google OAuth defaults
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "http://localhost:8080/api/v1/auth/google/callback")

	// Gmail search defaults
	v.SetDefault("gmail.query", "subject:invoice has:attachment newer_than:30d")
	v.SetDefault("gmail.max_results", 10)

	// Extractor defaults
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.model", "openai/gpt-4o-mini")
	v.SetDefault("extractor.endpoint", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("extractor.timeout_secs", 120)

	// Session defaults
	v.SetDefault("session.ttl", "168h")

	// Raster defaults
	v.SetDefault("raster.pdftoppm", "pdftoppm")
	v.SetDefault("raster.dpi", 150)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":            "AUTOINVOICE_SERVER_PORT",
		"server.read_timeout":    "AUTOINVOICE_SERVER_READ_TIMEOUT",
		"server.write_timeout":   "AUTOINVOICE_SERVER_WRITE_TIMEOUT",
		"server.environment":     "AUTOINVOICE_SERVER_ENVIRONMENT",
		"db.host":                "AUTOINVOICE_DB_HOST",
		"db.port":                "AUTOINVOICE_DB_PORT",
		"db.user":                "AUTOINVOICE_DB_USER",
		"db.password":            "AUTOINVOICE_DB_PASSWORD",
		"db.name":                "AUTOINVOICE_DB_NAME",
		"db.sslmode":             "AUTOINVOICE_DB_SSLMODE",
		"db.max_open":            "AUTOINVOICE_DB_MAX_OPEN",
		"db.max_idle":            "AUTOINVOICE_DB_MAX_IDLE",
		"jwt.secret":             "AUTOINVOICE_JWT_SECRET",
		"jwt.expiry":             "AUTOINVOICE_JWT_EXPIRY",
		"jwt.issuer":             "AUTOINVOICE_JWT_ISSUER",
		"s3.region":              "AUTOINVOICE_S3_REGION",
		"s3.bucket":              "AUTOINVOICE_S3_BUCKET",
		"s3.endpoint":            "AUTOINVOICE_S3_ENDPOINT",
		"s3.public_base_url":     "AUTOINVOICE_S3_PUBLIC_BASE_URL",
		"s3.access_key":          "AUTOINVOICE_S3_ACCESS_KEY",
		"s3.secret_key":          "AUTOINVOICE_S3_SECRET_KEY",
		"s3.presign_expiry":      "AUTOINVOICE_S3_PRESIGN_EXPIRY",
		"log.level":              "AUTOINVOICE_LOG_LEVEL",
		"log.format":             "AUTOINVOICE_LOG_FORMAT",
		"cors.allowed_origins":   "AUTOINVOICE_CORS_ALLOWED_ORIGINS",
		"google.client_id":       "AUTOINVOICE_GOOGLE_CLIENT_ID",
		"google.client_secret":   "AUTOINVOICE_GOOGLE_CLIENT_SECRET",
		"google.redirect_url":    "AUTOINVOICE_GOOGLE_REDIRECT_URL",
		"gmail.query":            "AUTOINVOICE_GMAIL_QUERY",
		"gmail.max_results":      "AUTOINVOICE_GMAIL_MAX_RESULTS",
		"extractor.api_key":      "AUTOINVOICE_EXTRACTOR_API_KEY",
		"extractor.model":        "AUTOINVOICE_EXTRACTOR_MODEL",
		"extractor.endpoint":     "AUTOINVOICE_EXTRACTOR_ENDPOINT",
		"extractor.timeout_secs": "AUTOINVOICE_EXTRACTOR_TIMEOUT_SECS",
		"session.ttl":            "AUTOINVOICE_SESSION_TTL",
		"raster.pdftoppm":        "AUTOINVOICE_RASTER_PDFTOPPM",
		"raster.dpi":             "AUTOINVOICE_RASTER_DPI",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if AUTOINVOICE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("AUTOINVOICE_SERVER_PORT") == "" {
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
		Secret: v.GetString("jwt.secret"),
		Expiry: v.GetDuration("jwt.expiry"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		PublicBaseURL: v.GetString("s3.public_base_url"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
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
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Google = GoogleConfig{
		ClientID:     v.GetString("google.client_id"),
		ClientSecret: v.GetString("google.client_secret"),
		RedirectURL:  v.GetString("google.redirect_url"),
	}
	cfg.Gmail = GmailConfig{
		Query:      v.GetString("gmail.query"),
		MaxResults: v.GetInt64("gmail.max_results"),
	}
	cfg.Extractor = ExtractorConfig{
		APIKey:      v.GetString("extractor.api_key"),
		Model:       v.GetString("extractor.model"),
		Endpoint:    v.GetString("extractor.endpoint"),
		TimeoutSecs: v.GetInt("extractor.timeout_secs"),
	}
	cfg.Session = SessionConfig{
		TTL: v.GetDuration("session.ttl"),
	}
	cfg.Raster = RasterConfig{
		Pdftoppm: v.GetString("raster.pdftoppm"),
		DPI:      v.GetInt("raster.dpi"),
	}

	return cfg, nil
}
