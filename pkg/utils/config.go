package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const EnvProduction = "production"

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Email    EmailConfig
	Reset    ResetConfig
	CORS     CORSConfig
	Cleanup  CleanupConfig
}

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Debug   bool
	LogPath string
}

// IsProduction reports whether dev-only conveniences must be suppressed.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, EnvProduction)
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

type EmailConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	ResendAPIKey string
}

type ResetConfig struct {
	CodeLength        int
	ExpiryMinutes     int
	MaxAttempts       int
	MinPasswordLength int
	BcryptCost        int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// CleanupConfig drives the background purge of stale reset codes and
// sessions. Retention is counted from a row's expiry.
type CleanupConfig struct {
	Enabled        bool
	Schedule       string
	RetentionHours int
}

// LoadConfig reads .env from the working directory, falling back to the
// process environment when the file is absent.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "storefront")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("MAIL_DRIVER", "smtp")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("RESET_CODE_LENGTH", 6)
	v.SetDefault("RESET_EXPIRY_MINUTES", 10)
	v.SetDefault("RESET_MAX_ATTEMPTS", 5)
	v.SetDefault("RESET_MIN_PASSWORD", 6)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CLEANUP_ENABLED", true)
	v.SetDefault("CLEANUP_SCHEDULE", "@hourly")
	v.SetDefault("CLEANUP_RETENTION_HOURS", 24)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Env:     v.GetString("APP_ENV"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASS"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Email: EmailConfig{
			Driver:       strings.ToLower(strings.TrimSpace(v.GetString("MAIL_DRIVER"))),
			Host:         v.GetString("SMTP_HOST"),
			Port:         v.GetInt("SMTP_PORT"),
			User:         v.GetString("SMTP_USER"),
			Password:     v.GetString("SMTP_PASS"),
			From:         v.GetString("EMAIL_FROM"),
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
		},
		Reset: ResetConfig{
			CodeLength:        v.GetInt("RESET_CODE_LENGTH"),
			ExpiryMinutes:     v.GetInt("RESET_EXPIRY_MINUTES"),
			MaxAttempts:       v.GetInt("RESET_MAX_ATTEMPTS"),
			MinPasswordLength: v.GetInt("RESET_MIN_PASSWORD"),
			BcryptCost:        v.GetInt("BCRYPT_COST"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Cleanup: CleanupConfig{
			Enabled:        v.GetBool("CLEANUP_ENABLED"),
			Schedule:       v.GetString("CLEANUP_SCHEDULE"),
			RetentionHours: v.GetInt("CLEANUP_RETENTION_HOURS"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the reset workflow cannot run with.
func (c *Config) Validate() error {
	if c.Reset.CodeLength != 6 {
		return fmt.Errorf("RESET_CODE_LENGTH must be 6, got %d", c.Reset.CodeLength)
	}
	if c.Reset.ExpiryMinutes <= 0 {
		return fmt.Errorf("RESET_EXPIRY_MINUTES must be positive, got %d", c.Reset.ExpiryMinutes)
	}
	if c.Reset.MaxAttempts < 0 {
		return fmt.Errorf("RESET_MAX_ATTEMPTS must not be negative, got %d", c.Reset.MaxAttempts)
	}
	if c.Reset.MinPasswordLength < 1 {
		return fmt.Errorf("RESET_MIN_PASSWORD must be positive, got %d", c.Reset.MinPasswordLength)
	}
	if c.Reset.BcryptCost < bcrypt.MinCost || c.Reset.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Reset.BcryptCost)
	}
	if c.Cleanup.Enabled && c.Cleanup.RetentionHours <= 0 {
		return fmt.Errorf("CLEANUP_RETENTION_HOURS must be positive, got %d", c.Cleanup.RetentionHours)
	}
	switch c.Email.Driver {
	case "smtp", "resend", "none", "":
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Email.Driver)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
