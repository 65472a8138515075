package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all Tokalator configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig defines HTTP API settings.
type ServerConfig struct {
	Listen         string          `mapstructure:"listen"`
	BasePath       string          `mapstructure:"base_path"`
	ReadTimeout    time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration   `mapstructure:"write_timeout"`
	MaxUploadBytes int64           `mapstructure:"max_upload_bytes"`
	MaxTextBytes   int64           `mapstructure:"max_text_bytes"`
	CORS           CORSConfig      `mapstructure:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig defines the per-client token bucket. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// PricingConfig defines pricing data settings.
type PricingConfig struct {
	Dir string `mapstructure:"dir"`
}

// StorageConfig defines the optional import history database.
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultAllowedOrigins are the site origins served by the API.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"https://tokalator.wiki",
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".tokalator"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("server.listen", ":8000")
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.max_upload_bytes", 10*1024*1024) // 10 MB
	v.SetDefault("server.max_text_bytes", 1024*1024)
	v.SetDefault("server.cors.allowed_origins", DefaultAllowedOrigins)
	v.SetDefault("server.rate_limit.rps", 10)
	v.SetDefault("server.rate_limit.burst", 20)
	v.SetDefault("pricing.dir", "")
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.path", filepath.Join(home, ".tokalator", "tokalator.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("TOKALATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen is required"))
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path %q must start with /", c.Server.BasePath))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Server.MaxTextBytes <= 0 {
		errs = append(errs, errors.New("server.max_text_bytes must be positive"))
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("server.rate_limit.burst must be at least 1"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or text", c.Logging.Format))
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required when storage is enabled"))
	}
	return errors.Join(errs...)
}
