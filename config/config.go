// Package config loads storefront settings.
//
// Precedence, lowest to highest: Default(), an optional YAML file, then
// environment variables. Validate is called last.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port        int           `yaml:"port"`
	DatabaseURL string        `yaml:"database_url"`
	RedisURL    string        `yaml:"redis_url"`
	SiteOrigin  string        `yaml:"site_origin"`
	SeedCatalog bool          `yaml:"seed_catalog"`
	CartTTL     time.Duration `yaml:"cart_ttl"`

	HTTP    HTTPConfig    `yaml:"http"`
	SMTP    SMTPConfig    `yaml:"smtp"`
	Worker  WorkerConfig  `yaml:"worker"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	FromName string `yaml:"from_name"`
	// Verify opens and closes a connection before each send.
	Verify bool `yaml:"verify"`
}

type WorkerConfig struct {
	Count          int           `yaml:"count"`
	DequeueTimeout time.Duration `yaml:"dequeue_timeout"`
	QueueKey       string        `yaml:"queue_key"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

func Default() *Config {
	return &Config{
		Port:       8082,
		SiteOrigin: "http://localhost:8082",
		CartTTL:    7 * 24 * time.Hour,
		HTTP: HTTPConfig{
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "Audiophile",
		},
		Worker: WorkerConfig{
			Count:          2,
			DequeueTimeout: 5 * time.Second,
			QueueKey:       "storefront:tasks",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			ServiceName: "storefront",
		},
	}
}

// Load builds the effective configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile overlays a YAML file onto c. Keys missing from the file keep
// their current values.
func (c *Config) LoadFromFile(path string) error {
	clean := filepath.Clean(path)
	ext := filepath.Ext(clean)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config file extension %q: %w", ext, ErrInvalidConfig)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", clean, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %v: %w", clean, err, ErrInvalidConfig)
	}
	return nil
}

// LoadFromEnv overlays environment variables onto c. Malformed numbers,
// durations and booleans are reported rather than silently ignored.
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		} else {
			errs = append(errs, fmt.Errorf("PORT: %w", err))
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("SITE_ORIGIN"); v != "" {
		c.SiteOrigin = v
	}
	if v := os.Getenv("SEED_CATALOG"); v != "" {
		c.SeedCatalog = parseBool(v)
	}
	if v := os.Getenv("CART_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CartTTL = d
		} else {
			errs = append(errs, fmt.Errorf("CART_TTL: %w", err))
		}
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		} else {
			errs = append(errs, fmt.Errorf("SMTP_PORT: %w", err))
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_VERIFY"); v != "" {
		c.SMTP.Verify = parseBool(v)
	}
	if v := os.Getenv("MAIL_FROM_NAME"); v != "" {
		c.SMTP.FromName = v
	}

	if v := os.Getenv("WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Worker.Count = n
		} else {
			errs = append(errs, fmt.Errorf("WORKER_COUNT: %w", err))
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		c.Tracing.Enabled = parseBool(v)
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		c.Tracing.ServiceName = v
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: %w", c.Port, ErrInvalidConfig)
	}
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid smtp port %d: %w", c.SMTP.Port, ErrInvalidConfig)
	}
	if c.SiteOrigin == "" {
		return fmt.Errorf("site origin is required: %w", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.SiteOrigin, "http://") && !strings.HasPrefix(c.SiteOrigin, "https://") {
		return fmt.Errorf("site origin %q must be an http(s) URL: %w", c.SiteOrigin, ErrInvalidConfig)
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be positive: %w", ErrInvalidConfig)
	}
	return nil
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return ":" + strconv.Itoa(c.Port)
}

// MailEnabled reports whether enough SMTP settings exist to attempt a send.
func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.Port > 0
}

// parseBool accepts true, 1, yes and on (case-insensitive).
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
