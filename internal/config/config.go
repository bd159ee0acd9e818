// Package config loads clipd settings from the environment or a config file.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full clipd configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	PDF      PDFConfig      `yaml:"pdf"`
	Redis    RedisConfig    `yaml:"redis"`
}

type DatabaseConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-default:"sqlite:///clipd.db" env-description:"database connection string (sqlite:///path or postgres://...)"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"PORT" env-default:"5000"`
	MaxPerPage      int           `yaml:"max_per_page" env:"CLIPD_MAX_PER_PAGE" env-default:"1000"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CLIPD_CORS_ORIGINS" env-default:"*" env-separator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"CLIPD_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Address returns host:port for net.Listen.
func (c *HTTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"CLIPD_LOG_LEVEL" env-default:"info"`
	Pretty bool   `yaml:"pretty" env:"CLIPD_PRETTY_LOG" env-default:"true"`
}

// PDFConfig configures the headless Chrome used for PDF exports.
type PDFConfig struct {
	ChromePath string        `yaml:"chrome_path" env:"CLIPD_CHROME_PATH"`
	Timeout    time.Duration `yaml:"timeout" env:"CLIPD_PDF_TIMEOUT" env-default:"30s"`
}

// RedisConfig configures the optional tag-count cache. An empty Addr
// disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"CLIPD_REDIS_ADDR"`
	Password string        `yaml:"password" env:"CLIPD_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"CLIPD_REDIS_DB" env-default:"0"`
	TagsTTL  time.Duration `yaml:"tags_ttl" env:"CLIPD_TAGS_TTL" env-default:"5m"`
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Load reads the configuration. When path is non-empty the file is read
// first and environment variables override it.
func Load(path string) (*Config, error) {
	var cfg Config

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.HTTP.Port)
	}
	if c.HTTP.MaxPerPage < 1 {
		return fmt.Errorf("max per page must be positive, got %d", c.HTTP.MaxPerPage)
	}
	if c.PDF.Timeout <= 0 {
		return fmt.Errorf("pdf timeout must be positive, got %s", c.PDF.Timeout)
	}
	return nil
}

// Usage returns a description of every supported environment variable.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
