package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"geohasher/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.0.0 Safari/537.36"

	// DefaultIndexURL is the WSJ historical-price download for the Dow Jones Industrial Average.
	DefaultIndexURL = "https://www.wsj.com/market-data/quotes/index/DJIA/historical-prices/download"

	// DefaultLookbackDays covers any realistic run of market closures.
	DefaultLookbackDays = 30
)

// Config holds every setting of the application.
// LoadConfig fills it from YAML and then lets environment variables override it.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Index struct {
		URL            string `yaml:"url"`
		UserAgent      string `yaml:"user_agent"`
		LookbackDays   int    `yaml:"lookback_days"`
		TimeoutSec     int    `yaml:"timeout_sec"`
		MaxRetries     int    `yaml:"max_retries"`
		RetryInitialMS int    `yaml:"retry_initial_ms"`
	} `yaml:"index"`

	Geohash struct {
		Precision     int `yaml:"precision"`
		DisplayDigits int `yaml:"display_digits"`
	} `yaml:"geohash"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration that works without any file.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "geohasher"
	cfg.App.Version = "1.0.0"

	cfg.Index.URL = DefaultIndexURL
	cfg.Index.UserAgent = DefaultUserAgent
	cfg.Index.LookbackDays = DefaultLookbackDays
	cfg.Index.TimeoutSec = 10
	cfg.Index.MaxRetries = 0
	cfg.Index.RetryInitialMS = 1000

	cfg.Geohash.Precision = 14
	cfg.Geohash.DisplayDigits = 5

	cfg.Logging.Level = "warn"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig reads the YAML file at path on top of DefaultConfig.
// A missing file is reported as ErrConfigNotFound.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.ConfigError{Field: path, Err: domain.ErrConfigNotFound}
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &domain.ConfigError{Field: path, Err: err}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadConfigOrDefault behaves like LoadConfig but falls back to DefaultConfig
// (with environment overrides) when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrConfigNotFound) {
		return nil, err
	}

	cfg = DefaultConfig()
	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment if present.
// Variables that are already set are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !hasPrefix(c.Index.URL, "http://") && !hasPrefix(c.Index.URL, "https://") {
		return &domain.ConfigError{Field: "index.url", Err: fmt.Errorf("must be an http(s) URL: %q", c.Index.URL)}
	}
	if c.Index.LookbackDays <= 0 {
		return &domain.ConfigError{Field: "index.lookback_days", Err: errors.New("must be positive")}
	}
	if c.Index.TimeoutSec <= 0 {
		return &domain.ConfigError{Field: "index.timeout_sec", Err: errors.New("must be positive")}
	}
	if c.Index.MaxRetries < 0 {
		return &domain.ConfigError{Field: "index.max_retries", Err: errors.New("must not be negative")}
	}
	if c.Index.MaxRetries > 0 && c.Index.RetryInitialMS <= 0 {
		return &domain.ConfigError{Field: "index.retry_initial_ms", Err: errors.New("must be positive when retries are enabled")}
	}
	if c.Geohash.Precision <= 0 {
		return &domain.ConfigError{Field: "geohash.precision", Err: errors.New("must be positive")}
	}
	if c.Geohash.DisplayDigits <= 0 {
		return &domain.ConfigError{Field: "geohash.display_digits", Err: errors.New("must be positive")}
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overwrites settings with environment variables when they are set.
func overrideWithEnv(cfg *Config) error {
	if url := os.Getenv("GEOHASHER_INDEX_URL"); url != "" {
		cfg.Index.URL = url
	}
	if ua := os.Getenv("GEOHASHER_USER_AGENT"); ua != "" {
		cfg.Index.UserAgent = ua
	}
	if level := os.Getenv("GEOHASHER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if dir, ok := os.LookupEnv("GEOHASHER_LOG_DIR"); ok {
		cfg.Logging.Dir = dir
	}
	if p := os.Getenv("GEOHASHER_PRECISION"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return &domain.ConfigError{Field: "GEOHASHER_PRECISION", Err: err}
		}
		cfg.Geohash.Precision = n
	}
	return nil
}
