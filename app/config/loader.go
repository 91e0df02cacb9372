package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultPrimaryURL  = "https://www.otcmarkets.com/syndicate/rss.xml"
	defaultFallbackURL = "http://www.otcmarkets.com/syndicate/rss.xml"

	defaultRetentionDays = 4
	defaultMaxAttempts   = 6
	defaultBackoffBase   = 2.0
	defaultTimeout       = 30 // seconds
	defaultOutFile       = "data/rss_latest.txt"
)

// Load reads the mirror configuration file at path. A missing file is not an
// error; the built-in defaults (the canonical feed with its HTTP fallback)
// apply instead.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Debug("Mirror configuration file not found, using defaults", "path", path)
		config := &Config{}
		setDefaults(config)
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

// setDefaults applies default values to configuration
func setDefaults(config *Config) {
	if len(config.Endpoints) == 0 {
		config.Endpoints = []Endpoint{
			{URL: defaultPrimaryURL},
			{URL: defaultFallbackURL},
		}
	}
	if config.Settings.RetentionDays == 0 {
		config.Settings.RetentionDays = defaultRetentionDays
	}
	if config.Settings.MaxAttempts == 0 {
		config.Settings.MaxAttempts = defaultMaxAttempts
	}
	if config.Settings.BackoffBase == 0 {
		config.Settings.BackoffBase = defaultBackoffBase
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = defaultTimeout
	}
	if config.Settings.OutFile == "" {
		config.Settings.OutFile = defaultOutFile
	}
	if config.Settings.RetryableStatuses == nil {
		config.Settings.RetryableStatuses = []int{429, 500, 502, 503, 504}
	}
}

// validate validates the configuration
func validate(config *Config) error {
	for i, endpoint := range config.Endpoints {
		if endpoint.URL == "" {
			return fmt.Errorf("endpoint at index %d has no URL", i)
		}
		parsed, err := url.Parse(endpoint.URL)
		if err != nil {
			return fmt.Errorf("endpoint at index %d has an invalid URL: %w", i, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("endpoint at index %d must use http or https, got %q", i, parsed.Scheme)
		}
	}

	if config.Settings.RetentionDays < 1 {
		return fmt.Errorf("retention days must be at least 1")
	}
	if config.Settings.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}
	if config.Settings.BackoffBase < 1 {
		return fmt.Errorf("backoff base must be at least 1")
	}
	if config.Settings.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second")
	}

	return nil
}
