package config

// Mirror configuration types

type Config struct {
	Endpoints []Endpoint `yaml:"endpoints"`
	Settings  Settings   `yaml:"settings"`
}

// Endpoint is one fetch candidate, tried in file order. Insecure disables TLS
// certificate verification for this endpoint only.
type Endpoint struct {
	URL      string `yaml:"url"`
	Insecure bool   `yaml:"insecure"`
}

type Settings struct {
	RetentionDays     int     `yaml:"retention_days"`
	MaxAttempts       int     `yaml:"max_attempts"` // attempts per endpoint
	BackoffBase       float64 `yaml:"backoff_base"` // delay between attempts is base^attempt seconds
	Timeout           int     `yaml:"timeout"`      // seconds, per request
	OutFile           string  `yaml:"out_file"`
	RetryableStatuses []int   `yaml:"retryable_statuses"`
}
