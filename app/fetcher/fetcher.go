package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Endpoint is one fetch candidate. Insecure disables TLS certificate
// verification for this endpoint only; endpoints marked verified always get a
// verifying client.
type Endpoint struct {
	URL      string
	Insecure bool
}

// ExhaustedError reports that every endpoint and every attempt failed. It
// wraps the most recent underlying cause.
type ExhaustedError struct {
	Cause error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all feed endpoints exhausted: %v", e.Cause)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}

type Config struct {
	Endpoints         []Endpoint
	MaxAttempts       int     // attempts per endpoint, at least 1
	BackoffBase       float64 // delay before retry n is base^n seconds
	Timeout           time.Duration
	RetryableStatuses []int
	UserAgent         string
}

// Fetcher retrieves the raw feed body, trying each endpoint candidate in
// strict order with per-endpoint retries and exponential backoff.
type Fetcher struct {
	cfg Config

	verifiedClient *http.Client
	insecureClient *http.Client
}

func NewFetcher(cfg Config) *Fetcher {
	return &Fetcher{
		cfg:            cfg,
		verifiedClient: newClient(false, cfg.Timeout),
		insecureClient: newClient(true, cfg.Timeout),
	}
}

func newClient(insecure bool, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: insecure,
				MinVersion:         tls.VersionTLS12,
			},
			DisableKeepAlives: true,
		},
		Timeout: timeout,
	}
}

// Run fetches the feed. All retries against one endpoint are spent before the
// next endpoint is attempted; no backoff state carries over between
// endpoints. When every candidate fails the result is an *ExhaustedError and
// the caller must treat the run as failed without touching the store.
func (f *Fetcher) Run(ctx context.Context) ([]byte, error) {
	var lastErr error
	for _, endpoint := range f.cfg.Endpoints {
		data, err := f.fetchEndpoint(ctx, endpoint)
		if err == nil {
			return data, nil
		}
		lastErr = err
		slog.Warn("Endpoint exhausted, trying next candidate", "endpoint", endpoint.URL, "error", err)
	}

	return nil, &ExhaustedError{Cause: lastErr}
}

func (f *Fetcher) fetchEndpoint(ctx context.Context, endpoint Endpoint) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Duration(f.cfg.BackoffBase * float64(time.Second))
	bo.Multiplier = f.cfg.BackoffBase
	bo.RandomizationFactor = 0
	bo.MaxInterval = time.Hour

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		data, err := f.attempt(ctx, endpoint)
		if err != nil {
			slog.Warn("Fetch attempt failed",
				"endpoint", endpoint.URL,
				"attempt", attempt,
				"max_attempts", f.cfg.MaxAttempts,
				"error", err)
			return nil, err
		}
		return data, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(f.cfg.MaxAttempts)))
}

func (f *Fetcher) attempt(ctx context.Context, endpoint Endpoint) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", endpoint.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/rss+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Connection", "close")

	resp, err := f.client(endpoint).Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Statuses outside the transient set are retried all the same; this
		// system does not special-case permanent 4xx.
		if slices.Contains(f.cfg.RetryableStatuses, resp.StatusCode) {
			return nil, fmt.Errorf("transient HTTP status: %s", resp.Status)
		}
		return nil, fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (f *Fetcher) client(endpoint Endpoint) *http.Client {
	if endpoint.Insecure {
		return f.insecureClient
	}
	return f.verifiedClient
}
