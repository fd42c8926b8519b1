// Package httpsource fetches a dataset with a single bounded HTTP GET.
package httpsource

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"openml-schema-check/internal/failure"
	"openml-schema-check/internal/observability/logging"
)

const (
	// DefaultTimeout bounds the whole request, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodyBytes caps how much of a response is buffered in memory.
	DefaultMaxBodyBytes int64 = 512 << 20
)

// Config holds fetcher settings.
type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

// DefaultConfig returns the fixed fetch bounds.
func DefaultConfig() Config {
	return Config{
		Timeout:      DefaultTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		UserAgent:    "openml-schema-check",
	}
}

// Fetcher implements source.Fetcher over net/http.
type Fetcher struct {
	client *http.Client
	cfg    Config
	logger zerolog.Logger
}

// New creates a fetcher. Zero values in cfg fall back to defaults.
func New(cfg Config) *Fetcher {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logging.WithComponent("httpsource"),
	}
}

// Fetch issues one GET to url. There are no retries.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, failure.Network(err, "build request for %s", url)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, failure.Canceled(err, "GET %s", url)
		}
		return nil, failure.Network(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, failure.Network(&failure.HTTPStatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}, "fetch")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, failure.Canceled(err, "read body of %s", url)
		}
		return nil, failure.Network(err, "read body of %s", url)
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		return nil, failure.ResourceExhausted(
			errors.Newf("response body exceeds %d bytes", f.cfg.MaxBodyBytes),
			"read body of %s", url)
	}

	f.logger.Debug().
		Str("url", url).
		Int("statusCode", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched resource")

	return body, nil
}
