// Package mock provides a scripted fetcher for exercising the pipeline
// without network access.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"openml-schema-check/internal/failure"
)

// Fetcher implements source.Fetcher with a canned response.
type Fetcher struct {
	Body  []byte        // Returned on success
	Err   error         // Returned instead of Body when set
	Delay time.Duration // Simulated latency before responding

	mu    sync.Mutex
	calls []string
}

// WithBody returns a fetcher that always yields body.
func WithBody(body []byte) *Fetcher {
	return &Fetcher{Body: body}
}

// WithError returns a fetcher that always fails with err.
func WithError(err error) *Fetcher {
	return &Fetcher{Err: err}
}

// Fetch records the call and returns the scripted response. A Delay longer
// than the context deadline behaves like a request timeout, and a context
// canceled during the Delay behaves like an aborted request.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if f.Delay > 0 {
		timer := time.NewTimer(f.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, failure.Canceled(ctx.Err(), "GET %s", url)
			}
			return nil, failure.Network(ctx.Err(), "GET %s", url)
		}
	}

	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]byte, len(f.Body))
	copy(out, f.Body)
	return out, nil
}

// Calls returns the URLs fetched so far.
func (f *Fetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
