// Package source defines how a remote dataset resource is acquired.
package source

import "context"

// Fetcher retrieves the raw bytes of a remote resource.
type Fetcher interface {
	// Fetch returns the full response body for url. A single attempt is
	// made; failures are returned marked with their failure kind.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
