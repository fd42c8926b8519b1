package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

// Pusher sends a registry's metrics to a Prometheus Pushgateway. A run is a
// short-lived batch job with nothing to scrape, so metrics are pushed once
// when it finishes.
type Pusher struct {
	pusher  *push.Pusher
	url     string
	enabled bool
}

// NewPusher creates a pusher for job. An empty url disables pushing.
func NewPusher(url, job string, g prometheus.Gatherer) *Pusher {
	if url == "" {
		log.Debug().Msg("Pushgateway not configured, metrics push disabled")
		return &Pusher{}
	}
	p := push.New(url, job).
		Gatherer(g).
		Client(&http.Client{Timeout: 10 * time.Second})
	return &Pusher{pusher: p, url: url, enabled: true}
}

// Enabled reports whether metrics will be pushed.
func (p *Pusher) Enabled() bool {
	return p.enabled
}

// Push replaces the job's metric group on the gateway.
func (p *Pusher) Push(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	if err := p.pusher.PushContext(ctx); err != nil {
		log.Warn().Err(err).Str("url", p.url).Msg("Failed to push metrics")
		return err
	}
	log.Debug().Str("url", p.url).Msg("Pushed metrics")
	return nil
}
