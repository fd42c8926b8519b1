// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"openml-schema-check/internal/models"
	"openml-schema-check/internal/observability/logging"
	"openml-schema-check/internal/observability/metrics"
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes validation reports to a Kafka topic.
type Publisher struct {
	writer    messageWriter
	principal string
	topic     string
	enabled   bool
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	Topic     string
	Principal string
	Enabled   bool
}

// New creates a new Kafka report publisher. A nil or disabled config yields
// a log-only publisher.
func New(cfg *Config, m *metrics.Metrics) *Publisher {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	logger := logging.WithComponent("events")

	// Handle nil config case
	if cfg == nil {
		logger.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
			logger:  logger,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal: cfg.Principal,
			topic:     cfg.Topic,
			enabled:   false,
			metrics:   m,
			logger:    logger,
		}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writer:    writer,
		principal: cfg.Principal,
		topic:     cfg.Topic,
		enabled:   true,
		metrics:   m,
		logger:    logger,
	}
}

// Enabled reports whether reports are written to Kafka.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// PublishReport publishes a validation report keyed by dataset URL, so all
// runs against one dataset land on the same partition.
func (p *Publisher) PublishReport(ctx context.Context, report *models.ValidationReport) error {
	start := time.Now()

	payload, err := json.Marshal(report)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal report")
		return err
	}

	p.logger.Debug().
		Str("principal", p.principal).
		Str("topic", p.topic).
		Str("key", report.DatasetURL).
		RawJSON("payload", payload).
		Msg("Publishing report")

	// If Kafka is disabled, just log
	if !p.enabled || p.writer == nil {
		p.metrics.RecordReportPublish(p.topic, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(report.DatasetURL),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(report.EventType)},
			{Key: "outcome", Value: []byte(report.Outcome)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().
			Err(err).
			Str("topic", p.topic).
			Str("runId", report.RunID).
			Msg("Failed to write to Kafka")
		p.metrics.RecordReportPublish(p.topic, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordReportPublish(p.topic, nil, time.Since(start).Seconds())
	return nil
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Error closing report writer")
		return err
	}
	return nil
}
