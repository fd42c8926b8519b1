// Package config loads the validator's ambient settings from the environment.
//
// The dataset URL, the fetch timeout and the expected shape are fixed
// properties of the pinned snapshot and are not read from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Service       ServiceConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Principal   string
	Environment string
}

type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	TopicReport string
	Principal   string
}

type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	PushgatewayURL string
	MetricsJob     string
}

func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-openml-schema-check")

	return &Config{
		Service: ServiceConfig{
			Principal:   principal,
			Environment: envOrDefault("ENV", ""),
		},
		Kafka: KafkaConfig{
			Enabled:     envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:     envList("KAFKA_BROKERS"),
			TopicReport: envOrDefault("KAFKA_TOPIC_REPORT", "dataset.validation.report"),
			Principal:   envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:       strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
			LogFormat:      envOrDefaultChoice("LOG_FORMAT", "console", "console", "json"),
			PushgatewayURL: envOrDefault("PUSHGATEWAY_URL", ""),
			MetricsJob:     envOrDefault("METRICS_JOB", "openml_schema_check"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envOrDefaultChoice returns the env value if it is one of allowed.
func envOrDefaultChoice(key, def string, allowed ...string) string {
	v := strings.ToLower(os.Getenv(key))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
