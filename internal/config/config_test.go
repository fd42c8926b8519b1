package config

import (
	"os"
	"testing"
)

var envVars = []string{
	"SERVICE_PRINCIPAL", "ENV", "LOG_LEVEL", "LOG_FORMAT",
	"PUSHGATEWAY_URL", "METRICS_JOB",
	"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_REPORT", "KAFKA_PRINCIPAL",
}

func clearEnv() {
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv()

	cfg := Load()

	// Service defaults
	if cfg.Service.Principal != "svc-openml-schema-check" {
		t.Errorf("expected default principal 'svc-openml-schema-check', got %s", cfg.Service.Principal)
	}

	// Kafka defaults
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no default brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicReport != "dataset.validation.report" {
		t.Errorf("expected default topic 'dataset.validation.report', got %s", cfg.Kafka.TopicReport)
	}

	// Observability defaults
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogFormat != "console" {
		t.Errorf("expected default log format 'console', got %s", cfg.Observability.LogFormat)
	}
	if cfg.Observability.PushgatewayURL != "" {
		t.Errorf("expected push disabled by default, got %s", cfg.Observability.PushgatewayURL)
	}
	if cfg.Observability.MetricsJob != "openml_schema_check" {
		t.Errorf("expected default metrics job 'openml_schema_check', got %s", cfg.Observability.MetricsJob)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv()
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("ENV", "dev")
	os.Setenv("LOG_LEVEL", "DEBUG")
	os.Setenv("LOG_FORMAT", "json")
	os.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")
	os.Setenv("METRICS_JOB", "nightly")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	os.Setenv("KAFKA_TOPIC_REPORT", "custom.reports")
	os.Setenv("KAFKA_PRINCIPAL", "kafka-principal")
	defer clearEnv()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.Environment != "dev" {
		t.Errorf("expected environment 'dev', got %s", cfg.Service.Environment)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogFormat != "json" {
		t.Errorf("expected log format 'json', got %s", cfg.Observability.LogFormat)
	}
	if cfg.Observability.PushgatewayURL != "http://pushgateway:9091" {
		t.Errorf("unexpected pushgateway url %s", cfg.Observability.PushgatewayURL)
	}
	if cfg.Observability.MetricsJob != "nightly" {
		t.Errorf("expected metrics job 'nightly', got %s", cfg.Observability.MetricsJob)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "kafka-1:9092" || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicReport != "custom.reports" {
		t.Errorf("expected topic 'custom.reports', got %s", cfg.Kafka.TopicReport)
	}
	if cfg.Kafka.Principal != "kafka-principal" {
		t.Errorf("expected Kafka principal 'kafka-principal', got %s", cfg.Kafka.Principal)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	clearEnv()
	os.Setenv("KAFKA_ENABLED", "not-a-bool")
	os.Setenv("LOG_FORMAT", "xml")
	defer clearEnv()

	cfg := Load()

	if cfg.Kafka.Enabled {
		t.Error("expected default Kafka enabled on invalid input")
	}
	if cfg.Observability.LogFormat != "console" {
		t.Errorf("expected default log format on invalid input, got %s", cfg.Observability.LogFormat)
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	clearEnv()
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	defer clearEnv()

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}

func TestEnvList(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "a:1", []string{"a:1"}},
		{"spaces and blanks", " a:1 , ,b:2", []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_LIST_VAR"
			os.Setenv(key, tt.envValue)
			defer os.Unsetenv(key)

			got := envList(key)
			if len(got) != len(tt.expected) {
				t.Fatalf("envList(%q) = %v, want %v", tt.envValue, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("envList(%q)[%d] = %s, want %s", tt.envValue, i, got[i], tt.expected[i])
				}
			}
		})
	}
}
