// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"runtime"
	"time"
)

// Ledger drivers.
const (
	LedgerMemory = "memory"
	LedgerSQLite = "sqlite"
	LedgerMySQL  = "mysql"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory transaction queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ledger workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the in-memory idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// TablesPath optionally points at a YAML overlay for the reference tables.
	TablesPath string `koanf:"tables_path"`

	// ComplianceThresholdCents and ComplianceWindowDays parameterize the
	// counterparty aggregation.
	ComplianceThresholdCents int64 `koanf:"compliance_threshold_cents"`
	ComplianceWindowDays     int   `koanf:"compliance_window_days"`

	// LedgerDriver is memory, sqlite or mysql. LedgerDSN is required for the
	// SQL drivers.
	LedgerDriver string `koanf:"ledger_driver"`
	LedgerDSN    string `koanf:"ledger_dsn"`

	// RedisURL enables the Redis idempotency store when set.
	RedisURL string `koanf:"redis_url"`

	// KafkaBrokers enables Kafka alert publishing when non-empty.
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`

	// OTelEndpoint is the OTLP/HTTP collector host:port. Empty disables tracing.
	OTelEndpoint string `koanf:"otel_endpoint"`

	// RateLimitRPS and RateLimitBurst throttle the business endpoints.
	// Zero RPS disables throttling.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// MetricsInterval is how often runtime and ledger gauges are sampled.
	MetricsInterval time.Duration `koanf:"metrics_interval"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":9080",
		QueueSize:                10_000,
		WorkerCount:              runtime.NumCPU(),
		DedupeSize:               50_000,
		ComplianceThresholdCents: 100_000,
		ComplianceWindowDays:     365,
		LedgerDriver:             LedgerMemory,
		KafkaTopic:               "compliance.risk_changed",
		RateLimitRPS:             200,
		RateLimitBurst:           400,
		MetricsInterval:          10 * time.Second,
	}
}
