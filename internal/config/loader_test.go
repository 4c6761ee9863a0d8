package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/ratecard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"RATECARD_CONFIG",
	"RATECARD_ADDR",
	"RATECARD_QUEUE_SIZE",
	"RATECARD_WORKER_COUNT",
	"RATECARD_LEDGER_DRIVER",
	"RATECARD_LEDGER_DSN",
	"RATECARD_KAFKA_BROKERS",
	"RATECARD_COMPLIANCE_THRESHOLD_CENTS",
	"RATECARD_RATE_LIMIT_RPS",
	"RATECARD_METRICS_INTERVAL",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "ratecard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LedgerDriver, convey.ShouldEqual, config.LedgerMemory)
				convey.So(cfg.KafkaBrokers, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RATECARD_ADDR", ":8080")
			_ = os.Setenv("RATECARD_QUEUE_SIZE", "500")
			_ = os.Setenv("RATECARD_WORKER_COUNT", "3")
			_ = os.Setenv("RATECARD_LEDGER_DRIVER", "SQLite")
			_ = os.Setenv("RATECARD_LEDGER_DSN", "file:ledger.db")
			_ = os.Setenv("RATECARD_KAFKA_BROKERS", "k1:9092, k2:9092")
			_ = os.Setenv("RATECARD_COMPLIANCE_THRESHOLD_CENTS", "250000")
			_ = os.Setenv("RATECARD_METRICS_INTERVAL", "30s")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.LedgerDriver, convey.ShouldEqual, config.LedgerSQLite)
				convey.So(cfg.LedgerDSN, convey.ShouldEqual, "file:ledger.db")
				convey.So(cfg.KafkaBrokers, convey.ShouldResemble, []string{"k1:9092", "k2:9092"})
				convey.So(cfg.ComplianceThresholdCents, convey.ShouldEqual, 250_000)
				convey.So(cfg.MetricsInterval, convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
worker_count: 16
tables_path: /etc/ratecard/tables.yaml
kafka_brokers: [broker:9092]
rate_limit_rps: 0
`)
			_ = os.Setenv("RATECARD_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.TablesPath, convey.ShouldEqual, "/etc/ratecard/tables.yaml")
				convey.So(cfg.KafkaBrokers, convey.ShouldResemble, []string{"broker:9092"})
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 0)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When env and file both set a key", func() {
			path := writeConfigFile(t, "addr: \":9090\"\n")
			_ = os.Setenv("RATECARD_CONFIG", path)
			_ = os.Setenv("RATECARD_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the file is missing or malformed", func() {
			_ = os.Setenv("RATECARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, errMissing := config.Load(ctx)

			_ = os.Setenv("RATECARD_CONFIG", writeConfigFile(t, "invalid: yaml: content: ["))
			_, errInvalid := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(errMissing, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(errInvalid, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a SQL ledger has no DSN", func() {
			_ = os.Setenv("RATECARD_LEDGER_DRIVER", "mysql")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "ledger_dsn")
			})
		})
	})
}
