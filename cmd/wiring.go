package main

import (
	"context"
	"fmt"

	"github.com/okian/ratecard/internal/adapters/cache"
	"github.com/okian/ratecard/internal/adapters/events"
	"github.com/okian/ratecard/internal/adapters/repository"
	app "github.com/okian/ratecard/internal/app"
	"github.com/okian/ratecard/internal/config"
	"github.com/okian/ratecard/internal/domain/tables"
	"github.com/okian/ratecard/pkg/logger"
)

// buildService assembles the service from cfg. Every backing store named in
// cfg is connected here so misconfiguration fails before the listener opens.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithComplianceThreshold(cfg.ComplianceThresholdCents),
		app.WithComplianceWindowDays(cfg.ComplianceWindowDays),
	}

	if cfg.TablesPath != "" {
		t, err := tables.Load(cfg.TablesPath)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "loaded reference tables", logger.String("path", cfg.TablesPath), logger.String("version", t.Version))
		opts = append(opts, app.WithTables(t))
	}

	var closers []func() error
	fail := func(err error) (*app.Service, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	if cfg.LedgerDriver != config.LedgerMemory {
		ledger, err := repository.NewSQLLedger(ctx, cfg.LedgerDriver, cfg.LedgerDSN)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, ledger.Close)
		log.Info(ctx, "using sql ledger", logger.String("driver", cfg.LedgerDriver))
		opts = append(opts, app.WithLedger(ledger))
	}

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("ping redis: %w", err))
		}
		log.Info(ctx, "using redis deduper")
		opts = append(opts, app.WithDeduper(cache.NewRedisDeduper(client)))
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return fail(err)
		}
		log.Info(ctx, "publishing alerts to kafka",
			logger.Any("brokers", cfg.KafkaBrokers),
			logger.String("topic", cfg.KafkaTopic),
		)
		opts = append(opts, app.WithPublisher(pub))
	}

	return app.New(opts...), nil
}
