// Command ratecard-batch evaluates a file of sponsor offers against a
// running ratecard service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/ratecard/internal/batch"
	"github.com/okian/ratecard/pkg/logger"
)

func main() {
	var (
		cfg  batch.Config
		help bool
	)
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Service base URL")
	flag.StringVar(&cfg.Input, "input", "offers.json", "JSON array of offer inputs")
	flag.StringVar(&cfg.Output, "output", "", "Report path (default ratecard_batch_<timestamp>.json)")
	flag.IntVar(&cfg.Workers, "workers", batch.DefaultWorkers, "Concurrent requests")
	flag.DurationVar(&cfg.Timeout, "timeout", batch.DefaultTimeout, "Per-request timeout")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Log every evaluated offer")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.Parse()

	if help {
		batch.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.RetryMax = batch.DefaultRetryMax
	cfg.Progress = os.Stderr

	log := logger.Get()
	if _, err := batch.NewRunner(cfg, log).Run(ctx); err != nil {
		log.Error(ctx, "batch failed", logger.Error(err))
		os.Exit(1) //nolint:gocritic // logger is synced best-effort
	}
}
