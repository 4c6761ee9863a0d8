package batch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ratecard/internal/domain/normalize"
	"github.com/okian/ratecard/pkg/logger"
	"github.com/schollz/progressbar/v3"
)

// Runner evaluates offers concurrently against the service.
type Runner struct {
	cfg    Config
	client *Client
	log    logger.Logger
	now    func() time.Time
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg Config, log logger.Logger) *Runner {
	cfg.withDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{cfg: cfg, client: NewClient(cfg), log: log.Named("batch"), now: time.Now}
}

// Run checks service health, evaluates every offer in the input file and
// writes the report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.client.Health(ctx); err != nil {
		return nil, err
	}
	offers, err := ReadOffers(r.cfg.Input)
	if err != nil {
		return nil, err
	}

	r.log.Info(ctx, "evaluating offers",
		logger.Int("count", len(offers)),
		logger.Int("workers", r.cfg.Workers),
		logger.String("url", r.cfg.BaseURL),
	)

	start := r.now()
	results := r.Evaluate(ctx, offers)
	report := &Report{
		BaseURL:     r.cfg.BaseURL,
		GeneratedAt: r.now().UTC(),
		Summary:     summarize(results, r.now().Sub(start)),
		Results:     results,
	}

	out := r.cfg.Output
	if out == "" {
		out = defaultOutput(start)
	}
	if err := WriteReport(out, report); err != nil {
		return report, err
	}

	r.log.Info(ctx, "batch complete",
		logger.String("report", out),
		logger.Int("succeeded", report.Summary.Succeeded),
		logger.Int("failed", report.Summary.Failed),
		logger.Any("by_verdict", report.Summary.ByVerdict),
		logger.Duration("duration", report.Summary.Duration),
	)
	return report, nil
}

// Evaluate posts offers with a bounded pool of workers. Results keep the
// input order. Cancelling ctx marks the remaining offers as failed.
func (r *Runner) Evaluate(ctx context.Context, offers []normalize.Raw) []Result {
	results := make([]Result, len(offers))
	bar := r.progress(len(offers))

	var done atomic.Int64
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(r.cfg.Workers, len(offers)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := r.client.Evaluate(ctx, offers[i])
				res.Index = i
				if err != nil {
					res.Error = err.Error()
					r.log.Warn(ctx, "offer evaluation failed",
						logger.Int("index", i),
						logger.String("request_id", res.RequestID),
						logger.Error(err),
					)
				} else if r.cfg.Verbose {
					r.log.Info(ctx, "offer evaluated",
						logger.Int("index", i),
						logger.String("request_id", res.RequestID),
						logger.String("verdict", string(res.Verdict)),
						logger.Int64("fair_value", res.FairValue),
					)
				}
				results[i] = res
				done.Add(1)
				_ = bar.Add(1)
			}
		}()
	}

feed:
	for i := range offers {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(offers); j++ {
				results[j] = Result{Index: j, Error: fmt.Sprintf("not sent: %v", ctx.Err())}
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	_ = bar.Finish()

	r.log.Debug(ctx, "workers drained", logger.Int64("completed", done.Load()))
	return results
}

func (r *Runner) progress(n int) *progressbar.ProgressBar {
	w := r.cfg.Progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("evaluating offers"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
