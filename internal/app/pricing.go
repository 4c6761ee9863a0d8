package service

import (
	"context"
	"time"

	"github.com/okian/ratecard/internal/domain/normalize"
	"github.com/okian/ratecard/internal/domain/offer"
	"github.com/okian/ratecard/internal/domain/valuation"
	"github.com/okian/ratecard/internal/tracing"
	"github.com/okian/ratecard/pkg/logger"
	"github.com/okian/ratecard/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Valuate normalizes raw and prices it. It never fails.
func (s *Service) Valuate(ctx context.Context, raw normalize.Raw) valuation.Result {
	ctx, span := tracing.Start(ctx, "service.Valuate")
	defer span.End()

	res, _ := s.valuate(ctx, span, raw)
	return res
}

// Evaluate prices raw and classifies its offer price against the fair
// range. It returns ErrMissingOffer when raw carries no usable offer.
func (s *Service) Evaluate(ctx context.Context, raw normalize.Raw) (valuation.Result, offer.Evaluation, error) {
	ctx, span := tracing.Start(ctx, "service.Evaluate")
	defer span.End()

	price, ok := normalize.Offer(raw)
	if !ok {
		tracing.RecordError(span, ErrMissingOffer)
		return valuation.Result{}, offer.Evaluation{}, ErrMissingOffer
	}

	res, in := s.valuate(ctx, span, raw)
	ev := s.classifier.Evaluate(res, price, in.CompanySize)
	metrics.RecordEvaluation(string(ev.Verdict), ev.Ratio)

	span.SetAttributes(
		attribute.String("offer.verdict", string(ev.Verdict)),
		attribute.Float64("offer.ratio", ev.Ratio),
	)
	s.logger.Debug(ctx, "offer evaluated",
		logger.String("verdict", string(ev.Verdict)),
		logger.Float64("offer", price),
		logger.Int64("fairValue", ev.FairValue),
	)
	return res, ev, nil
}

func (s *Service) valuate(ctx context.Context, span trace.Span, raw normalize.Raw) (valuation.Result, valuation.Input) {
	start := time.Now()
	in := normalize.Normalize(raw)
	res := s.engine.Valuate(in)
	metrics.RecordValuation(res.Average, time.Since(start))

	var defaulted []string
	for _, f := range res.Breakdown {
		if f.Defaulted() {
			metrics.RecordDefaultedFactor(f.Name)
			defaulted = append(defaulted, f.Name)
		}
	}

	span.SetAttributes(
		attribute.String("valuation.platform", in.Platform),
		attribute.String("valuation.cpm_source", string(res.CPMSource)),
		attribute.Int64("valuation.average", res.Average),
		attribute.Bool("valuation.floored", res.Floored),
		attribute.StringSlice("valuation.defaulted", defaulted),
	)
	s.logger.Debug(ctx, "valuation computed",
		logger.String("platform", in.Platform),
		logger.String("niche", in.Niche),
		logger.Int64("average", res.Average),
		logger.Any("defaulted", defaulted),
	)
	return res, in
}
