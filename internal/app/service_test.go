package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/ratecard/internal/app"
	"github.com/okian/ratecard/internal/domain/model"
	"github.com/okian/ratecard/internal/domain/normalize"
	"github.com/okian/ratecard/internal/domain/offer"
	"github.com/okian/ratecard/internal/domain/tables"
	"github.com/okian/ratecard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func referenceRaw() normalize.Raw {
	return normalize.Raw{
		Platform:         normalize.Text("YouTube"),
		Niche:            normalize.Text("technology"),
		AudienceSize:     normalize.Text("50000"),
		AverageViews:     normalize.Number(10_000),
		EngagementRate:   normalize.Text("6"),
		ContentType:      normalize.Text("dedicated"),
		CompanySize:      normalize.Text("large"),
		AudienceLocation: normalize.Text("us"),
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it uses the built-in tables and is not started", func() {
			So(svc.Tables().Version, ShouldEqual, tables.DefaultVersion)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["thresholdCents"], ShouldEqual, 100_000)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		custom := tables.Default()
		custom.Version = "custom-1"
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithTables(custom),
			service.WithComplianceThreshold(250_000),
			service.WithComplianceWindowDays(90),
		)

		Convey("Then the options are reflected in its stats", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50_000)
			So(stats["tablesVersion"], ShouldEqual, "custom-1")
			So(stats["thresholdCents"], ShouldEqual, 250_000)
			So(stats["windowDays"], ShouldEqual, 90)
		})
	})
}

func TestService_Valuate(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When valuating the reference deal from loose input", func() {
			res := svc.Valuate(ctx, referenceRaw())

			Convey("Then the estimate matches the engine", func() {
				So(res.Minimum, ShouldEqual, 506)
				So(res.Average, ShouldEqual, 632)
				So(res.Maximum, ShouldEqual, 758)
			})
		})

		Convey("When valuating an empty request", func() {
			res := svc.Valuate(ctx, normalize.Raw{})

			Convey("Then the price floor applies", func() {
				So(res.Floored, ShouldBeTrue)
				So(res.Average, ShouldEqual, 50)
			})
		})
	})
}

func TestService_Evaluate(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When the offer is below half the fair value", func() {
			raw := referenceRaw()
			raw.OfferPrice = normalize.Text(" 300 ")
			res, ev, err := svc.Evaluate(ctx, raw)

			Convey("Then it is classified way too low", func() {
				So(err, ShouldBeNil)
				So(res.Average, ShouldEqual, 632)
				So(ev.Verdict, ShouldEqual, offer.WayTooLow)
				So(ev.SuggestedCounter, ShouldEqual, 632)
				So(ev.Gap, ShouldEqual, 332)
			})
		})

		Convey("When the offer beats the fair value", func() {
			raw := referenceRaw()
			raw.OfferPrice = normalize.Number(700)
			_, ev, err := svc.Evaluate(ctx, raw)

			Convey("Then it is classified good", func() {
				So(err, ShouldBeNil)
				So(ev.Verdict, ShouldEqual, offer.Good)
				So(ev.SuggestedCounter, ShouldEqual, 700)
			})
		})

		Convey("When the offer is missing or negative", func() {
			_, _, errMissing := svc.Evaluate(ctx, referenceRaw())
			raw := referenceRaw()
			raw.OfferPrice = normalize.Number(-5)
			_, _, errNegative := svc.Evaluate(ctx, raw)

			Convey("Then ErrMissingOffer is returned", func() {
				So(errMissing, ShouldEqual, service.ErrMissingOffer)
				So(errNegative, ShouldEqual, service.ErrMissingOffer)
			})
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Then ledger operations report ErrNotStarted", func() {
			_, _, err := svc.SubmitTransaction(ctx, model.Transaction{ID: "t", CounterpartyID: "c"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, _, err = svc.Compliance(ctx, "c")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, err = svc.ComplianceOverview(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		// Ensure service is stopped after test
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it is running with its workers", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["workerCount"], ShouldEqual, 2)
				So(stats["transactions"], ShouldEqual, 0)
			})

			Convey("And stopping it marks it stopped", func() {
				svc.Stop()
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And it cannot be restarted after Stop", func() {
				svc.Stop()
				So(errors.Is(svc.Start(ctx), service.ErrStopped), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)

				_, _, err := svc.SubmitTransaction(ctx, model.Transaction{ID: "tx-late", CounterpartyID: "acme"})
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}
