package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/ratecard/internal/adapters/events"
	"github.com/okian/ratecard/internal/adapters/repository"
	service "github.com/okian/ratecard/internal/app"
	"github.com/okian/ratecard/internal/domain/compliance"
	"github.com/okian/ratecard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type capturePublisher struct {
	mu     sync.Mutex
	alerts []events.Alert
}

func (p *capturePublisher) Publish(_ context.Context, a events.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, a)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) snapshot() []events.Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Alert(nil), p.alerts...)
}

// gatedLedger holds every Append until the gate is closed.
type gatedLedger struct {
	*repository.MemoryLedger
	gate chan struct{}
}

func (g *gatedLedger) Append(ctx context.Context, tx model.Transaction) error {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.MemoryLedger.Append(ctx, tx)
}

func waitProcessed(svc *service.Service, n int64) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if p, ok := svc.GetStats()["processed"].(int64); ok && p >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func tx(id, counterparty string, cents int64, status model.Status, daysAgo int) model.Transaction {
	return model.Transaction{
		ID:             id,
		CounterpartyID: counterparty,
		CashCents:      cents,
		Status:         status,
		Date:           fixedNow.AddDate(0, 0, -daysAgo),
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with a fixed clock", t, func() {
		pub := &capturePublisher{}
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithPublisher(pub),
			service.WithClock(func() time.Time { return fixedNow }),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When transactions for two counterparties are submitted", func() {
			batch := []model.Transaction{
				tx("acme-1", "acme", 60_000, model.StatusSigned, 30),
				tx("acme-2", "acme", 50_000, model.StatusSent, 10),
				tx("globex-1", "globex", 20_000, model.StatusPaid, 5),
			}
			for _, rec := range batch {
				accepted, duplicate, err := svc.SubmitTransaction(ctx, rec)
				So(err, ShouldBeNil)
				So(accepted, ShouldBeTrue)
				So(duplicate, ShouldBeFalse)
			}
			So(waitProcessed(svc, 3), ShouldBeTrue)

			Convey("Then the crossing counterparty is critical", func() {
				res, ok, err := svc.Compliance(ctx, "acme")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(res.TotalCents, ShouldEqual, 110_000)
				So(res.ThresholdExceeded, ShouldBeTrue)
				So(res.MissingContracts, ShouldEqual, 1)
				So(res.Risk, ShouldEqual, compliance.Critical)
				So(res.EvaluatedAt.Equal(fixedNow), ShouldBeTrue)
			})

			Convey("And exactly one escalation alert is published", func() {
				alerts := pub.snapshot()
				So(len(alerts), ShouldEqual, 1)
				So(alerts[0].CounterpartyID, ShouldEqual, "acme")
				So(alerts[0].Previous, ShouldEqual, compliance.Safe)
				So(alerts[0].Current, ShouldEqual, compliance.Critical)
			})

			Convey("And the overview lists the highest risk first", func() {
				overview, err := svc.ComplianceOverview(ctx)
				So(err, ShouldBeNil)
				So(len(overview), ShouldEqual, 2)
				So(overview[0].CounterpartyID, ShouldEqual, "acme")
				So(overview[1].CounterpartyID, ShouldEqual, "globex")
				So(overview[1].Risk, ShouldEqual, compliance.Safe)
			})

			Convey("And the stats count the ledger", func() {
				stats := svc.GetStats()
				So(stats["transactions"], ShouldEqual, 3)
				So(stats["counterparties"], ShouldEqual, 2)
			})

			Convey("And resubmitting a transaction is a duplicate", func() {
				accepted, duplicate, err := svc.SubmitTransaction(ctx, batch[0])
				So(err, ShouldBeNil)
				So(accepted, ShouldBeFalse)
				So(duplicate, ShouldBeTrue)
			})
		})

		Convey("When asking about unknown or blank counterparties", func() {
			_, okUnknown, errUnknown := svc.Compliance(ctx, "nobody")
			_, okBlank, errBlank := svc.Compliance(ctx, "   ")

			Convey("Then nothing is reported", func() {
				So(errUnknown, ShouldBeNil)
				So(okUnknown, ShouldBeFalse)
				So(errBlank, ShouldBeNil)
				So(okBlank, ShouldBeFalse)
			})
		})

		Convey("When submitting invalid transactions", func() {
			_, _, errBlank := svc.SubmitTransaction(ctx, model.Transaction{ID: "x"})
			_, _, errNegative := svc.SubmitTransaction(ctx, tx("neg", "acme", -1, model.StatusPaid, 1))

			Convey("Then they are rejected as invalid", func() {
				So(errors.Is(errBlank, service.ErrInvalidTransaction), ShouldBeTrue)
				So(errors.Is(errNegative, service.ErrInvalidTransaction), ShouldBeTrue)
			})
		})
	})
}

func TestServiceBackpressure(t *testing.T) {
	Convey("Given a service whose single worker is blocked on the ledger", t, func() {
		ledger := &gatedLedger{MemoryLedger: repository.NewMemoryLedger(), gate: make(chan struct{})}
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithQueueSize(1),
			service.WithLedger(ledger),
			service.WithClock(func() time.Time { return fixedNow }),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		var gateOnce sync.Once
		release := func() { gateOnce.Do(func() { close(ledger.gate) }) }
		defer svc.Stop()
		defer release()

		Convey("When submitting more than the queue can hold", func() {
			var rejected string
			var rejectErr error
			for i := 0; i < 10 && rejected == ""; i++ {
				id := fmt.Sprintf("bp-%d", i)
				if _, _, err := svc.SubmitTransaction(ctx, tx(id, "acme", 100, model.StatusPaid, 1)); err != nil {
					rejected, rejectErr = id, err
				}
			}

			Convey("Then the overflow is refused with backpressure", func() {
				So(rejected, ShouldNotBeEmpty)
				So(errors.Is(rejectErr, service.ErrBackpressure), ShouldBeTrue)
			})

			Convey("And the refused id can be retried once the queue drains", func() {
				release()
				var accepted bool
				deadline := time.Now().Add(5 * time.Second)
				for !accepted && time.Now().Before(deadline) {
					ok, duplicate, err := svc.SubmitTransaction(ctx, tx(rejected, "acme", 100, model.StatusPaid, 1))
					So(duplicate, ShouldBeFalse)
					if err == nil {
						accepted = ok
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(accepted, ShouldBeTrue)
			})
		})
	})
}

func TestServiceSQLLedgerLifecycle(t *testing.T) {
	Convey("Given a service over a sqlite ledger", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		ledger, err := repository.NewSQLLedger(ctx, "sqlite", filepath.Join(t.TempDir(), "ledger.db"))
		So(err, ShouldBeNil)
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithLedger(ledger),
			service.WithPublisher(&capturePublisher{}),
			service.WithClock(func() time.Time { return fixedNow }),
		)
		defer svc.Stop()
		So(svc.Start(ctx), ShouldBeNil)

		accepted, _, err := svc.SubmitTransaction(ctx, tx("sql-1", "acme", 10_000, model.StatusPaid, 1))
		So(err, ShouldBeNil)
		So(accepted, ShouldBeTrue)
		So(waitProcessed(svc, 1), ShouldBeTrue)

		Convey("When it is stopped", func() {
			svc.Stop()

			Convey("Then it refuses to start over the closed ledger", func() {
				So(errors.Is(svc.Start(ctx), service.ErrStopped), ShouldBeTrue)
				_, _, err := svc.Compliance(ctx, "acme")
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["transactions"], ShouldBeNil)
			})
		})
	})
}
