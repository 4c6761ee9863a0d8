package queue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/ratecard/internal/adapters/mq/queue"
	"github.com/okian/ratecard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func tx(id string) model.Transaction {
	return model.Transaction{ID: id, CounterpartyID: "acme", CashCents: 100}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("Then it starts empty", func() {
			So(q.Len(), ShouldEqual, 0)
			So(q.Cap(), ShouldEqual, 2)
		})

		Convey("When it is filled", func() {
			So(q.Enqueue(ctx, tx("a")), ShouldBeNil)
			So(q.Enqueue(ctx, tx("b")), ShouldBeNil)

			Convey("Then further transactions are rejected", func() {
				err := q.Enqueue(ctx, tx("c"))
				So(errors.Is(err, queue.ErrFull), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 2)
			})

			Convey("Then transactions come out in order", func() {
				So((<-q.Dequeue()).ID, ShouldEqual, "a")
				So((<-q.Dequeue()).ID, ShouldEqual, "b")
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue fails with the context error", func() {
				So(errors.Is(q.Enqueue(cctx, tx("a")), context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, tx("a")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue fails and buffered items drain", func() {
				So(errors.Is(q.Enqueue(ctx, tx("b")), queue.ErrClosed), ShouldBeTrue)
				got, ok := <-q.Dequeue()
				So(ok, ShouldBeTrue)
				So(got.ID, ShouldEqual, "a")
				_, ok = <-q.Dequeue()
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestQueueConcurrency(t *testing.T) {
	Convey("Given concurrent producers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		var wg sync.WaitGroup
		for p := 0; p < 10; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					_ = q.Enqueue(context.Background(), tx(fmt.Sprintf("%d-%d", p, i)))
				}
			}(p)
		}
		wg.Wait()

		Convey("Then every transaction is buffered", func() {
			So(q.Len(), ShouldEqual, 1000)
		})
	})
}
