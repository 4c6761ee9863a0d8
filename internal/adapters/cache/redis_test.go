package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/ratecard/internal/adapters/cache"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConnect(t *testing.T) {
	Convey("Given redis connection strings", t, func() {
		Convey("When a URL is given", func() {
			c, err := cache.Connect(context.Background(), "redis://:secret@cache.internal:6380/2")
			So(err, ShouldBeNil)
			defer c.Close()

			Convey("Then it is parsed", func() {
				So(c.Options().Addr, ShouldEqual, "cache.internal:6380")
				So(c.Options().DB, ShouldEqual, 2)
				So(c.Options().Password, ShouldEqual, "secret")
			})
		})

		Convey("When host:port is given", func() {
			c, err := cache.Connect(context.Background(), "localhost:6379")
			So(err, ShouldBeNil)
			defer c.Close()
			So(c.Options().Addr, ShouldEqual, "localhost:6379")
		})

		Convey("When the URL is malformed", func() {
			_, err := cache.Connect(context.Background(), "redis://host:port:extra/db")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRedisDeduperOffline(t *testing.T) {
	Convey("Given a deduper whose server is unreachable", t, func() {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		d := cache.NewRedisDeduper(client, cache.WithKeyPrefix("test:"), cache.WithTTL(time.Minute))
		defer d.Close()

		Convey("Then keys carry the prefix", func() {
			So(d.Key("tx-1"), ShouldEqual, "test:tx-1")
		})

		Convey("Then errors surface instead of being treated as new ids", func() {
			_, err := d.SeenAndRecord(context.Background(), "tx-1")
			So(err, ShouldNotBeNil)
			So(d.Unrecord(context.Background(), "tx-1"), ShouldNotBeNil)
		})
	})
}

// Runs against a real server when RATECARD_TEST_REDIS is set.
func TestRedisDeduperLive(t *testing.T) {
	addr := os.Getenv("RATECARD_TEST_REDIS")
	if addr == "" {
		t.Skip("RATECARD_TEST_REDIS not set")
	}
	Convey("Given a live redis", t, func() {
		ctx := context.Background()
		client, err := cache.Connect(ctx, addr)
		So(err, ShouldBeNil)
		d := cache.NewRedisDeduper(client, cache.WithKeyPrefix("ratecard-test:"), cache.WithTTL(time.Minute))
		defer d.Close()
		id := uuid.NewString()

		seen, err := d.SeenAndRecord(ctx, id)
		So(err, ShouldBeNil)
		So(seen, ShouldBeFalse)

		seen, err = d.SeenAndRecord(ctx, id)
		So(err, ShouldBeNil)
		So(seen, ShouldBeTrue)

		So(d.Unrecord(ctx, id), ShouldBeNil)
		seen, err = d.SeenAndRecord(ctx, id)
		So(err, ShouldBeNil)
		So(seen, ShouldBeFalse)
		So(d.Unrecord(ctx, id), ShouldBeNil)
	})
}
