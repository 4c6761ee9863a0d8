package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/ratecard/internal/config"
	"github.com/okian/ratecard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cfg := config.New(ctx)
		cfg.WorkerCount = 2

		convey.Convey("When building the service", func() {
			svc, err := buildService(ctx, cfg, logger.Nop())

			convey.Convey("Then it runs on in-memory backends", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()
				convey.So(svc.GetStats()["workerCount"], convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the ledger is sqlite", func() {
			cfg.LedgerDriver = config.LedgerSQLite
			cfg.LedgerDSN = filepath.Join(t.TempDir(), "ledger.db")
			svc, err := buildService(ctx, cfg, logger.Nop())

			convey.Convey("Then the service persists through it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()
				convey.So(svc.GetStats()["transactions"], convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the tables overlay is missing", func() {
			cfg.TablesPath = filepath.Join(t.TempDir(), "missing.yaml")
			_, err := buildService(ctx, cfg, logger.Nop())

			convey.Convey("Then building fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When redis is unreachable", func() {
			cfg.LedgerDriver = config.LedgerSQLite
			cfg.LedgerDSN = filepath.Join(t.TempDir(), "ledger.db")
			cfg.RedisURL = "127.0.0.1:1"
			_, err := buildService(ctx, cfg, logger.Nop())

			convey.Convey("Then building fails after releasing the ledger", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "ping redis")
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the assembled HTTP mux", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		svc, err := buildService(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		mux := newMux(ctx, cfg, svc, logger.Nop())

		get := func(method, path, body string) int {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
			return w.Code
		}

		convey.Convey("Then docs, metrics and the API are all routed", func() {
			convey.So(get(http.MethodGet, "/api-docs", ""), convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodGet, "/openapi.yaml", ""), convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodGet, "/healthz", ""), convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodGet, "/tables", ""), convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodPost, "/valuations", `{"platform":"tiktok"}`), convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And ledger routes report unavailable before Start", func() {
			convey.So(get(http.MethodGet, "/compliance", ""), convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
