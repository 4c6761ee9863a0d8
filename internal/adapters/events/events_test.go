package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/ratecard/internal/domain/compliance"
	"github.com/okian/ratecard/pkg/logger"
	"github.com/segmentio/kafka-go"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleAlert() Alert {
	return NewAlert("tx-9", compliance.Safe, compliance.Result{
		CounterpartyID:    "acme",
		TotalCents:        120_000,
		ThresholdCents:    100_000,
		ThresholdExceeded: true,
		MissingContracts:  1,
		Risk:              compliance.Critical,
		EvaluatedAt:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestNewAlert(t *testing.T) {
	Convey("Given an escalated assessment", t, func() {
		a := sampleAlert()

		Convey("Then the alert carries both tiers", func() {
			So(a.Type, ShouldEqual, EventRiskChanged)
			So(a.Previous, ShouldEqual, compliance.Safe)
			So(a.Current, ShouldEqual, compliance.Critical)
			So(a.TransactionID, ShouldEqual, "tx-9")
			So(a.MissingContracts, ShouldEqual, 1)
		})
	})
}

func TestKafkaPublisher(t *testing.T) {
	Convey("Given a kafka publisher over a fake writer", t, func() {
		w := &fakeWriter{}
		p := &KafkaPublisher{writer: w, topic: "alerts"}

		Convey("When an alert is published", func() {
			So(p.Publish(context.Background(), sampleAlert()), ShouldBeNil)

			Convey("Then one message keyed by counterparty is written", func() {
				So(len(w.msgs), ShouldEqual, 1)
				msg := w.msgs[0]
				So(msg.Topic, ShouldEqual, "alerts")
				So(string(msg.Key), ShouldEqual, "acme")

				var decoded Alert
				So(json.Unmarshal(msg.Value, &decoded), ShouldBeNil)
				So(decoded.Current, ShouldEqual, compliance.Critical)
			})
		})

		Convey("When the writer fails", func() {
			w.err = errors.New("broker down")

			Convey("Then the error is returned", func() {
				So(p.Publish(context.Background(), sampleAlert()), ShouldNotBeNil)
			})
		})

		Convey("When closed", func() {
			So(p.Close(), ShouldBeNil)
			So(w.closed, ShouldBeTrue)
		})
	})

	Convey("Given no brokers", t, func() {
		_, err := NewKafkaPublisher(nil, "alerts")
		So(errors.Is(err, ErrNoBrokers), ShouldBeTrue)
	})

	Convey("Given brokers and no topic", t, func() {
		p, err := NewKafkaPublisher([]string{"localhost:9092"}, "")
		So(err, ShouldBeNil)
		So(p.topic, ShouldEqual, EventRiskChanged)
		So(p.Close(), ShouldBeNil)
	})
}

func TestLogPublisher(t *testing.T) {
	Convey("Given a log publisher", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithFormat("json"), logger.WithWriter(&buf)), ShouldBeNil)
		p := NewLogPublisher(logger.Get())

		Convey("Then alerts are logged", func() {
			So(p.Publish(context.Background(), sampleAlert()), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "compliance risk changed")
			So(buf.String(), ShouldContainSubstring, `"counterparty_id":"acme"`)
			So(p.Close(), ShouldBeNil)
		})
	})
}
