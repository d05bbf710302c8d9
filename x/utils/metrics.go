package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that counts processed messages and observes how
// long it took to process them. Only Deliver calls are instrumented.
type Metrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ custody.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator with all collectors registered in
// the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "custody",
			Name:      "deliver_total",
			Help:      "Number of delivered messages, by path and result code.",
		}, []string{"path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "custody",
			Name:      "deliver_duration_seconds",
			Help:      "Time spent delivering a message, by path.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"path"}),
	}
	reg.MustRegister(m.total, m.duration)
	return m
}

// Check passes the call through.
func (m *Metrics) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	return next.Check(ctx, store, tx)
}

// Deliver records the result code and duration of the call.
func (m *Metrics) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)

	path := custody.GetPath(tx)
	m.duration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	m.total.WithLabelValues(path, codeLabel(err)).Inc()
	return res, err
}

func codeLabel(err error) string {
	if err == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(errors.Code(err)), 10)
}
