// Package metrics records multipart parsing as Prometheus metrics.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mazrean/partstream"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// Observer is a partstream.Observer backed by Prometheus collectors.
type Observer struct {
	partsDiscovered *prometheus.CounterVec
	partsDrained    *prometheus.CounterVec
	partBytes       *prometheus.HistogramVec
	sessions        *prometheus.CounterVec
	sessionParts    prometheus.Histogram
	inflight        prometheus.Gauge
}

var _ partstream.Observer = (*Observer)(nil)

// NewObserver creates the collectors under namespace and registers them with reg.
func NewObserver(namespace string, reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		partsDiscovered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "part",
				Name:      "discovered_total",
				Help:      "File parts handed to a handler.",
			},
			[]string{"field"},
		),
		partsDrained: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "part",
				Name:      "drained_total",
				Help:      "File parts that reached a terminal state.",
			},
			[]string{"field", "result"},
		),
		partBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "part",
				Name:      "size_bytes",
				Help:      "Bytes read from a file part.",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
			[]string{"field"},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "completed_total",
				Help:      "Finished multipart parsings.",
			},
			[]string{"result", "cause"},
		),
		sessionParts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "parts",
				Help:      "File parts per multipart body.",
				Buckets:   prometheus.LinearBuckets(0, 1, 10),
			},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "part",
				Name:      "inflight",
				Help:      "File parts discovered but not drained yet.",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		o.partsDiscovered,
		o.partsDrained,
		o.partBytes,
		o.sessions,
		o.sessionParts,
		o.inflight,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return o, nil
}

func (o *Observer) PartDiscovered(name string) {
	o.partsDiscovered.WithLabelValues(name).Inc()
	o.inflight.Inc()
}

func (o *Observer) PartDrained(name string, size int64, err error) {
	o.inflight.Dec()
	o.partsDrained.WithLabelValues(name, result(err)).Inc()
	o.partBytes.WithLabelValues(name).Observe(float64(size))
}

func (o *Observer) SessionCompleted(parts int, err error) {
	o.sessions.WithLabelValues(result(err), cause(err)).Inc()
	o.sessionParts.Observe(float64(parts))
}

func result(err error) string {
	if err != nil {
		return resultError
	}

	return resultOK
}

// cause keeps the label set small.
func cause(err error) string {
	switch {
	case err == nil:
		return "none"
	case partstream.IsHandlerError(err):
		return "handler"
	case errors.Is(err, partstream.ErrNotMultipart):
		return "not_multipart"
	case errors.Is(err, partstream.ErrCanceled):
		return "canceled"
	case errors.Is(err, partstream.ErrTooManyParts),
		errors.Is(err, partstream.ErrTooManyFields),
		errors.Is(err, partstream.ErrTooManyHeaders),
		errors.Is(err, partstream.ErrFileTooLarge),
		errors.Is(err, partstream.ErrFieldTooLarge):
		return "limit"
	default:
		return "body"
	}
}
