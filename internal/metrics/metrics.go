// Package metrics holds the Prometheus collectors for conversions, parsing
// and the HTTP API.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
)

const namespace = "jdate"

var durationBuckets = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}

// Metrics provides observability for conversions and requests. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Conversions        *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec
	ParseFailures      *prometheus.CounterVec
	BatchSize          prometheus.Histogram
	RequestCounter     *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. Passing
// prometheus.DefaultRegisterer exposes them on the default gatherer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Conversions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of processed conversions by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		ConversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Duration of single conversions",
				Buckets:   durationBuckets,
			},
			[]string{"mode"},
		),
		ParseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_failures_total",
				Help:      "Parse failures by reason",
			},
			[]string{"reason"},
		),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of inputs per batch",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// ObserveConversion records one conversion that started at start
func (m *Metrics) ObserveConversion(mode string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		m.ParseFailures.WithLabelValues(failureReason(err)).Inc()
	}
	m.Conversions.WithLabelValues(mode, outcome).Inc()
	m.ConversionDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// ObserveBatch records the size of a batch
func (m *Metrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(size))
}

// ObserveRequest records a finished HTTP request
func (m *Metrics) ObserveRequest(route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// failureReason maps an error to a small fixed label set
func failureReason(err error) string {
	switch {
	case errors.Is(err, errorutil.ErrMalformedOffset):
		return "malformed_offset"
	case errors.Is(err, errorutil.ErrInconsistentColon):
		return "inconsistent_colon"
	case errors.Is(err, errorutil.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, errorutil.ErrNoMatch):
		return "no_match"
	default:
		return "other"
	}
}
