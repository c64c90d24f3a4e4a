package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
)

func TestObserveConversion(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	start := time.Now()
	m.ObserveConversion("to-jalali", start, nil)
	m.ObserveConversion("to-jalali", start, nil)
	m.ObserveConversion("reformat", start, errorutil.NewParseError("x", "%Y", nil))
	m.ObserveConversion("reformat", start, fmt.Errorf("wrap: %w", errorutil.NewRangeError("year", 0, 1, 9377)))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Conversions.WithLabelValues("to-jalali", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Conversions.WithLabelValues("reformat", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFailures.WithLabelValues("no_match")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFailures.WithLabelValues("out_of_range")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ConversionDuration))
}

func TestObserveRequestAndBatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("/v1/today", http.StatusOK, time.Now())
	m.ObserveRequest("/v1/parse", http.StatusBadRequest, time.Now())
	m.ObserveBatch(12)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("/v1/parse", "400")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestCounter))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["jdate_batch_size"])
	assert.True(t, names["jdate_http_requests_total"])
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveConversion("to-jalali", time.Now(), nil)
		m.ObserveBatch(1)
		m.ObserveRequest("/healthz", http.StatusOK, time.Now())
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
