package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Upload("front", ResultOK)
	m.Upload("front", ResultOK)
	m.Upload("back", ResultStoreFailed)
	m.Orphan("back")
	m.SignedURL(ResultOK)
	m.SignedURL(ResultSignFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploads.WithLabelValues("front", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("back", ResultStoreFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orphans.WithLabelValues("back")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signedURLs.WithLabelValues(ResultSignFailed)))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Upload("front", ResultOK)
		m.Orphan("front")
		m.SignedURL(ResultOK)
	})
}

func TestMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
