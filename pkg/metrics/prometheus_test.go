package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordFallback("synthetic")
	r.RecordFallback("synthetic")
	r.RecordError("redis")
	r.RecordMessageSent("market.events", "AAPL")
	r.RecordScreening("neutral", 6, 2)
	r.RecordConfidence("LONG_CALL", 0.6)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fallbacks.WithLabelValues("synthetic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("redis")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.messagesSent.WithLabelValues("market.events", "AAPL")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.universe))
}

func TestRecordersOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
