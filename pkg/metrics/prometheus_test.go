package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordFetch("llama", "ok")
	r.RecordFetch("llama", "ok")
	r.RecordFetch("llama", "error")
	r.RecordUnavailable("transport")
	r.RecordDegenerateDays(3)
	r.RecordComposite(7.5, 6.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetchesTotal.WithLabelValues("llama", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchesTotal.WithLabelValues("llama", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.unavailableTotal.WithLabelValues("transport")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.degenerateDays))
	assert.Equal(t, 7.5, testutil.ToFloat64(r.compositeRate.WithLabelValues("composite")))
	assert.Equal(t, 6.25, testutil.ToFloat64(r.compositeRate.WithLabelValues("trend")))
}
