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

	r.RecordStudy("ema", "ok")
	r.RecordStudy("ema", "ok")
	r.RecordStudy("sar", "missing_column")
	r.RecordError("missing_column")
	r.RecordIsinLookup("hit")
	r.RecordSeriesRows("iex", 126)
	r.RecordLatency("study", 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.studyRuns.WithLabelValues("ema", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.studyRuns.WithLabelValues("sar", "missing_column")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("missing_column")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.isinLookups.WithLabelValues("hit")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.studyRuns))
}
