package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/communities/metrics"
)

func TestRecorder(t *testing.T) {
	r := metrics.NewRecorder("")
	r.ObserveExchange("population")
	r.ObserveExchange("population")
	r.ObserveExchange("partisanship")
	r.ObserveIteration("population", 3.5, 120)
	r.ObserveIteration("population", 1.25, 80)
	r.FillRejections.Add(4)
	r.Communities.Set(6)
	r.ObserveStage("fill", 20*time.Millisecond)
	r.ObserveFailure("link")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Exchanges.WithLabelValues("population")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Exchanges.WithLabelValues("partisanship")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Iterations.WithLabelValues("population")))
	assert.Equal(t, 1.25, testutil.ToFloat64(r.Worst.WithLabelValues("population")))
	assert.Equal(t, 80.0, testutil.ToFloat64(r.Aggregate.WithLabelValues("population")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.FillRejections))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Failures.WithLabelValues("link")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.StageDuration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := metrics.NewRecorder("test")
	r.Communities.Set(3)

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test_communities 3")
}
