package monitoring_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/paveg/scrub/internal/monitoring"
)

func TestMetricsCollector(t *testing.T) {
	t.Run("disabled collector runs but does not record", func(t *testing.T) {
		collector := monitoring.NewMetricsCollector(false)

		calls := 0
		err := collector.RecordStage("normalize", 10, func() error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("nil collector runs fn", func(t *testing.T) {
		var collector *monitoring.MetricsCollector
		calls := 0
		require.NoError(t, collector.RecordStage("x", 1, func() error { calls++; return nil }))
		assert.Equal(t, 1, calls)
		assert.False(t, collector.IsEnabled())
	})

	t.Run("records stage with rows and failure", func(t *testing.T) {
		collector := monitoring.NewMetricsCollector(true)
		boom := errors.New("boom")

		require.NoError(t, collector.RecordStage("load", 100, func() error {
			time.Sleep(time.Millisecond)
			return nil
		}))
		err := collector.RecordStage("impute", 100, func() error { return boom })
		assert.ErrorIs(t, err, boom)

		metrics := collector.GetMetrics()
		require.Len(t, metrics, 2)
		assert.Equal(t, "load", metrics[0].Stage)
		assert.Equal(t, int64(100), metrics[0].RowsProcessed)
		assert.GreaterOrEqual(t, metrics[0].Duration, time.Millisecond)
		assert.False(t, metrics[0].Failed)
		assert.True(t, metrics[1].Failed)
	})

	t.Run("summary", func(t *testing.T) {
		collector := monitoring.NewMetricsCollector(true)
		for _, stage := range []string{"a", "b", "a"} {
			require.NoError(t, collector.RecordStage(stage, 5, func() error { return nil }))
		}

		s := collector.GetSummary()
		assert.Equal(t, 3, s.TotalStages)
		assert.Equal(t, int64(15), s.TotalRows)
		assert.Equal(t, 2, s.StageCounts["a"])
		assert.Equal(t, 0, s.Failures)

		collector.Clear()
		assert.Equal(t, monitoring.MetricsSummary{}, collector.GetSummary())
	})

	t.Run("toggle", func(t *testing.T) {
		collector := monitoring.NewMetricsCollector(false)
		collector.SetEnabled(true)
		assert.True(t, collector.IsEnabled())
	})

	t.Run("concurrent recording", func(t *testing.T) {
		collector := monitoring.NewMetricsCollector(true)
		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = collector.RecordStage("s", 1, func() error { return nil })
			}()
		}
		wg.Wait()
		assert.Len(t, collector.GetMetrics(), 10)
	})
}

func TestLogSummary(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	collector := monitoring.NewMetricsCollector(true)
	require.NoError(t, collector.RecordStage("load", 3, func() error { return nil }))

	collector.LogSummary(zap.New(core))

	assert.Equal(t, 1, logs.FilterMessage("stage finished").Len())
	entries := logs.FilterMessage("pipeline metrics").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["total_rows"])
}
