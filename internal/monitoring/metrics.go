// Package monitoring records how long each pipeline stage took and how many
// rows it handled.
package monitoring

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StageMetrics represents metrics for a single pipeline stage.
type StageMetrics struct {
	Stage         string        `json:"stage"`
	Duration      time.Duration `json:"duration"`
	RowsProcessed int64         `json:"rows_processed"`
	MemoryUsed    int64         `json:"memory_used"`
	Failed        bool          `json:"failed"`
}

// MetricsCollector collects and stores stage metrics.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []StageMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]StageMetrics, 0),
		enabled: enabled,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	if mc == nil {
		return false
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// RecordStage executes fn and records its duration against stage. rows is
// the number of rows the stage was handed. A nil collector just runs fn.
func (mc *MetricsCollector) RecordStage(stage string, rows int, fn func() error) error {
	if !mc.IsEnabled() {
		return fn()
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	metrics := StageMetrics{
		Stage:         stage,
		Duration:      duration,
		RowsProcessed: int64(rows),
		MemoryUsed:    int64(memAfter.TotalAlloc - memBefore.TotalAlloc), //nolint:gosec // monotonic counter
		Failed:        err != nil,
	}

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, metrics)
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []StageMetrics {
	if mc == nil {
		return nil
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]StageMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	metrics := mc.GetMetrics()
	if len(metrics) == 0 {
		return MetricsSummary{}
	}

	var summary MetricsSummary
	summary.StageCounts = make(map[string]int)
	for _, m := range metrics {
		summary.TotalDuration += m.Duration
		summary.TotalMemory += m.MemoryUsed
		summary.TotalRows += m.RowsProcessed
		summary.StageCounts[m.Stage]++
		if m.Failed {
			summary.Failures++
		}
	}
	summary.TotalStages = len(metrics)
	summary.AverageDuration = summary.TotalDuration / time.Duration(len(metrics))
	return summary
}

// LogSummary writes one debug line per stage and an info line with totals.
func (mc *MetricsCollector) LogSummary(logger *zap.Logger) {
	if !mc.IsEnabled() {
		return
	}
	for _, m := range mc.GetMetrics() {
		logger.Debug("stage finished",
			zap.String("stage", m.Stage),
			zap.Duration("duration", m.Duration),
			zap.Int64("rows", m.RowsProcessed),
			zap.Bool("failed", m.Failed),
		)
	}
	s := mc.GetSummary()
	logger.Info("pipeline metrics",
		zap.Int("stages", s.TotalStages),
		zap.Duration("total_duration", s.TotalDuration),
		zap.Int64("total_rows", s.TotalRows),
		zap.Int("failures", s.Failures),
	)
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalStages     int            `json:"total_stages"`
	TotalDuration   time.Duration  `json:"total_duration"`
	TotalMemory     int64          `json:"total_memory"`
	TotalRows       int64          `json:"total_rows"`
	Failures        int            `json:"failures"`
	StageCounts     map[string]int `json:"stage_counts"`
	AverageDuration time.Duration  `json:"average_duration"`
}
