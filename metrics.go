package vocab

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see the
// metrics/prometheus package for a Prometheus implementation.
type MetricsCollector interface {
	// RecordAccumulate is called after each accumulate batch.
	// keys is the batch size, err is nil if every key was committed.
	RecordAccumulate(keys int, duration time.Duration, err error)

	// RecordFind is called after each lookup batch.
	RecordFind(keys int, duration time.Duration, err error)

	// RecordGrow is called after each growth step of the slot arrays.
	RecordGrow(oldCapacity, newCapacity int)

	// RecordPublish is called after each publish to a blob store.
	// bytes is the size of the snapshot blob.
	RecordPublish(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAccumulate(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFind(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordGrow(int, int)                        {}
func (NoopMetricsCollector) RecordPublish(int64, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AccumulateCount      atomic.Int64
	AccumulateKeys       atomic.Int64
	AccumulateErrors     atomic.Int64
	AccumulateTotalNanos atomic.Int64
	FindCount            atomic.Int64
	FindKeys             atomic.Int64
	FindErrors           atomic.Int64
	FindTotalNanos       atomic.Int64
	GrowCount            atomic.Int64
	Capacity             atomic.Int64
	PublishCount         atomic.Int64
	PublishBytes         atomic.Int64
	PublishErrors        atomic.Int64
}

// RecordAccumulate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAccumulate(keys int, duration time.Duration, err error) {
	b.AccumulateCount.Add(1)
	b.AccumulateKeys.Add(int64(keys))
	b.AccumulateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AccumulateErrors.Add(1)
	}
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(keys int, duration time.Duration, err error) {
	b.FindCount.Add(1)
	b.FindKeys.Add(int64(keys))
	b.FindTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FindErrors.Add(1)
	}
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(_, newCapacity int) {
	b.GrowCount.Add(1)
	b.Capacity.Store(int64(newCapacity))
}

// RecordPublish implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPublish(bytes int64, _ time.Duration, err error) {
	b.PublishCount.Add(1)
	if err != nil {
		b.PublishErrors.Add(1)
		return
	}
	b.PublishBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AccumulateCount:    b.AccumulateCount.Load(),
		AccumulateKeys:     b.AccumulateKeys.Load(),
		AccumulateErrors:   b.AccumulateErrors.Load(),
		AccumulateAvgNanos: avgNanos(b.AccumulateTotalNanos.Load(), b.AccumulateCount.Load()),
		FindCount:          b.FindCount.Load(),
		FindKeys:           b.FindKeys.Load(),
		FindErrors:         b.FindErrors.Load(),
		FindAvgNanos:       avgNanos(b.FindTotalNanos.Load(), b.FindCount.Load()),
		GrowCount:          b.GrowCount.Load(),
		Capacity:           b.Capacity.Load(),
		PublishCount:       b.PublishCount.Load(),
		PublishBytes:       b.PublishBytes.Load(),
		PublishErrors:      b.PublishErrors.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AccumulateCount    int64
	AccumulateKeys     int64
	AccumulateErrors   int64
	AccumulateAvgNanos int64
	FindCount          int64
	FindKeys           int64
	FindErrors         int64
	FindAvgNanos       int64
	GrowCount          int64
	Capacity           int64 // capacity after the latest growth
	PublishCount       int64
	PublishBytes       int64
	PublishErrors      int64
}
