package vocab

import (
	"log/slog"

	"github.com/hupe1980/vocab/codec"
	"github.com/hupe1980/vocab/persistence"
	"github.com/hupe1980/vocab/resource"
)

type options struct {
	initialCapacity  int
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
	compression      persistence.Compression
	codec            codec.Codec
}

// Option configures Builder, Vocabulary and publish behavior.
type Option func(*options)

// WithInitialCapacity preallocates n slots. Values below the probe width are
// raised to the probe width. Slots past the probe width are overflow headroom
// that avoids early growth steps; Accumulate trims unused headroom after every
// batch, so this mainly matters for the first batch.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.initialCapacity = n
	}
}

// WithResourceController charges slot memory against rc, takes FindParallel
// workers from its background slots and paces Publish with its IO limit.
//
// Example:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	b, _ := vocab.NewBuilder(128, 1<<20, vocab.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vocab.BasicMetricsCollector{}
//	b, _ := vocab.NewBuilder(128, 1<<16, vocab.WithMetricsCollector(metrics))
//	// ... accumulate ...
//	stats := metrics.GetStats()
//	fmt.Printf("Batches: %d, Growths: %d\n", stats.AccumulateCount, stats.GrowCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCompression selects the snapshot compression used by WriteTo, Save
// and Publish. Defaults to LZ4.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec configures the codec used for publish manifests.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		compression:      persistence.CompressionLZ4,
		codec:            codec.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
