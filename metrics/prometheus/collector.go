// Package prometheus exports vocab operation metrics to Prometheus.
//
//	c, _ := prometheus.NewCollector(prom.DefaultRegisterer, "vocab")
//	b, _ := vocab.NewBuilder(128, 1<<16, vocab.WithMetricsCollector(c))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/vocab"
)

var _ vocab.MetricsCollector = (*Collector)(nil)

// Collector implements vocab.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency    *prometheus.HistogramVec
	keys         *prometheus.CounterVec
	growths      prometheus.Counter
	capacity     prometheus.Gauge
	publishBytes prometheus.Counter
}

// NewCollector creates the metrics under namespace and registers them
// with reg.
func NewCollector(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of vocabulary operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		keys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_total",
			Help:      "Keys processed per operation",
		}, []string{"op"}),
		growths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "growths_total",
			Help:      "Growth steps of the slot arrays",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capacity_slots",
			Help:      "Slot capacity after the latest growth step",
		}),
		publishBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_bytes_total",
			Help:      "Snapshot bytes published to blob stores",
		}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.keys, c.growths, c.capacity, c.publishBytes} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAccumulate implements vocab.MetricsCollector.
func (c *Collector) RecordAccumulate(keys int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("accumulate", status(err)).Observe(d.Seconds())
	c.keys.WithLabelValues("accumulate").Add(float64(keys))
}

// RecordFind implements vocab.MetricsCollector.
func (c *Collector) RecordFind(keys int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("find", status(err)).Observe(d.Seconds())
	c.keys.WithLabelValues("find").Add(float64(keys))
}

// RecordGrow implements vocab.MetricsCollector.
func (c *Collector) RecordGrow(_, newCapacity int) {
	c.growths.Inc()
	c.capacity.Set(float64(newCapacity))
}

// RecordPublish implements vocab.MetricsCollector.
func (c *Collector) RecordPublish(bytes int64, d time.Duration, err error) {
	c.opLatency.WithLabelValues("publish", status(err)).Observe(d.Seconds())
	if err == nil {
		c.publishBytes.Add(float64(bytes))
	}
}
