package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus metrics of one or more schedulers.
type Metrics struct {
	Decoded        prometheus.Counter
	Failed         prometheus.Counter
	Deferred       prometheus.Counter
	DecodeDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	decoded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lodsnap_scheduler_fields_decoded_total",
		Help: "Total payload fields decoded",
	})

	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lodsnap_scheduler_fields_failed_total",
		Help: "Total payload fields that failed to decode",
	})

	deferred := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lodsnap_scheduler_fields_deferred_total",
		Help: "Total payload fields deferred to a later pass",
	})

	decodeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lodsnap_scheduler_field_decode_seconds",
		Help:    "Time spent decoding one payload field",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	reg.MustRegister(decoded, failed, deferred, decodeDuration)

	return &Metrics{
		Decoded:        decoded,
		Failed:         failed,
		Deferred:       deferred,
		DecodeDuration: decodeDuration,
	}
}
