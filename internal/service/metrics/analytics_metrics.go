package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	AnalyticsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradepulse",
			Subsystem: "analytics",
			Name:      "latency_seconds",
			Help:      "Latency of model service endpoints",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)

	AnalyticsErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "analytics",
			Name:      "errors_total",
			Help:      "Errors by model service endpoint",
		},
		[]string{"endpoint"},
	)
)

// Register adds the analytics collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(AnalyticsLatency, AnalyticsErrors)
	})
}

// ObserveAnalytics records one model service call.
func ObserveAnalytics(endpoint string, d time.Duration, err error) {
	AnalyticsLatency.WithLabelValues(endpoint).Observe(d.Seconds())
	if err != nil {
		AnalyticsErrors.WithLabelValues(endpoint).Inc()
	}
}
