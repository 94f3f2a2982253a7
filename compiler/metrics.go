package compiler

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	compiles *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bql_compiles_total",
			Help: "Number of queries compiled by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bql_compile_duration_seconds",
			Help:    "Time spent compiling a query.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.compiles, m.duration)
	}
	return m
}
