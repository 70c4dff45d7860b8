package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var GenerateRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "idbuilder",
		Subsystem: "generate",
		Name:      "requests_total",
		Help:      "Total number of ID generation requests by strategy and outcome.",
	},
	[]string{"id_type", "outcome"},
)

var GenerateDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "idbuilder",
		Subsystem: "generate",
		Name:      "duration_seconds",
		Help:      "ID generation request duration in seconds.",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	},
	[]string{"id_type"},
)

var CacheMissesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "idbuilder",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total number of sequence cache misses that fell through to storage.",
	},
	[]string{"id_type"},
)

var PrefetchFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "idbuilder",
		Subsystem: "cache",
		Name:      "prefetch_failures_total",
		Help:      "Total number of best-effort cache prefetches that failed.",
	},
	[]string{"id_type"},
)

var LockWaitDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "idbuilder",
		Subsystem: "storage",
		Name:      "lock_wait_seconds",
		Help:      "Time spent waiting to acquire a file storage lock.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	},
)

var SequenceExhaustedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "idbuilder",
		Subsystem: "sequence",
		Name:      "exhausted_total",
		Help:      "Total number of requests rejected because a sequence reached its configured bound.",
	},
	[]string{"name"},
)

var WorkerIDLeasesActive = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "idbuilder",
		Subsystem: "snowflake",
		Name:      "worker_id_leases_active",
		Help:      "Current number of held worker ID leases, by config name.",
	},
	[]string{"config"},
)

var WorkerIDLeaseExhaustedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "idbuilder",
		Subsystem: "snowflake",
		Name:      "worker_id_lease_exhausted_total",
		Help:      "Total number of worker ID lease requests rejected because the config's worker bit budget was fully leased.",
	},
	[]string{"config"},
)

var AuthFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "idbuilder",
		Subsystem: "auth",
		Name:      "failures_total",
		Help:      "Total number of requests rejected by token authentication, by reason.",
	},
	[]string{"reason"},
)

// All returns every idbuilder-specific metric for registration against a
// prometheus.Registerer.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		GenerateRequestsTotal,
		GenerateDuration,
		CacheMissesTotal,
		PrefetchFailuresTotal,
		LockWaitDuration,
		SequenceExhaustedTotal,
		WorkerIDLeasesActive,
		WorkerIDLeaseExhaustedTotal,
		AuthFailuresTotal,
	}
}

// NewMetricsRegistry creates a Prometheus registry with Go/process
// collectors plus every collector in extra (idbuilder's own All() and the
// httpserver package's request metrics).
func NewMetricsRegistry(extra ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range extra {
		reg.MustRegister(c)
	}
	return reg
}
