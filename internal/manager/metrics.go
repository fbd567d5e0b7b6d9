package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelhub",
			Subsystem: "cache",
			Name:      "loads_total",
			Help:      "Native model constructions, by result",
		},
		[]string{"result"},
	)

	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelhub",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Loads served from a resident handle",
		},
	)

	cacheUnloads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelhub",
			Subsystem: "cache",
			Name:      "unloads_total",
			Help:      "Handles released",
		},
	)

	cacheResident = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelhub",
			Subsystem: "cache",
			Name:      "resident_models",
			Help:      "Handles currently resident",
		},
	)

	loadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modelhub",
			Subsystem: "cache",
			Name:      "load_duration_seconds",
			Help:      "Duration of native model construction",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(cacheLoads, cacheHits, cacheUnloads, cacheResident, loadDuration)
}
