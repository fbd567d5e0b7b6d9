package download

import "github.com/prometheus/client_golang/prometheus"

var (
	transfersStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelhub",
			Subsystem: "download",
			Name:      "transfers_started_total",
			Help:      "Transfers started",
		},
	)

	transfersFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelhub",
			Subsystem: "download",
			Name:      "transfers_finished_total",
			Help:      "Transfers that reached a terminal state, by status",
		},
		[]string{"status"},
	)

	bytesDownloaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelhub",
			Subsystem: "download",
			Name:      "bytes_total",
			Help:      "Bytes written to temp files by transfers",
		},
	)

	activeTransfers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelhub",
			Subsystem: "download",
			Name:      "active_transfers",
			Help:      "Transfers currently in flight",
		},
	)

	orphansSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelhub",
			Subsystem: "download",
			Name:      "orphans_swept_total",
			Help:      "Stale temp files removed by the sweeper",
		},
	)
)

func init() {
	prometheus.MustRegister(transfersStarted, transfersFinished, bytesDownloaded, activeTransfers, orphansSwept)
}
