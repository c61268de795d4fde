package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	QuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "perps_quotes_total",
		Help: "Quotes served, by kind and result",
	}, []string{"kind", "result"})

	QuoteLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "perps_quote_latency_seconds",
		Help:    "Time to compute a quote",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	RouteCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "perps_route_candidates",
		Help:    "Candidate swap paths evaluated per swap quote",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})

	SnapshotVersion = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "perps_snapshot_version",
		Help: "Version of the last market snapshot used, per chain",
	}, []string{"chain_id"})

	GraphBuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "perps_swap_graph_builds_total",
		Help: "Number of swap graph rebuilds",
	})

	JournalErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "perps_quote_journal_errors_total",
		Help: "Failed quote journal writes",
	})

	GasPriceWei = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "perps_gas_price_wei",
		Help: "Last gas price read from the chain RPC",
	})

	RPCErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "perps_rpc_errors_total",
		Help: "Failed chain RPC attempts, by method",
	}, []string{"method"})
)

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultNoRoute  = "no_route"
	ResultError    = "error"
)

func init() {
	prometheus.MustRegister(
		QuotesTotal,
		QuoteLatency,
		RouteCandidates,
		SnapshotVersion,
		GraphBuilds,
		JournalErrors,
		GasPriceWei,
		RPCErrors,
	)
}
