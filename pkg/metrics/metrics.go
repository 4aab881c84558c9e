package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pass metrics
	PassesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hostpin_passes_total",
			Help: "Total number of reconciliation passes",
		},
	)

	PassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hostpin_pass_duration_seconds",
			Help:    "Reconciliation pass duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	VariableFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpin_variable_failures_total",
			Help: "Total number of passes in which a monitored variable produced no address, by outcome",
		},
		[]string{"variable", "outcome"},
	)

	// Candidate metrics
	HealthyAddress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hostpin_healthy_address",
			Help: "Whether a monitored variable currently has an address to pin (1) or not (0)",
		},
		[]string{"variable"},
	)

	CandidatesTracked = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hostpin_candidates_tracked",
			Help: "Number of candidate addresses currently inside the recency window",
		},
		[]string{"variable"},
	)

	// Probe metrics
	ProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpin_probes_total",
			Help: "Total number of health probes by protocol and result",
		},
		[]string{"probe", "result"},
	)

	ProbeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostpin_probe_duration_seconds",
			Help:    "Health probe duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"probe"},
	)

	// Output metrics
	HostsRewrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hostpin_hosts_rewrites_total",
			Help: "Total number of hosts file rewrites",
		},
	)

	PushFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hostpin_metric_push_failures_total",
			Help: "Total number of failed pushes to the local metrics collector",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(PassesTotal)
	prometheus.MustRegister(PassDuration)
	prometheus.MustRegister(VariableFailures)
	prometheus.MustRegister(HealthyAddress)
	prometheus.MustRegister(CandidatesTracked)
	prometheus.MustRegister(ProbesTotal)
	prometheus.MustRegister(ProbeDuration)
	prometheus.MustRegister(HostsRewrites)
	prometheus.MustRegister(PushFailures)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
