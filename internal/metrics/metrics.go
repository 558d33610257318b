// Package metrics provides the Prometheus metrics the controller exposes.
// Four metric names are pinned by the external interface contract (no
// namespace prefix); additional controller-internal metrics use the
// failoverctl_ namespace, following the same promauto-based style used
// elsewhere in the example corpus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric except the four pinned names required
// by the external interface contract.
const Namespace = "failoverctl"

// Required metric names, exact per contract.
var (
	// DNSQueryDuration observes probe latency per provider/nameserver.
	DNSQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dns_query_duration_seconds",
			Help:    "Duration of DNS health probes.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "nameserver"},
	)

	// DNSQuerySuccessTotal counts successful probes.
	DNSQuerySuccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dns_query_success_total",
			Help: "Total number of successful DNS health probes.",
		},
		[]string{"provider", "nameserver"},
	)

	// DNSQueryFailureTotal counts failed probes.
	DNSQueryFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dns_query_failure_total",
			Help: "Total number of failed DNS health probes.",
		},
		[]string{"provider", "nameserver"},
	)

	// DNSProviderHealthScore is the last computed composite score, in
	// [0,100], for a provider.
	DNSProviderHealthScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dns_provider_health_score",
			Help: "Composite health score per provider, in [0,100].",
		},
		[]string{"provider"},
	)
)

// Controller-internal metrics.
var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "build_info",
			Help:      "Build information for failoverctl.",
		},
		[]string{"version", "go_version"},
	)

	// FailoverTransitionsTotal counts accepted state transitions by
	// destination state.
	FailoverTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transitions_total",
			Help:      "Total number of accepted state transitions, by destination state.",
		},
		[]string{"to"},
	)

	// SafetyRejectionsTotal counts transitions refused by a safety gate,
	// by reason.
	SafetyRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "safety_rejections_total",
			Help:      "Total number of transitions refused by a safety gate.",
		},
		[]string{"reason"},
	)

	// FailoverLedgerSize tracks the current 24-hour rolling ledger size.
	FailoverLedgerSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "ledger_size",
			Help:      "Number of FAILING_OVER entries in the current 24-hour window.",
		},
	)

	// ControllerState tracks the current controller state as a 1/0 gauge
	// per state label, so a single PromQL query can chart state over time.
	ControllerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "state",
			Help:      "1 for the currently active state, 0 for all others.",
		},
		[]string{"state"},
	)
)

// SetBuildInfo sets the build info metric with version and go version.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}

// Recorder adapts the package-level Prometheus collectors to the narrow
// MetricsSink interface monitor.Monitor depends on.
type Recorder struct{}

// NewRecorder returns a Recorder writing to the package-level collectors.
func NewRecorder() Recorder { return Recorder{} }

func (Recorder) ObserveDuration(provider, nameserver string, seconds float64) {
	DNSQueryDuration.WithLabelValues(provider, nameserver).Observe(seconds)
}

func (Recorder) IncSuccess(provider, nameserver string) {
	DNSQuerySuccessTotal.WithLabelValues(provider, nameserver).Inc()
}

func (Recorder) IncFailure(provider, nameserver string) {
	DNSQueryFailureTotal.WithLabelValues(provider, nameserver).Inc()
}

func (Recorder) SetHealthScore(provider string, score float64) {
	DNSProviderHealthScore.WithLabelValues(provider).Set(score)
}

// RecordTransition updates the transition/state gauges after a commit.
func RecordTransition(from, to string) {
	FailoverTransitionsTotal.WithLabelValues(to).Inc()
	ControllerState.WithLabelValues(from).Set(0)
	ControllerState.WithLabelValues(to).Set(1)
}

// RecordSafetyRejection increments the rejection counter for reason.
func RecordSafetyRejection(reason string) {
	SafetyRejectionsTotal.WithLabelValues(reason).Inc()
}
