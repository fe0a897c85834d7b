// Package metrics exposes post-processing and validation counters to
// Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Match kinds and outcomes used as label values
const (
	KindDNSProxy     = "dns_proxy"
	KindProxyService = "proxy_service"

	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// RunsTotal tracks post-processing runs by result
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infragraph_runs_total",
			Help: "Total number of post-processing runs",
		},
		[]string{"result"},
	)

	// RunDuration tracks how long a post-processing run takes
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "infragraph_run_duration_seconds",
			Help:    "Duration of post-processing runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	// MatchesTotal tracks matcher outcomes per entity
	MatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infragraph_matches_total",
			Help: "Total number of matcher outcomes",
		},
		[]string{"kind", "outcome"},
	)

	// RelationshipsCreatedTotal tracks inserted edges by relation type
	RelationshipsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infragraph_relationships_created_total",
			Help: "Total number of relationships inserted",
		},
		[]string{"type"},
	)

	// StoreRelationships tracks the edge count after the last write
	StoreRelationships = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "infragraph_store_relationships",
			Help: "Number of relationships in the store after the last run",
		},
	)

	// ValidationFindings tracks the last validation pass
	ValidationFindings = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "infragraph_validation_findings",
			Help: "Errors and warnings reported by the last validation",
		},
		[]string{"severity"},
	)

	// ValidationValid is 1 when the last validation passed
	ValidationValid = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "infragraph_validation_valid",
			Help: "Whether the last validation passed",
		},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(RunsTotal)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(MatchesTotal)
	prometheus.MustRegister(RelationshipsCreatedTotal)
	prometheus.MustRegister(StoreRelationships)
	prometheus.MustRegister(ValidationFindings)
	prometheus.MustRegister(ValidationValid)
}

// ObserveMatches adds one matcher's outcome
func ObserveMatches(kind string, matched, unmatched int) {
	MatchesTotal.WithLabelValues(kind, OutcomeMatched).Add(float64(matched))
	MatchesTotal.WithLabelValues(kind, OutcomeUnmatched).Add(float64(unmatched))
}

// ObserveValidation records the outcome of a validation pass
func ObserveValidation(valid bool, errors, warnings int) {
	ValidationFindings.WithLabelValues("error").Set(float64(errors))
	ValidationFindings.WithLabelValues("warning").Set(float64(warnings))
	if valid {
		ValidationValid.Set(1)
	} else {
		ValidationValid.Set(0)
	}
}
