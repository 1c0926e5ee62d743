package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "oauthrisk"
)

var (
	assessmentDurationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}

	// Assessment Metrics
	AssessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assessments_total",
		Help:      "Count of completed app risk assessments by severity.",
	}, []string{"severity"})

	AssessmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "assessment_duration_seconds",
		Help:      "Time taken to assess a single app.",
		Buckets:   assessmentDurationBuckets,
	})

	AssessmentFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assessment_failures_total",
		Help:      "Count of assessment requests rejected before scoring.",
	}, []string{"reason"})

	AnomaliesDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "anomalies_detected_total",
		Help:      "Count of detected behavioral anomalies by pattern.",
	}, []string{"pattern_id"})

	RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Count of emitted remediation recommendations.",
	}, []string{"category", "priority"})

	// Scope Library Metrics
	ScopeLibraryRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scope_library_refreshes_total",
		Help:      "Count of scope library reloads.",
	}, []string{"source", "status"})

	ScopeLibraryEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scope_library_entries",
		Help:      "Number of entries in the live scope library.",
	})
)
