// Package metrics exposes Prometheus collectors for graph builds, queries
// and background jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Build metrics
	BuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncup_build_duration_seconds",
			Help:    "Duration of graph builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope"}, // "all", "catalog", "social"
	)

	BuildErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncup_build_errors_total",
			Help: "Total number of failed graph builds",
		},
		[]string{"scope"},
	)

	SimilarityVertices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncup_similarity_vertices",
			Help: "Tracks in the similarity graph",
		},
	)

	SimilarityEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncup_similarity_edges",
			Help: "Undirected links in the similarity graph",
		},
	)

	SocialUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncup_social_users",
			Help: "Users in the social graph",
		},
	)

	AutocompleteWords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncup_autocomplete_words",
			Help: "Titles in the autocomplete index",
		},
	)

	DanglingFollows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncup_dangling_follows_total",
			Help: "Follow references to unknown users skipped during builds",
		},
	)

	// Query metrics
	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncup_queries_total",
			Help: "Engine queries by operation",
		},
		[]string{"operation"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncup_query_duration_seconds",
			Help:    "Duration of engine queries in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	// Job metrics
	JobsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncup_jobs_started_total",
			Help: "Background jobs started by kind",
		},
		[]string{"kind"},
	)

	JobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncup_jobs_finished_total",
			Help: "Background jobs ended by kind and final status",
		},
		[]string{"kind", "status"},
	)

	JobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncup_jobs_running",
			Help: "Background jobs currently running",
		},
	)

	// Watcher metrics
	DataChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncup_data_changes_total",
			Help: "Data file change batches seen by the watcher",
		},
		[]string{"file"},
	)
)

// RecordBuild observes a finished build of the given scope
func RecordBuild(scope string, start time.Time, err error) {
	BuildDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
	if err != nil {
		BuildErrors.WithLabelValues(scope).Inc()
	}
}

// ObserveQuery counts a query and returns a func that records its duration.
//
//	defer metrics.ObserveQuery("recommend")()
func ObserveQuery(operation string) func() {
	Queries.WithLabelValues(operation).Inc()
	start := time.Now()
	return func() {
		QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// SetGraphSizes updates the size gauges after a mutation
func SetGraphSizes(vertices, edges, users, words int) {
	SimilarityVertices.Set(float64(vertices))
	SimilarityEdges.Set(float64(edges))
	SocialUsers.Set(float64(users))
	AutocompleteWords.Set(float64(words))
}
