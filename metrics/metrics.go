// Package metrics exposes Prometheus instrumentation for the policy
// lifecycle. Collectors are registered on a dedicated registry so tests
// can create independent instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	// PoliciesCreated counts successful policy creations.
	PoliciesCreated prometheus.Counter

	// TranslationFailures counts create attempts aborted by translation.
	TranslationFailures prometheus.Counter

	// DuplicateChecks counts detection runs by path ("embedding", "llm").
	DuplicateChecks *prometheus.CounterVec

	// LLMRequests counts requests to the AI boundary by outcome
	// ("ok", "transport_error", "malformed").
	LLMRequests *prometheus.CounterVec

	// EmbeddingJobs counts async embedding jobs by outcome.
	EmbeddingJobs *prometheus.CounterVec

	// CreateDuration observes end-to-end create latency in seconds,
	// translation included.
	CreateDuration prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PoliciesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "policyhub_policies_created_total",
			Help: "Successful policy creations.",
		}),
		TranslationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "policyhub_translation_failures_total",
			Help: "Create attempts aborted because translation failed.",
		}),
		DuplicateChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policyhub_duplicate_checks_total",
			Help: "Duplicate detection runs by strategy path.",
		}, []string{"path"}),
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policyhub_llm_requests_total",
			Help: "AI boundary requests by outcome.",
		}, []string{"outcome"}),
		EmbeddingJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policyhub_embedding_jobs_total",
			Help: "Async embedding jobs by outcome.",
		}, []string{"outcome"}),
		CreateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "policyhub_create_duration_seconds",
			Help:    "End-to-end policy create latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.PoliciesCreated,
		m.TranslationFailures,
		m.DuplicateChecks,
		m.LLMRequests,
		m.EmbeddingJobs,
		m.CreateDuration,
	)
	return m
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
