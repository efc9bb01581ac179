package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters/histograms exposed by the cache tiers,
// LLM adapter and batch orchestrator, grounded on
// weather-alert-service/internal/observability/metrics.go's registration
// style (package-level vecs, injected registry for tests).
type Metrics struct {
	CacheHits      *prometheus.CounterVec // labels: tier
	CacheMisses    *prometheus.CounterVec // labels: tier
	SpatialBorrows prometheus.Counter
	APICalls       *prometheus.CounterVec // labels: provider
	LLMLatency     *prometheus.HistogramVec
	BatchProcessed prometheus.Counter
	BatchSucceeded prometheus.Counter
	BatchTimedOut  prometheus.Counter
	BatchErrored   prometheus.Counter
	ValidatorRejections *prometheus.CounterVec // labels: checker
}

// NewMetrics registers every metric against reg. Pass
// prometheus.NewRegistry() in tests to avoid global-registry collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weathercomment_cache_hits_total",
			Help: "Cache hits per tier (l1, l2, l3).",
		}, []string{"tier"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weathercomment_cache_misses_total",
			Help: "Cache misses per tier (l1, l2, l3).",
		}, []string{"tier"}),
		SpatialBorrows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weathercomment_spatial_borrows_total",
			Help: "Forecasts served via L3 spatial-neighbor borrow.",
		}),
		APICalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weathercomment_external_api_calls_total",
			Help: "External API calls per provider (weather, llm providers).",
		}, []string{"provider"}),
		LLMLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weathercomment_llm_latency_seconds",
			Help:    "LLM adapter call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		BatchProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weathercomment_batch_processed_total",
			Help: "Batch items processed.",
		}),
		BatchSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weathercomment_batch_succeeded_total",
			Help: "Batch items that succeeded.",
		}),
		BatchTimedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weathercomment_batch_timed_out_total",
			Help: "Batch items that timed out.",
		}),
		BatchErrored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weathercomment_batch_errored_total",
			Help: "Batch items that errored.",
		}),
		ValidatorRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weathercomment_validator_rejections_total",
			Help: "Validator rejections per checker.",
		}, []string{"checker"}),
	}
	reg.MustRegister(
		m.CacheHits, m.CacheMisses, m.SpatialBorrows, m.APICalls, m.LLMLatency,
		m.BatchProcessed, m.BatchSucceeded, m.BatchTimedOut, m.BatchErrored,
		m.ValidatorRejections,
	)
	return m
}
