package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels analyses that rendered a dashboard.
	OutcomeSuccess = "success"
	// OutcomeError labels analyses that failed upstream.
	OutcomeError = "error"
	// OutcomeInvalid labels analyses rejected before any network call.
	OutcomeInvalid = "invalid"
	// OutcomeSuperseded labels analyses discarded because a newer one started.
	OutcomeSuperseded = "superseded"
)

// Cache lookup results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

const namespace = "sentiment_dashboard"

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of dashboard analyses handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_seconds",
			Help:      "End-to-end analysis latency in seconds, including rendering.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 45},
		},
	)

	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the sentiment API by endpoint and HTTP status code.",
		},
		[]string{"endpoint", "code"},
	)

	upstreamDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_seconds",
			Help:      "Sentiment API request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	keywordCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_cache_lookups_total",
			Help:      "Keyword suggestion cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Register attaches sentiment-dashboard collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		upstreamRequestsTotal,
		upstreamDurationSeconds,
		keywordCacheLookups,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeError, OutcomeInvalid, OutcomeSuperseded:
	default:
		outcome = OutcomeError
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// ObserveUpstream records one sentiment API call. A zero code means the request
// never produced a response.
func ObserveUpstream(endpoint string, code int, duration time.Duration) {
	label := "transport_error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	upstreamRequestsTotal.WithLabelValues(endpoint, label).Inc()
	if duration < 0 {
		duration = 0
	}
	upstreamDurationSeconds.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveCacheLookup counts a keyword cache hit or miss.
func ObserveCacheLookup(hit bool) {
	if hit {
		keywordCacheLookups.WithLabelValues(CacheHit).Inc()
		return
	}
	keywordCacheLookups.WithLabelValues(CacheMiss).Inc()
}
