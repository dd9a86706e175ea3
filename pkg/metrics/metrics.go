package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ContentFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resources", Name: "content_fetch_total", Help: "Content store fetches by query and outcome."},
		[]string{"query", "outcome"},
	)
	ContentFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "resources", Name: "content_fetch_duration_seconds", Help: "Latency of content store fetches.", Buckets: prometheus.DefBuckets},
		[]string{"query"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resources", Name: "content_cache_lookups_total", Help: "Staleness cache lookups by result (hit, miss, error)."},
		[]string{"result"},
	)
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resources", Name: "search_requests_total", Help: "Search endpoint requests by mode (all, filtered) and outcome."},
		[]string{"mode", "outcome"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "resources", Name: "http_request_duration_seconds", Help: "HTTP request latency by route and status.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "status"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ContentFetches)
	reg.MustRegister(ContentFetchDuration)
	reg.MustRegister(CacheLookups)
	reg.MustRegister(SearchRequests)
	reg.MustRegister(HTTPRequestDuration)
}
