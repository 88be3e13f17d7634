package readables

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hardboiled_feed_requests_total",
		Help: "The total number of readables feed pages requested",
	}, []string{"filter"})

	feedQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hardboiled_feed_query_duration_seconds",
		Help:    "Duration of the readables data and count queries",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // Start at 1ms, double each bucket, 12 buckets
	}, []string{"query"})

	relationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hardboiled_relation_failures_total",
		Help: "Relation fields left unresolved in a feed page",
	}, []string{"field"})
)
