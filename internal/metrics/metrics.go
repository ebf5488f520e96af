// Package metrics holds the Prometheus collectors shared by the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream catalog metrics
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tvmaze_requests_total",
			Help: "Total number of requests sent to the tvmaze API.",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tvmaze_request_duration_seconds",
			Help:    "Latency of requests sent to the tvmaze API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Article store metrics
var (
	ArticleMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_mutations_total",
			Help: "Total number of article create/update/delete operations.",
		},
		[]string{"op", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		ArticleMutationsTotal,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
