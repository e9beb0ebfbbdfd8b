package youtube

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var upstreamCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tubelens",
	Subsystem: "youtube",
	Name:      "calls_total",
	Help:      "Count of YouTube Data API calls by method and status",
}, []string{"method", "status"})

var upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "tubelens",
	Subsystem: "youtube",
	Name:      "call_duration_seconds",
	Help:      "Duration of YouTube Data API calls",
	Buckets:   prometheus.DefBuckets,
}, []string{"method"})

func observeCall(method string, err error, start time.Time) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	upstreamCalls.WithLabelValues(method, status).Inc()
	upstreamDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
