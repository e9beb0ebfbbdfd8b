package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tubelens",
	Subsystem: "analyzer",
	Name:      "analyses_total",
	Help:      "Count of analysis requests by youtube type and outcome",
}, []string{"youtube_type", "outcome"})

func observe(t string, err error) {
	analysesTotal.WithLabelValues(t, outcome(err)).Inc()
}
