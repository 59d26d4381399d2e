// Package metrics exposes Prometheus collectors for the admission engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	admissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "college_event",
		Subsystem: "admission",
		Name:      "submissions_total",
		Help:      "Registration submissions by outcome reason code.",
	}, []string{"outcome"})

	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "college_event",
		Subsystem: "lifecycle",
		Name:      "transitions_total",
		Help:      "Lifecycle transitions by target status.",
	}, []string{"target"})

	fanoutPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "college_event",
		Subsystem: "fanout",
		Name:      "published_total",
		Help:      "Fan-out events published by topic class.",
	}, []string{"topic"})

	fanoutDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "college_event",
		Subsystem: "fanout",
		Name:      "dropped_total",
		Help:      "Fan-out events dropped because a subscriber buffer was full.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "college_event",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

func RecordAdmission(outcome string) {
	admissions.WithLabelValues(outcome).Inc()
}

func RecordTransition(target string) {
	transitions.WithLabelValues(target).Inc()
}

func RecordFanoutPublished(topic string) {
	fanoutPublished.WithLabelValues(topic).Inc()
}

func RecordFanoutDropped() {
	fanoutDropped.Inc()
}

func ObserveHTTPRequest(route, status string, seconds float64) {
	httpDuration.WithLabelValues(route, status).Observe(seconds)
}
