// Package metrics exposes Prometheus collectors for the bridge. Collectors
// register on the default registry and are served by the API's /metrics
// endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storymesh"

var (
	LinesClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_classified_total",
		Help:      "Messages produced by the stream classifier, by channel.",
	}, []string{"channel"})

	MessagesBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_broadcast_total",
		Help:      "Messages delivered to observers, by channel.",
	}, []string{"channel"})

	BroadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_failures_total",
		Help:      "Observer deliveries that failed and detached the observer.",
	})

	ObserversAttached = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "observers_attached",
		Help:      "Observers currently attached to the broadcast hub.",
	})

	InputReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "input_received_total",
		Help:      "Input lines accepted from the transport layer.",
	})

	EngineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engine_runs_total",
		Help:      "Engine runs by terminal outcome.",
	}, []string{"outcome"})
)
