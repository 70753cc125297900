// Package metrics exposes the gateway's Prometheus collectors. Collectors are
// registered on the default registry and served by the HTTP surface at
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchTotal counts tool dispatches by outcome.
	DispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "dispatch_total",
		Help:      "Tool dispatches by outcome.",
	}, []string{"outcome"})

	// UpstreamListFailures counts failed per-server tool list fetches.
	UpstreamListFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "upstream_list_failures_total",
		Help:      "Tool list fetches that failed or timed out.",
	})

	// SessionsSwept counts sessions closed by the idle sweep.
	SessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "sessions_swept_total",
		Help:      "Sessions closed by the idle timeout sweep.",
	})
)
