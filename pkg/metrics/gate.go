package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gate-domain collectors, exported on the default registry so they are served
// by the same /metrics listener as the HTTP middleware metrics.
var (
	ScanDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "gate",
		Name:      "scan_decisions_total",
		Help:      "Check-in scan outcomes partitioned by decision code.",
	}, []string{"code", "allowed"})

	CheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "gate",
		Name:      "checkouts_total",
		Help:      "Completed visit checkouts.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "gate",
		Name:      "events_published_total",
		Help:      "Broadcast events published, partitioned by event type.",
	}, []string{"type"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "gate",
		Name:      "events_dropped_total",
		Help:      "Event deliveries dropped due to slow or dead subscribers.",
	})

	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: "gate",
		Name:      "live_subscribers",
		Help:      "Currently registered streaming subscribers.",
	})
)
