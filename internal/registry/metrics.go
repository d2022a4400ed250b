package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trialmirror",
		Subsystem: "registry",
		Name:      "pages_fetched_total",
		Help:      "Catalog pages fetched successfully.",
	})

	rateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trialmirror",
		Subsystem: "registry",
		Name:      "rate_limit_waits_total",
		Help:      "Backoff waits taken after an upstream 429.",
	})
)
