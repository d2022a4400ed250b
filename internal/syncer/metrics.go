package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	trialsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trialmirror",
		Subsystem: "sync",
		Name:      "trials_upserted_total",
		Help:      "Trials written to the store across all runs.",
	})

	runsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trialmirror",
		Subsystem: "sync",
		Name:      "runs_finished_total",
		Help:      "Completed sync runs by kind and terminal status.",
	}, []string{"kind", "status"})
)
