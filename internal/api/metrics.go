package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verdict_mutations_total",
		Help: "Successful board mutations by operation.",
	}, []string{"op"})

	MutationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verdict_mutations_rejected_total",
		Help: "Rejected board mutations by error scope.",
	}, []string{"scope"})

	BoardRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verdict_board_repairs_total",
		Help: "Saved boards that needed repair or reset at load.",
	})
)
