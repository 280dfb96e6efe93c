package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts booking status transitions by outcome
	// (committed / rejected / failed).
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "transitions_total",
			Help:      "The total number of booking status transitions",
		},
		[]string{"from", "to", "outcome"},
	)

	// SideEffectFailures counts soft side-effect failures by step name.
	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "side_effect_failures_total",
			Help:      "The total number of failed lifecycle side effects",
		},
		[]string{"step"},
	)
)
