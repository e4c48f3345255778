package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CheckIns counts check-in attempts by outcome: ok, malformed, expired,
// duplicate, invalid, error.
var CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rollcall",
	Name:      "checkins_total",
	Help:      "Check-in attempts by outcome.",
}, []string{"outcome"})

// SessionsIssued counts minted session tokens.
var SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "rollcall",
	Name:      "sessions_issued_total",
	Help:      "Session tokens issued.",
})
