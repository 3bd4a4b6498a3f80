package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_requests_created_total",
			Help: "Broadcast delivery requests created",
		},
	)

	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_claims_total",
			Help: "Claim attempts by outcome",
		},
		[]string{"result"}, // won | lost
	)

	RequestsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_requests_expired_total",
			Help: "Requests cancelled because no rider claimed in time",
		},
	)
)

const (
	claimWon  = "won"
	claimLost = "lost"
)
