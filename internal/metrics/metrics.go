// Package metrics exposes Prometheus instrumentation for the redemption workflow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels recorded for each redemption attempt.
const (
	OutcomeSuccess         = "success"
	OutcomePlayerNotFound  = "player_not_found"
	OutcomeRewardNotFound  = "reward_not_found"
	OutcomeNotStarted      = "not_started"
	OutcomeExpired         = "expired"
	OutcomeDailyLimit      = "daily_limit"
	OutcomeTotalLimit      = "total_limit"
	OutcomeAlreadyRedeemed = "already_redeemed"
	OutcomeError           = "error"
)

// Redemption records redemption outcomes and latency.
// A nil *Redemption is valid and records nothing.
type Redemption struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRedemption registers the redemption collectors with reg.
func NewRedemption(reg prometheus.Registerer) *Redemption {
	factory := promauto.With(reg)
	return &Redemption{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reward",
			Subsystem: "redemption",
			Name:      "attempts_total",
			Help:      "Coupon redemption attempts by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reward",
			Subsystem: "redemption",
			Name:      "duration_seconds",
			Help:      "Time spent processing a coupon redemption.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
}

// Observe records one attempt with the given outcome.
func (m *Redemption) Observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
