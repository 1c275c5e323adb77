package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linklock_evaluations_total",
		Help: "Total number of URL evaluations by decision outcome",
	}, []string{"outcome"})
	unlockAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linklock_unlock_attempts_total",
		Help: "Total number of unlock attempts by result",
	}, []string{"result"})
	cooldownsTriggeredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linklock_cooldowns_triggered_total",
		Help: "Total number of brute-force cooldowns triggered",
	})
	profileSwitchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linklock_profile_switches_total",
		Help: "Total number of profile switches",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(evaluationsTotal, unlockAttemptsTotal, cooldownsTriggeredTotal, profileSwitchesTotal)
}

// IncEvaluation increments the evaluation counter for a decision outcome.
func IncEvaluation(outcome string) { evaluationsTotal.WithLabelValues(outcome).Inc() }

// IncUnlockAttempt increments the unlock attempt counter for a result.
func IncUnlockAttempt(result string) { unlockAttemptsTotal.WithLabelValues(result).Inc() }

// IncCooldownTriggered increments the triggered cooldown counter.
func IncCooldownTriggered() { cooldownsTriggeredTotal.Inc() }

// IncProfileSwitch increments the profile switch counter.
func IncProfileSwitch() { profileSwitchesTotal.Inc() }
