// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_total",
			Help: "Total number of conversation turns processed, by batch outcome",
		},
		[]string{"intent", "outcome"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dialogue_turn_duration_seconds",
			Help: "Duration of one conversation turn in seconds",
		},
		[]string{"stage"},
	)

	CommandsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_commands_total",
			Help: "Total number of order commands executed, by intent and status",
		},
		[]string{"intent", "status"},
	)

	CommandErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_command_errors_total",
			Help: "Total number of command errors, by error code",
		},
		[]string{"error_code", "category"},
	)

	LowConfidenceTurns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dialogue_low_confidence_turns_total",
			Help: "Turns short-circuited because intent confidence fell below the threshold",
		},
	)
)
