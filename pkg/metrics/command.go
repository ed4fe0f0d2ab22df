package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommandMetrics records outcomes of back-office CLI commands.
type CommandMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewCommandMetrics registers the command metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCommandMetrics(reg prometheus.Registerer) *CommandMetrics {
	if reg == nil {
		return &CommandMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Duration of back-office commands in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "command_success_total",
		Help:      "Successful back-office command executions.",
	}, []string{"command"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "command_failure_total",
		Help:      "Failed back-office command executions by error code.",
	}, []string{"command", "code"})
	reg.MustRegister(duration, success, failure)
	return &CommandMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// Observe records the duration and outcome of one command run.
func (c *CommandMetrics) Observe(command string, took time.Duration, errCode string) {
	if c == nil || c.duration == nil {
		return
	}
	command = normalizeLabel(command)
	c.duration.WithLabelValues(command).Observe(took.Seconds())
	if errCode == "" {
		c.success.WithLabelValues(command).Inc()
		return
	}
	c.failure.WithLabelValues(command, errCode).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
