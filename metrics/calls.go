package metrics

import (
	"time"

	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	versusProcess = "versus"

	callsTotal          = "calls_total"
	callsErrorsTotal    = "calls_errors_total"
	callDurationSeconds = "call_duration_seconds"
	linesSkippedTotal   = "lines_skipped_total"
)

var (
	// providerCallsTotal counts every RPC call sent to a provider,
	// labeled by 'provider' address, successes and failures alike.
	providerCallsTotal = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Subsystem: versusProcess,
		Name:      callsTotal,
		Help:      "Total number of RPC calls sent, labeled by provider.",
	}, []string{"provider"})

	// providerCallErrorsTotal counts classified per-call failures,
	// labeled by 'provider' and failure 'kind'.
	providerCallErrorsTotal = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Subsystem: versusProcess,
		Name:      callsErrorsTotal,
		Help:      "Total number of failed RPC calls, labeled by provider and failure kind.",
	}, []string{"provider", "kind"})

	// providerCallDurationSeconds observes per-call latency by provider.
	//
	// Buckets:
	// - 10ms to 15s, capturing fast local nodes through slow remote ones.
	providerCallDurationSeconds = prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
		Subsystem: versusProcess,
		Name:      callDurationSeconds,
		Help:      "Histogram of RPC call durations, labeled by provider.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15},
	}, []string{"provider"})

	// inputLinesSkippedTotal counts malformed input lines the broadcaster skipped.
	inputLinesSkippedTotal = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Subsystem: versusProcess,
		Name:      linesSkippedTotal,
		Help:      "Total number of malformed input lines skipped.",
	}, []string{})
)

// ObserveCall records one completed RPC call against a provider.
// failureKind is empty for successful calls.
func ObserveCall(providerAddr string, duration time.Duration, failureKind string) {
	providerCallsTotal.With("provider", providerAddr).Add(1)
	providerCallDurationSeconds.With("provider", providerAddr).Observe(duration.Seconds())

	if failureKind != "" {
		providerCallErrorsTotal.With("provider", providerAddr, "kind", failureKind).Add(1)
	}
}

// ObserveSkippedLine records one malformed input line.
func ObserveSkippedLine() {
	inputLinesSkippedTotal.With().Add(1)
}
