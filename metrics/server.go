package metrics

import (
	"net/http"

	"github.com/pokt-network/poktroll/pkg/polylog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const endpointMetrics = "/metrics"

// ServeMetrics starts a Prometheus scrape endpoint on the given address.
// Runs asynchronously; a diff run is short-lived, so this is only useful for
// long runs against large captures, and is off unless an address is set.
func ServeMetrics(logger polylog.Logger, addr string) {
	go func() {
		logger.Info().Str("endpoint_addr", addr).Msg("starting Prometheus metrics server")

		mux := http.NewServeMux()
		mux.Handle(endpointMetrics, promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
}
