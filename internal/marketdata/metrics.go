package marketdata

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spreadscan_marketdata_requests_total",
			Help: "External market data API requests issued.",
		},
		[]string{"endpoint"},
	)
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spreadscan_marketdata_errors_total",
			Help: "External market data API requests that failed.",
		},
		[]string{"endpoint"},
	)
	retriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spreadscan_marketdata_retries_total",
			Help: "Retries issued against the market data API.",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, errorsTotal, retriesTotal)
}

func observeRequest(endpoint string) { requestsTotal.WithLabelValues(endpoint).Inc() }
func observeError(endpoint string)   { errorsTotal.WithLabelValues(endpoint).Inc() }
func observeRetry(endpoint string)   { retriesTotal.WithLabelValues(endpoint).Inc() }
