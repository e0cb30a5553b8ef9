package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Outbound CashBox call metrics
	rpcCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vindicia_rpc_calls_total",
		Help: "Total number of CashBox calls",
	}, []string{
		"object", // Transaction, Account, AutoBill, ...
		"action", // auth, capture, update, fetchByVid, ...
		"result", // return code, or transport_error
	})

	rpcCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "vindicia_rpc_call_duration_seconds",
		Help: "Time spent in a CashBox call, including the network",
		// Buckets: 100ms to 60s (the processor's calls are slow)
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{
		"object",
		"action",
	})
)

// RecordRPC counts one completed call by outcome
func RecordRPC(object, action, result string) {
	rpcCallsTotal.WithLabelValues(object, action, result).Inc()
}

// ObserveRPCDuration records the wall time of one call
func ObserveRPCDuration(object, action string, d time.Duration) {
	rpcCallDuration.WithLabelValues(object, action).Observe(d.Seconds())
}
