package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/latchkit/go-latch/v1/lifecycle"
)

var (
	// CallCounter tracks finished coordination operations by method and status.
	CallCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latch_calls_total",
		Help: "Total number of coordination operations by method and status",
	}, []string{"method", "status"})
	// LockWaitHist observes how long successful lock acquisitions waited.
	LockWaitHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "latch_lock_wait_seconds",
		Help:    "Time spent waiting for distributed lock acquisition",
		Buckets: prometheus.DefBuckets,
	})
	// MemoizeHist observes the total latency of memoized calls that ran the
	// computation.
	MemoizeHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "latch_memoize_compute_seconds",
		Help:    "Latency of memoized calls that executed the computation",
		Buckets: prometheus.DefBuckets,
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterCoreMetrics registers latch core metrics on the provided registry.
func RegisterCoreMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CallCounter, LockWaitHist, MemoizeHist)
}

// Observe subscribes the core collectors to a lifecycle hub so every
// finished operation is counted.
func Observe(hub *lifecycle.Hub) {
	hub.OnFinish(func(info lifecycle.Info) {
		CallCounter.WithLabelValues(info.Method, info.Status).Inc()
		switch {
		case info.Method == lifecycle.MethodAcquireLock && info.Status == lifecycle.StatusAcquired:
			LockWaitHist.Observe(info.Elapsed.Seconds())
		case info.Method == lifecycle.MethodMemoize && info.Status == lifecycle.StatusValueComputed:
			MemoizeHist.Observe(info.Elapsed.Seconds())
		}
	})
}
