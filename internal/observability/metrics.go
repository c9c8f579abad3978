package observability

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var clusterLabel atomic.Value

func init() {
	clusterLabel.Store("default")
}

func SetCluster(name string) {
	if name == "" {
		name = "default"
	}
	clusterLabel.Store(name)
}

func getCluster() string {
	if v := clusterLabel.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "default"
}

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status", "cluster"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status", "cluster"},
	)

	brokerOpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "broker_op_duration_seconds",
			Help:    "Duration of broker admin operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"op", "outcome", "cluster"},
	)

	bindingErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acl_binding_errors_total",
			Help: "Per-binding delete errors by broker error code.",
		},
		[]string{"code", "cluster"},
	)

	deleteBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acl_delete_batches_total",
			Help: "Batched ACL delete requests by outcome.",
		},
		[]string{"outcome", "cluster"},
	)

	deletedBindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acl_deleted_bindings_total",
			Help: "ACL bindings deleted.",
		},
		[]string{"cluster"},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Describe-cache results by outcome.",
		},
		[]string{"outcome", "cluster"},
	)

	cacheOpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_op_duration_seconds",
			Help:    "Duration of cache operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op", "outcome", "cluster"},
	)

	auditEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Audit events by outcome (published, dropped, error).",
		},
		[]string{"outcome", "cluster"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	c := getCluster()
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st, c).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st, c).Observe(durationSeconds)
}

func ObserveBrokerOp(op string, err error, durationSeconds float64) {
	brokerOpDurationSeconds.WithLabelValues(op, outcome(err), getCluster()).Observe(durationSeconds)
}

func IncBindingError(code string) {
	bindingErrorsTotal.WithLabelValues(code, getCluster()).Inc()
}

func ObserveDeleteBatch(err error, deleted int) {
	c := getCluster()
	deleteBatchesTotal.WithLabelValues(outcome(err), c).Inc()
	if deleted > 0 {
		deletedBindingsTotal.WithLabelValues(c).Add(float64(deleted))
	}
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	cacheOpDurationSeconds.WithLabelValues(op, outcome(err), getCluster()).Observe(durationSeconds)
}

func IncCacheHit() {
	cacheResults.WithLabelValues("hit", getCluster()).Inc()
}

func IncCacheMiss() {
	cacheResults.WithLabelValues("miss", getCluster()).Inc()
}

func IncAudit(outcome string) {
	auditEventsTotal.WithLabelValues(outcome, getCluster()).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
