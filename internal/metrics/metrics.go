// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/org-task-api/internal/authz"
)

const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_api_http_requests_total",
			Help: "Total HTTP requests handled, by route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "task_api_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	authzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_api_authz_decisions_total",
			Help: "Authorization decisions, by operation, outcome and denial reason.",
		},
		[]string{"operation", "outcome", "reason"},
	)

	orgCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_api_org_cache_lookups_total",
			Help: "Organization hierarchy cache lookups, by result.",
		},
		[]string{"result"},
	)
)

// ObserveRequest records one handled request. path is the route template,
// never the raw URL, to keep label cardinality bounded.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveDecision records the result of an authorization check.
// A nil err counts as an allow.
func ObserveDecision(operation string, err error) {
	if err == nil {
		authzDecisionsTotal.WithLabelValues(operation, OutcomeAllow, "").Inc()
		return
	}
	reason, ok := authz.ReasonOf(err)
	if !ok {
		reason = "ERROR"
	}
	authzDecisionsTotal.WithLabelValues(operation, OutcomeDeny, string(reason)).Inc()
}

// ObserveOrgCache records a hierarchy cache hit or miss.
func ObserveOrgCache(hit bool) {
	if hit {
		orgCacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	orgCacheLookupsTotal.WithLabelValues("miss").Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
