// Package metrics defines and registers the Prometheus metrics for the
// car-wash ledger. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry on
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "washlog"

// ── HTTP ──────────────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method: HTTP method
//   - route: chi route pattern (e.g. "/records/{id}"), "unmatched" when no route matched
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency by route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method and route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Ledger ────────────────────────────────────────────────────────────────────

// RecordMutationsTotal counts add/update/delete commands.
// Labels:
//   - op: "add", "update" or "delete"
//   - result: "ok", "not_found", "invalid" or "error"
var RecordMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_mutations_total",
		Help:      "Total number of record mutations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Spreadsheet mirror ────────────────────────────────────────────────────────

// ExportRegenerationsTotal counts mirror regenerations.
// Label:
//   - result: "ok" or "error"
var ExportRegenerationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "export_regenerations_total",
		Help:      "Total number of spreadsheet mirror regenerations, by result.",
	},
	[]string{"result"},
)

// ExportDuration measures how long a full regeneration takes.
var ExportDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Duration of a full spreadsheet mirror regeneration.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ExportRows reports the number of data rows in the last successful export.
var ExportRows = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "export_rows",
		Help:      "Number of data rows written by the last successful regeneration.",
	},
)
