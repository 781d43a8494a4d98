// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
	ResultRemoved = "removed"
	ResultInUse   = "in_use"
)

// ─── Registry ───────────────────────────────────────────────────────────────

var PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gastos",
	Subsystem: "registry",
	Name:      "payments_recorded_total",
	Help:      "Payments accepted by the registry, by kind.",
}, []string{"kind"})

var MembersCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gastos",
	Subsystem: "registry",
	Name:      "members_created_total",
	Help:      "Members enrolled in the registry.",
})

var CategoryRemovals = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gastos",
	Subsystem: "registry",
	Name:      "category_removals_total",
	Help:      "Category removal attempts, by outcome.",
}, []string{"result"})

var InstallmentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gastos",
	Subsystem: "registry",
	Name:      "installments_recorded_total",
	Help:      "Installments marked as paid on recurring payments.",
})

// ─── Export pipeline ────────────────────────────────────────────────────────

var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gastos",
	Subsystem: "export",
	Name:      "events_published_total",
	Help:      "payment.recorded events published to the broker, by outcome.",
}, []string{"result"})

var PaymentsExported = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gastos",
	Subsystem: "export",
	Name:      "payments_exported_total",
	Help:      "Ledger rows written by the export worker, by outcome.",
}, []string{"result"})

var ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "gastos",
	Subsystem: "export",
	Name:      "append_duration_seconds",
	Help:      "Time spent appending one payment to the ledger.",
	Buckets:   prometheus.DefBuckets,
})

// ─── Query cache ────────────────────────────────────────────────────────────

var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gastos",
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Query cache lookups, by result (hit or miss).",
}, []string{"result"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gastos",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests served, by route pattern and status code.",
}, []string{"route", "code"})

var HTTPRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gastos",
	Subsystem: "http",
	Name:      "rejected_total",
	Help:      "Requests rejected before reaching a handler, by reason.",
}, []string{"reason"})

// ObserveExport records the outcome and duration of one ledger append.
func ObserveExport(start time.Time, err error) {
	ExportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		PaymentsExported.WithLabelValues(ResultError).Inc()
		return
	}
	PaymentsExported.WithLabelValues(ResultSuccess).Inc()
}

// Outcome maps an error to the success or error label value.
func Outcome(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
