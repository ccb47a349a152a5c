package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// result label values
const (
	MetricResultOk           = "ok"
	MetricResultValidation   = "validation_failed"
	MetricResultUnauthorized = "unauthorized"
	MetricResultPartial      = "partial_write"
	MetricResultStore        = "store_failure"
)

var DocumentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billing",
	Subsystem: "document",
	Name:      "writes_total",
	Help:      "Document create/update/delete attempts by document, operation and result.",
}, []string{"document", "operation", "result"})

var DocumentEventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billing",
	Subsystem: "document",
	Name:      "event_publish_failures_total",
	Help:      "Document change events that could not be published.",
}, []string{"document"})

var ReportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "billing",
	Subsystem: "report",
	Name:      "duration_seconds",
	Help:      "Time to build a financial report snapshot.",
	Buckets:   prometheus.DefBuckets,
})

var ReportCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "billing",
	Subsystem: "report",
	Name:      "cache_hits_total",
	Help:      "Financial reports served from the redis cache.",
})
