package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_orders_failed_total",
		Help: "Total number of orders that could not be stored",
	}, []string{"reason"})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_order_status_changes_total",
		Help: "Total number of order status transitions",
	}, []string{"status"})

	CatalogMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_catalog_mutations_total",
		Help: "Total number of product mutations",
	}, []string{"operation"})

	VisitsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_visits_total",
		Help: "Record-visit calls by outcome",
	}, []string{"outcome"})

	StatsCacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_stats_cache_requests_total",
		Help: "Admin stats cache lookups by result",
	}, []string{"result"})

	StatsComputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_stats_compute_latency_seconds",
		Help:    "Latency of computing the admin stats snapshot",
		Buckets: prometheus.DefBuckets,
	})

	StatsSkippedOrdersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_stats_skipped_orders_total",
		Help: "Orders skipped by sales activity because created_at did not parse",
	})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_uploads_total",
		Help: "File uploads by backend and outcome",
	}, []string{"backend", "outcome"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_notifications_total",
		Help: "Order confirmation notifications by outcome",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
