package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Content store traffic
var (
	ContentFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfblogs_content_fetches_total",
			Help: "Content documents fetched by hash, by source (remote, cache)",
		},
		[]string{"source"},
	)

	ContentFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dfblogs_content_fetch_failures_total",
		Help: "Content fetches that returned an error",
	})

	ContentUploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dfblogs_content_uploads_total",
		Help: "Documents uploaded ahead of a transaction",
	})

	ContentCompensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfblogs_content_compensations_total",
			Help: "Uploaded documents removed after the transaction did not commit",
		},
		[]string{"reason"},
	)
)

// Chain
var (
	TxTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfblogs_transactions_total",
			Help: "Submitted transactions by result (ok, failed, cancelled)",
		},
		[]string{"result"},
	)

	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dfblogs_entity_subscriptions",
		Help: "Entity loaders currently following chain storage",
	})
)

// Gateway
var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dfblogs_http_request_duration_seconds",
			Help:    "Gateway request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)

	NotificationsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dfblogs_notifications_relayed_total",
		Help: "Notifications forwarded to Discord",
	})
)
