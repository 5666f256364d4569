package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartAddsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_adds_total",
		Help: "Total number of successful add-to-cart operations",
	})

	CartAddsClampedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_adds_clamped_total",
		Help: "Total number of add-to-cart operations partially fulfilled due to stock",
	})

	CartAddsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_adds_rejected_total",
		Help: "Total number of add-to-cart operations rejected for lack of stock",
	})

	CouponsAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupons_applied_total",
		Help: "Total number of coupons applied",
	}, []string{"code"})

	CouponsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coupons_rejected_total",
		Help: "Total number of unrecognized coupon codes",
	})

	ProductsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_added_total",
		Help: "Total number of user-added catalog products",
	})

	CheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Total number of successful checkouts",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	CheckoutProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_processing_latency_seconds",
		Help:    "Latency of checkout processing including the simulated payment delay",
		Buckets: prometheus.DefBuckets,
	})

	OrdersAuditedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_audited_total",
		Help: "Total number of order events consumed by the audit worker",
	})

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
