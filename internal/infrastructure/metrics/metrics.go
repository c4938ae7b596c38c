package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Balance metrics
	CreditsAdded      prometheus.Counter
	CreditsDeducted   prometheus.Counter
	InsufficientFunds *prometheus.CounterVec

	// Hold metrics
	HoldsCreated     prometheus.Counter
	HoldsCaptured    prometheus.Counter
	HoldsVoided      prometheus.Counter
	InvalidHoldState *prometheus.CounterVec

	// Ledger operation metrics
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished     prometheus.Counter
	OutboxPublishErrors prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Balance metrics
		CreditsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_credits_added_total",
			Help: "Total number of successful credit additions",
		}),
		CreditsDeducted: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_credits_deducted_total",
			Help: "Total number of successful credit deductions",
		}),
		InsufficientFunds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_insufficient_funds_total",
				Help: "Operations rejected for insufficient funds",
			},
			[]string{"operation"},
		),

		// Hold metrics
		HoldsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_holds_created_total",
			Help: "Total number of holds created",
		}),
		HoldsCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_holds_captured_total",
			Help: "Total number of holds captured",
		}),
		HoldsVoided: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_holds_voided_total",
			Help: "Total number of holds voided",
		}),
		InvalidHoldState: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_invalid_hold_state_total",
				Help: "Hold resolutions rejected because the hold was not pending",
			},
			[]string{"operation", "status"},
		),

		// Ledger operation metrics
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditledger_operation_duration_seconds",
				Help:    "Duration of ledger operations including lock waits",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_operation_errors_total",
				Help: "Ledger operations that failed with an infrastructure error",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_outbox_published_total",
			Help: "Outbox events delivered to the publisher",
		}),
		OutboxPublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_outbox_publish_errors_total",
			Help: "Outbox events that failed to publish",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "creditledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_rate_limit_hits_total",
				Help: "Requests rejected by the per-client rate limiter",
			},
			[]string{"method"},
		),
	}
}
