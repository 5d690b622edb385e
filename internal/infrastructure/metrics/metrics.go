package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments recorded by the service. The
// ledger and redemption use cases record the business counters; the HTTP
// middleware records the request metrics.
type Metrics struct {
	// Credit operation metrics
	CreditOperations  *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	CreditAmount      *prometheus.HistogramVec

	// Transfer metrics
	TransfersCompleted   prometheus.Counter
	TransfersCompensated prometheus.Counter

	// Redemption metrics
	RedemptionsCompleted prometheus.Counter
	RedemptionsRefunded  prometheus.Counter
	RedemptionLevels     prometheus.Histogram
	RedemptionsBySkill   *prometheus.CounterVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	RedisErrors *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge

	// Consistency metrics
	ConsistencyChecks     prometheus.Counter
	ConsistencyViolations prometheus.Gauge
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Credit operation metrics
		CreditOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_operations_total",
				Help: "Total credit operations by reason",
			},
			[]string{"reason"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditledger_operation_duration_seconds",
				Help:    "Duration of credit operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"reason"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_operation_errors_total",
				Help: "Total credit operation errors by type",
			},
			[]string{"error_type"},
		),
		CreditAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditledger_operation_amount",
				Help:    "Credit amounts moved per operation",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
			},
			[]string{"reason"},
		),

		// Transfer metrics
		TransfersCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_transfers_completed_total",
			Help: "Total number of completed transfers",
		}),
		TransfersCompensated: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_transfers_compensated_total",
			Help: "Total number of transfers rolled back after a failed credit leg",
		}),

		// Redemption metrics
		RedemptionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_redemptions_completed_total",
			Help: "Total number of completed redemptions",
		}),
		RedemptionsRefunded: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_redemptions_refunded_total",
			Help: "Total number of redemptions refunded after a failed grant",
		}),
		RedemptionLevels: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "creditledger_redemption_levels",
			Help:    "Levels granted per redemption",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		}),
		RedemptionsBySkill: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_redemptions_by_skill_total",
				Help: "Total redemptions per skill",
			},
			[]string{"skill"},
		),

		// Cache metrics
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_cache_hits_total",
			Help: "Total balance cache hits",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_cache_misses_total",
			Help: "Total balance cache misses",
		}),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditledger_redis_errors_total",
				Help: "Total Redis errors by operation",
			},
			[]string{"operation"},
		),

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
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "creditledger_db_connections",
			Help: "Current number of database connections",
		}),

		// Consistency metrics
		ConsistencyChecks: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditledger_consistency_checks_total",
			Help: "Total ledger consistency checks",
		}),
		ConsistencyViolations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "creditledger_consistency_violations",
			Help: "Accounts whose balance disagrees with the transaction log at last check",
		}),
	}
}

// NewNop creates metrics backed by a throwaway registry. Recording is
// valid but nothing is exported; used as the default before WithMetrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
