package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ingestion metrics
	UploadsTotal      *prometheus.CounterVec
	MovementsIngested *prometheus.CounterVec
	DuplicatesSkipped *prometheus.CounterVec
	ParseFailures     *prometheus.CounterVec
	UploadDuration    *prometheus.HistogramVec

	// Reconciliation metrics
	ReconciliationsTotal prometheus.Counter
	MatchedPairs         prometheus.Histogram
	UnmatchedMovements   *prometheus.HistogramVec
	ReconcileDuration    prometheus.Histogram

	// Verification metrics
	VerificationsTotal prometheus.Counter
	MissingInLedger    prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ingestion metrics
		UploadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_uploads_total",
				Help: "Total statement uploads by source and outcome",
			},
			[]string{"source", "status"},
		),
		MovementsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_movements_ingested_total",
				Help: "Total movements inserted into the ledgers",
			},
			[]string{"source"},
		),
		DuplicatesSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_duplicates_skipped_total",
				Help: "Total movements skipped as duplicates",
			},
			[]string{"source"},
		),
		ParseFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_parse_failures_total",
				Help: "Total uploads rejected as unreadable",
			},
			[]string{"source"},
		),
		UploadDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankrecon_upload_duration_seconds",
				Help:    "Upload processing duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),

		// Reconciliation metrics
		ReconciliationsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bankrecon_reconciliations_total",
				Help: "Total reconciliation runs",
			},
		),
		MatchedPairs: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bankrecon_matched_pairs",
				Help:    "Matched pairs per reconciliation run",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		UnmatchedMovements: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankrecon_unmatched_movements",
				Help:    "Unmatched movements per reconciliation run",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"source"},
		),
		ReconcileDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bankrecon_reconcile_duration_seconds",
				Help:    "Reconciliation run duration",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Verification metrics
		VerificationsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bankrecon_verifications_total",
				Help: "Total file-versus-ledger verification runs",
			},
		),
		MissingInLedger: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bankrecon_missing_in_ledger",
				Help:    "Movements found in the file but absent from the ledger, per verification",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankrecon_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankrecon_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DBConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bankrecon_db_connections",
				Help: "Current database connections",
			},
		),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrecon_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
