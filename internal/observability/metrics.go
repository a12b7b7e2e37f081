// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	QuotesProcessed       prometheus.Counter
	QuotesStored          prometheus.Counter
	QuoteProcessingErrors *prometheus.CounterVec
	AssessmentsTotal      *prometheus.CounterVec

	// Simulation metrics
	TrialsSimulated prometheus.Counter
	TrialsRuined    prometheus.Counter
	BatchDuration   prometheus.Histogram

	// Sweep metrics
	SweepsTotal      *prometheus.CounterVec
	SweepDuration    prometheus.Histogram
	ReportsGenerated prometheus.Counter

	// Health metrics
	LastSuccessfulSweep prometheus.Gauge
	LastQuoteReceived   prometheus.Gauge
	UptimeSeconds       prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bankroll_lab"
	}

	return &Metrics{
		// Feed metrics
		QuotesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "quotes_processed_total",
			Help:      "Total number of quote notifications processed",
		}),
		QuotesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "quotes_stored_total",
			Help:      "Total number of quotes stored to database",
		}),
		QuoteProcessingErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "quote_processing_errors_total",
			Help:      "Total number of quote processing errors by type",
		}, []string{"error_type"}),
		AssessmentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "assessments_total",
			Help:      "Total number of bet assessments by verdict",
		}, []string{"verdict"}),

		// Simulation metrics
		TrialsSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trials_simulated_total",
			Help:      "Total number of Monte Carlo trials simulated",
		}),
		TrialsRuined: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trials_ruined_total",
			Help:      "Total number of simulated trials that ended in ruin",
		}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "batch_duration_seconds",
			Help:      "Batch simulation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),

		// Sweep metrics
		SweepsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Total number of sweep runs by status",
		}, []string{"status"}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Full sweep execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "reports_generated_total",
			Help:      "Total number of sweep reports generated",
		}),

		// Health metrics
		LastSuccessfulSweep: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_sweep_timestamp",
			Help:      "Unix timestamp of last successful sweep",
		}),
		LastQuoteReceived: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_quote_received_timestamp",
			Help:      "Unix timestamp of last quote notification",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordQuoteProcessed increments the quotes processed counter.
func RecordQuoteProcessed() {
	DefaultMetrics.QuotesProcessed.Inc()
	DefaultMetrics.LastQuoteReceived.SetToCurrentTime()
}

// RecordQuoteStored increments the quotes stored counter.
func RecordQuoteStored() {
	DefaultMetrics.QuotesStored.Inc()
}

// RecordQuoteError records a quote processing error.
func RecordQuoteError(errorType string) {
	DefaultMetrics.QuoteProcessingErrors.WithLabelValues(errorType).Inc()
}

// RecordAssessment records an assessment outcome by verdict.
func RecordAssessment(verdict string) {
	DefaultMetrics.AssessmentsTotal.WithLabelValues(verdict).Inc()
}

// RecordBatch records one completed batch simulation.
func RecordBatch(trials, ruined int, durationSeconds float64) {
	DefaultMetrics.TrialsSimulated.Add(float64(trials))
	DefaultMetrics.TrialsRuined.Add(float64(ruined))
	DefaultMetrics.BatchDuration.Observe(durationSeconds)
}

// RecordSweep records a sweep run. A successful sweep also bumps the health
// timestamp.
func RecordSweep(status string, durationSeconds float64) {
	DefaultMetrics.SweepsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.SweepDuration.Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastSuccessfulSweep.SetToCurrentTime()
	}
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}
