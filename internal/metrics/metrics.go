// Package metrics provides the Prometheus registry for the allocation engine and ledger.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Counter metrics
var (
	AllocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surebet",
		Name:      "allocations_total",
		Help:      "Total number of allocation requests by budgeting mode and outcome",
	}, []string{"mode", "outcome"})
	AllocationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surebet",
		Name:      "allocation_errors_total",
		Help:      "Total number of rejected allocation requests by reason",
	}, []string{"reason"})
	ArbitrageDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "surebet",
		Name:      "arbitrage_detected_total",
		Help:      "Total number of allocations whose every outcome is non-negative",
	})
	LedgerOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surebet",
		Name:      "ledger_operations_total",
		Help:      "Total number of ledger operations by operation and outcome",
	}, []string{"operation", "outcome"})
)

// Histogram metrics
var (
	AllocationLegs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "surebet",
		Name:      "allocation_legs",
		Help:      "Number of legs per successful allocation",
		Buckets:   []float64{2, 3, 4, 5, 6, 8, 10},
	})
	GuaranteedROIPercent = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "surebet",
		Name:      "guaranteed_roi_percent",
		Help:      "Guaranteed ROI of successful allocations in percent",
		Buckets:   []float64{-20, -10, -5, -2, 0, 1, 2, 5, 10, 20},
	})
	AllocationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "surebet",
		Name:      "allocation_duration_seconds",
		Help:      "Time spent computing an allocation in seconds",
		Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
	}, []string{"mode"})
	LedgerOperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "surebet",
		Name:      "ledger_operation_duration_seconds",
		Help:      "Latency of ledger round-trips in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(AllocationsTotal)
		registry.MustRegister(AllocationErrorsTotal)
		registry.MustRegister(ArbitrageDetectedTotal)
		registry.MustRegister(LedgerOperationsTotal)

		registry.MustRegister(AllocationLegs)
		registry.MustRegister(GuaranteedROIPercent)
		registry.MustRegister(AllocationDuration)
		registry.MustRegister(LedgerOperationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordAllocation records a successful allocation.
func RecordAllocation(mode string, legs int, roiPercent float64, isArbitrage bool) {
	AllocationsTotal.WithLabelValues(mode, OutcomeSuccess).Inc()
	AllocationLegs.Observe(float64(legs))
	GuaranteedROIPercent.Observe(roiPercent)
	if isArbitrage {
		ArbitrageDetectedTotal.Inc()
	}
}

// ObserveAllocationDuration records how long an allocation took, successful or not.
func ObserveAllocationDuration(mode string, durationSeconds float64) {
	AllocationDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// RecordAllocationError records a rejected allocation.
func RecordAllocationError(mode, reason string) {
	AllocationsTotal.WithLabelValues(mode, OutcomeError).Inc()
	AllocationErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordLedgerOperation records a ledger round-trip.
func RecordLedgerOperation(operation string, err error, durationSeconds float64) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	LedgerOperationsTotal.WithLabelValues(operation, outcome).Inc()
	LedgerOperationDuration.WithLabelValues(operation).Observe(durationSeconds)
}
