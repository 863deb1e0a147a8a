package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	registry := InitRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, GetRegistry())
}

func TestRecordAllocation(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(AllocationsTotal.WithLabelValues("total_budget", OutcomeSuccess))
	arbBefore := testutil.ToFloat64(ArbitrageDetectedTotal)

	RecordAllocation("total_budget", 2, 4.76, true)
	RecordAllocation("total_budget", 2, -25, false)

	assert.Equal(t, before+2, testutil.ToFloat64(AllocationsTotal.WithLabelValues("total_budget", OutcomeSuccess)))
	assert.Equal(t, arbBefore+1, testutil.ToFloat64(ArbitrageDetectedTotal))
}

func TestRecordAllocationError(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(AllocationErrorsTotal.WithLabelValues("invalid_odds"))
	RecordAllocationError("capped_leg", "invalid_odds")
	assert.Equal(t, before+1, testutil.ToFloat64(AllocationErrorsTotal.WithLabelValues("invalid_odds")))
}

func TestRecordLedgerOperation(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{name: "success", err: nil, outcome: OutcomeSuccess},
		{name: "failure", err: errors.New("connection reset"), outcome: OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := LedgerOperationsTotal.WithLabelValues("record", tt.outcome)
			before := testutil.ToFloat64(counter)

			assert.NotPanics(t, func() {
				RecordLedgerOperation("record", tt.err, 0.01)
			})
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordAllocation("fixed_leg", 3, 1.5, true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "surebet_allocations_total")
}

func TestObserveAllocationDuration(t *testing.T) {
	InitRegistry()

	before := testutil.CollectAndCount(AllocationDuration)
	ObserveAllocationDuration("capped_leg", 0.00002)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(AllocationDuration), before)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(AllocationDuration), 1)
}
