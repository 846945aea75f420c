package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every series the back-office exports.
const Namespace = "backoffice"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// SalesMetrics tracks engine operations and their stock side effects.
type SalesMetrics struct {
	operations *prometheus.CounterVec
	cashDelta  prometheus.Histogram
	stock      *prometheus.CounterVec
	shortfall  prometheus.Counter
}

// NewSalesMetrics registers the sales metrics on the provided registerer.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "sales_operations_total",
		Help:      "Sale engine operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	cashDelta := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "sales_courier_cash_delta",
		Help:      "Change in courier cash-relevant value caused by sale edits.",
		Buckets:   []float64{-500, -200, -100, -50, -10, 0, 10, 50, 100, 200, 500},
	})
	stock := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "stock_adjustments_total",
		Help:      "Stock variable adjustments applied by sales, by direction.",
	}, []string{"direction"})
	shortfall := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "stock_reversal_shortfall_units_total",
		Help:      "Units a sale reversal could not take back because the stock was already used.",
	})
	reg.MustRegister(operations, cashDelta, stock, shortfall)
	return &SalesMetrics{
		operations: operations,
		cashDelta:  cashDelta,
		stock:      stock,
		shortfall:  shortfall,
	}
}

// ObserveOperation counts one engine operation.
func (m *SalesMetrics) ObserveOperation(operation string, err error) {
	if m == nil || m.operations == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.operations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

// ObserveCashDelta records the courier cash difference produced by an edit.
func (m *SalesMetrics) ObserveCashDelta(delta float64) {
	if m == nil || m.cashDelta == nil {
		return
	}
	m.cashDelta.Observe(delta)
}

// AddStockAdjustment counts stock movements in the given direction.
func (m *SalesMetrics) AddStockAdjustment(direction string, count int) {
	if m == nil || m.stock == nil || count <= 0 {
		return
	}
	m.stock.WithLabelValues(direction).Add(float64(count))
}

// AddReversalShortfall counts units an undo could not withdraw.
func (m *SalesMetrics) AddReversalShortfall(units int) {
	if m == nil || m.shortfall == nil || units <= 0 {
		return
	}
	m.shortfall.Add(float64(units))
}
