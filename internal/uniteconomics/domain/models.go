// Package domain contains the request-scoped unit economics shapes.
// Nothing here is persisted; inputs are computed fresh per request from facts.
package domain

import "time"

// Window is an observation date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// PeriodAggregate carries the pre-aggregated numbers for one period. The
// aggregation itself is delegated to the external query layer.
type PeriodAggregate struct {
	Revenue            float64
	FinalAllocatedCost float64
	Volume             float64
}

// AllocationRow is one allocation line contributing to the reported total.
type AllocationRow struct {
	Label     string
	TotalCost float64
}

// FormulaCheck pairs a derived metric with its recomputation.
type FormulaCheck struct {
	Name     string
	Expected float64
	Actual   float64
	Epsilon  float64
}

// Inputs is the ephemeral request-scoped aggregate a report is computed from.
type Inputs struct {
	Current  PeriodAggregate
	Previous PeriodAggregate

	CostWindow   *Window
	VolumeWindow *Window

	ReportedTotalCost float64
	AllocationRows    []AllocationRow

	FormulaChecks []FormulaCheck
}

// MarginOverlay holds per-unit margin figures. Unavailable means nil fields:
// a null result must stay distinguishable from a zero result downstream.
type MarginOverlay struct {
	Available      bool
	RevenuePerUnit *float64
	CostPerUnit    *float64
	MarginPerUnit  *float64
	TrendPct       *float64
}

// AggregationCheck compares row-summed cost against the reported total.
type AggregationCheck struct {
	Valid         bool
	ReportedTotal float64
	RowTotal      float64
	// Difference is signed: reported total minus row sum.
	Difference float64
	Epsilon    float64
}

// FormulaBalance is the generic expected-vs-actual verdict.
type FormulaBalance struct {
	Name     string
	Balanced bool
	Expected float64
	Actual   float64
	// Difference is signed: actual minus expected.
	Difference float64
}

// PeriodAlignment reports whether cost and volume were measured over the same
// span. Both normalized windows are returned regardless of the outcome so
// callers can display what was actually compared.
type PeriodAlignment struct {
	Aligned           bool
	CostWindowStart   *string
	CostWindowEnd     *string
	VolumeWindowStart *string
	VolumeWindowEnd   *string
}

// Report combines all four independent checks. They never short-circuit, so
// a report can say "margin available, but periods misaligned".
type Report struct {
	Margin      MarginOverlay
	Aggregation AggregationCheck
	Formulas    []FormulaBalance
	Alignment   PeriodAlignment
}

// Service computes unit economics reports from pre-aggregated inputs.
type Service interface {
	ComputeUnitEconomics(inputs Inputs) Report
}
