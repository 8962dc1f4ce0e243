package service

import (
	"time"

	uedomain "github.com/costlens/costlens/internal/uniteconomics/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DefaultEpsilon is the absolute tolerance, in currency units, for the
// aggregation integrity and formula balance checks.
const DefaultEpsilon = 0.05

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

type Service struct {
	log *zap.Logger
}

func NewService(p ServiceParam) uedomain.Service {
	return &Service{
		log: p.Log.Named("uniteconomics.service"),
	}
}

// ComputeUnitEconomics runs all four checks independently and surfaces every
// result together.
func (s *Service) ComputeUnitEconomics(inputs uedomain.Inputs) uedomain.Report {
	report := uedomain.Report{
		Margin:      MarginOverlay(inputs.Current, inputs.Previous),
		Aggregation: GuardAggregationIntegrity(inputs.ReportedTotalCost, inputs.AllocationRows, DefaultEpsilon),
		Alignment:   ValidatePeriodAlignment(inputs.CostWindow, inputs.VolumeWindow),
	}
	for _, check := range inputs.FormulaChecks {
		report.Formulas = append(report.Formulas, ValidateFormulaBalance(check))
	}

	if !report.Aggregation.Valid {
		s.log.Warn("allocation rows do not sum to reported total",
			zap.Float64("reported_total", report.Aggregation.ReportedTotal),
			zap.Float64("row_total", report.Aggregation.RowTotal),
			zap.Float64("difference", report.Aggregation.Difference),
		)
	}

	return report
}

// MarginOverlay derives per-unit margin figures for the current period and a
// trend against the previous one. Margin per unit is not meaningful without
// positive revenue and volume, so those inputs yield an explicit unavailable
// result with nil fields rather than zeros.
func MarginOverlay(current, previous uedomain.PeriodAggregate) uedomain.MarginOverlay {
	if current.Revenue <= 0 || current.Volume <= 0 {
		return uedomain.MarginOverlay{Available: false}
	}

	revenuePerUnit := round6(current.Revenue / current.Volume)
	costPerUnit := round6(current.FinalAllocatedCost / current.Volume)
	marginPerUnit := round6(revenuePerUnit - costPerUnit)

	overlay := uedomain.MarginOverlay{
		Available:      true,
		RevenuePerUnit: &revenuePerUnit,
		CostPerUnit:    &costPerUnit,
		MarginPerUnit:  &marginPerUnit,
	}

	if previous.Revenue > 0 && previous.Volume > 0 {
		prevMargin := round6(round6(previous.Revenue/previous.Volume) - round6(previous.FinalAllocatedCost/previous.Volume))
		if prevMargin != 0 {
			trend := round2((marginPerUnit - prevMargin) / prevMargin * 100)
			overlay.TrendPct = &trend
		}
	}

	return overlay
}

// GuardAggregationIntegrity sums the allocation rows and compares the result
// to the reported total within an absolute epsilon. It catches allocation
// logic that double-counts or drops cost.
func GuardAggregationIntegrity(reportedTotal float64, rows []uedomain.AllocationRow, epsilon float64) uedomain.AggregationCheck {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(decimal.NewFromFloat(row.TotalCost))
	}

	rowTotal := sum.Round(2)
	reported := decimal.NewFromFloat(reportedTotal).Round(2)
	difference := reported.Sub(rowTotal)

	return uedomain.AggregationCheck{
		Valid:         difference.Abs().LessThanOrEqual(decimal.NewFromFloat(epsilon)),
		ReportedTotal: reported.InexactFloat64(),
		RowTotal:      rowTotal.InexactFloat64(),
		Difference:    difference.InexactFloat64(),
		Epsilon:       epsilon,
	}
}

// ValidateFormulaBalance is the generic two-value check for any
// derived-vs-recomputed metric pair.
func ValidateFormulaBalance(check uedomain.FormulaCheck) uedomain.FormulaBalance {
	epsilon := check.Epsilon
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	expected := decimal.NewFromFloat(check.Expected)
	actual := decimal.NewFromFloat(check.Actual)
	difference := actual.Sub(expected)

	return uedomain.FormulaBalance{
		Name:       check.Name,
		Balanced:   difference.Abs().LessThanOrEqual(decimal.NewFromFloat(epsilon)),
		Expected:   check.Expected,
		Actual:     check.Actual,
		Difference: difference.InexactFloat64(),
	}
}

// ValidatePeriodAlignment requires both windows present with exactly matching
// start and end timestamps. Cost per unit of volume is invalid when the two
// measurements cover different spans.
func ValidatePeriodAlignment(costWindow, volumeWindow *uedomain.Window) uedomain.PeriodAlignment {
	alignment := uedomain.PeriodAlignment{}

	if costWindow != nil {
		alignment.CostWindowStart = isoTimestamp(costWindow.Start)
		alignment.CostWindowEnd = isoTimestamp(costWindow.End)
	}
	if volumeWindow != nil {
		alignment.VolumeWindowStart = isoTimestamp(volumeWindow.Start)
		alignment.VolumeWindowEnd = isoTimestamp(volumeWindow.End)
	}

	alignment.Aligned = costWindow != nil && volumeWindow != nil &&
		costWindow.Start.Equal(volumeWindow.Start) &&
		costWindow.End.Equal(volumeWindow.End)

	return alignment
}

func isoTimestamp(t time.Time) *string {
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

func round6(value float64) float64 {
	return decimal.NewFromFloat(value).Round(6).InexactFloat64()
}

func round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
