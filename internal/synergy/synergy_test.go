package synergy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/deal"
	"github.com/sells-group/valuation-cli/internal/model"
)

func f(v float64) *float64 { return model.Float(v) }

var cfg = config.SynergyConfig{
	DiscountRate:   0.10,
	SGAFallbackPct: 5,
	PhaseIn:        []float64{0.33, 0.66, 1.0},
	ScheduleYears:  5,
}

var assumptions = deal.Assumptions{CostSynergyPct: 10, RevenueSynergyPct: 2}

func TestEstimate_FromSGA(t *testing.T) {
	t.Parallel()

	// SG&A is often reported negative; the absolute value is the basis.
	r := Estimate(&model.FinancialSnapshot{Ticker: "TGT", SGA: f(-8000), Revenue: f(50000)}, assumptions, cfg)

	assert.Equal(t, BasisSGA, r.CostBasis)
	assert.InDelta(t, 800, r.CostSynergies, 1e-9)
	assert.InDelta(t, 1000, r.RevenueSynergies, 1e-9)
	assert.InDelta(t, 1800, r.Total, 1e-9)
	assert.InDelta(t, 18000, r.PerpetuityNPV, 1e-6)
	assert.InDelta(t, 1350, r.AfterTax(0.25), 1e-9)
	assert.Empty(t, r.Warnings)
}

func TestEstimate_RevenueFallback(t *testing.T) {
	t.Parallel()

	r := Estimate(&model.FinancialSnapshot{Ticker: "TGT", Revenue: f(50000)}, assumptions, cfg)

	assert.Equal(t, BasisRevenue, r.CostBasis)
	assert.InDelta(t, 2500, r.CostBasisAmount, 1e-9)
	assert.InDelta(t, 250, r.CostSynergies, 1e-9)
	assert.True(t, r.Warnings.Has(model.WarnSynergyBasis))
}

func TestEstimate_NoBasis(t *testing.T) {
	t.Parallel()

	r := Estimate(&model.FinancialSnapshot{Ticker: "TGT"}, assumptions, cfg)
	assert.Equal(t, BasisNone, r.CostBasis)
	assert.Zero(t, r.Total)
	assert.Zero(t, r.PerpetuityNPV)
	assert.True(t, r.Warnings.Has(model.WarnSynergyBasis))
}

func TestEstimate_PhasedSchedule(t *testing.T) {
	t.Parallel()

	r := Estimate(&model.FinancialSnapshot{Ticker: "TGT", SGA: f(10000)}, deal.Assumptions{CostSynergyPct: 10}, cfg)
	require.Len(t, r.Schedule.Years, 5)

	wantPct := []float64{33, 66, 100, 100, 100}
	var sum float64
	for i, y := range r.Schedule.Years {
		assert.Equal(t, i+1, y.Year)
		assert.InDelta(t, wantPct[i], y.RealizationPct, 1e-9)
		assert.InDelta(t, 1000*wantPct[i]/100, y.Synergies, 1e-9)
		sum += y.PresentValue
	}
	assert.InDelta(t, 1000*0.33/1.1, r.Schedule.Years[0].PresentValue, 1e-9)
	assert.InDelta(t, sum, r.Schedule.TotalPV, 1e-9)

	// The phased view is always worth less than the run-rate perpetuity.
	assert.Less(t, r.Schedule.TotalPV, r.PerpetuityNPV)
}
