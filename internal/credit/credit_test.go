package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-cli/internal/config"
)

var cfg = config.CreditConfig{PaydownPctOfEBITDA: 40, PaydownMaxYears: 10, LeverageWarning: 5}

func TestAnalyze_Metrics(t *testing.T) {
	t.Parallel()

	m := Analyze(Input{
		AcquirerDebt:        100,
		TargetDebt:          50,
		NewDebt:             250,
		AcquirerCash:        30,
		TargetCash:          20,
		AcquirerInterest:    -6,
		TargetInterest:      4,
		IncrementalInterest: 10,
		ProFormaEBITDA:      200,
	}, cfg)

	assert.InDelta(t, 400, m.TotalDebt, 1e-9)
	assert.InDelta(t, 350, m.NetDebt, 1e-9)
	assert.InDelta(t, 20, m.TotalInterest, 1e-9)
	assert.InDelta(t, 2, *m.Leverage, 1e-9)
	assert.InDelta(t, 10, *m.Coverage, 1e-9)
	assert.InDelta(t, 80, m.AnnualPaydown, 1e-9)

	require.Len(t, m.Paydown, 4)
	assert.InDelta(t, 170, m.Paydown[0].RemainingDebt, 1e-9)
	assert.InDelta(t, 1.6, *m.Paydown[0].Leverage, 1e-9)
	assert.InDelta(t, 0, m.Paydown[3].RemainingDebt, 1e-9)
	assert.InDelta(t, 0.75, *m.Paydown[3].Leverage, 1e-9)
	require.NotNil(t, m.YearsToRepay)
	assert.Equal(t, 4, *m.YearsToRepay)
}

func TestAnalyze_NonPositiveEBITDA(t *testing.T) {
	t.Parallel()

	m := Analyze(Input{NewDebt: 100, ProFormaEBITDA: -10}, cfg)
	assert.Nil(t, m.Leverage)
	assert.Nil(t, m.Coverage)
	assert.Zero(t, m.AnnualPaydown)

	// No paydown capacity: the schedule stops at the cap with nothing repaid.
	require.Len(t, m.Paydown, 10)
	assert.InDelta(t, 100, m.Paydown[9].RemainingDebt, 1e-9)
	assert.Nil(t, m.Paydown[9].Leverage)
	assert.Nil(t, m.YearsToRepay)
}

func TestAnalyze_PaydownTerminatesWithinCap(t *testing.T) {
	t.Parallel()

	for _, newDebt := range []float64{1, 99, 400, 800, 1e6} {
		m := Analyze(Input{NewDebt: newDebt, ProFormaEBITDA: 250}, cfg)
		assert.LessOrEqual(t, len(m.Paydown), cfg.PaydownMaxYears)
		prev := newDebt
		for _, y := range m.Paydown {
			assert.LessOrEqual(t, y.RemainingDebt, prev)
			assert.GreaterOrEqual(t, y.RemainingDebt, 0.0)
			prev = y.RemainingDebt
		}
	}
}

func TestAnalyze_NoNewDebt(t *testing.T) {
	t.Parallel()

	m := Analyze(Input{AcquirerDebt: 100, ProFormaEBITDA: 50}, cfg)
	assert.Empty(t, m.Paydown)
	assert.Nil(t, m.YearsToRepay)
	assert.Nil(t, m.Coverage)
	assert.InDelta(t, 2, *m.Leverage, 1e-9)
}
