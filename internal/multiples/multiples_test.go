package multiples

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-cli/internal/model"
)

func f(v float64) *float64 { return model.Float(v) }

func TestCompute_Derived(t *testing.T) {
	t.Parallel()

	s := &model.FinancialSnapshot{
		Ticker:            "acme",
		Sector:            "Technology",
		Price:             f(50),
		SharesOutstanding: f(100),
		Revenue:           f(2000),
		EBITDA:            f(500),
		NetIncome:         f(250),
		TotalDebt:         f(1000),
		Cash:              f(200),
		BookValuePerShare: f(10),
		RevenueGrowth:     f(0.15),
	}

	c := Compute(s)
	require.True(t, c.Valid)
	assert.Equal(t, "ACME", c.Ticker)
	assert.Equal(t, "ACME", c.Name)
	assert.InDelta(t, 5000, c.MarketCap, 1e-9)
	assert.InDelta(t, 5800, c.EnterpriseValue, 1e-9)

	assert.InDelta(t, 2.9, *c.EVRevenue, 1e-9)
	assert.InDelta(t, 11.6, *c.EVEBITDA, 1e-9)
	assert.InDelta(t, 2.5, *c.EPS, 1e-9)
	assert.InDelta(t, 20, *c.PE, 1e-9)
	assert.InDelta(t, 2.5, *c.PS, 1e-9)
	assert.InDelta(t, 5, *c.PB, 1e-9)
	assert.Nil(t, c.PEG)

	assert.InDelta(t, 0.25, *c.EBITDAMargin, 1e-9)
	assert.InDelta(t, 0.125, *c.NetMargin, 1e-9)
	assert.InDelta(t, 2, *c.DebtToEBITDA, 1e-9)
	assert.InDelta(t, 40, *c.RuleOf40, 1e-9)
}

func TestCompute_ReportedMultiplesWin(t *testing.T) {
	t.Parallel()

	s := &model.FinancialSnapshot{
		Ticker:            "ACME",
		Price:             f(50),
		MarketCap:         f(5000),
		EnterpriseValue:   f(6000),
		Revenue:           f(2000),
		EBITDA:            f(500),
		TrailingPE:        f(18),
		EVEBITDA:          f(13),
		PEG:               f(1.4),
		SharesOutstanding: f(100),
		NetIncome:         f(250),
	}

	c := Compute(s)
	require.True(t, c.Valid)
	assert.InDelta(t, 18, *c.PE, 1e-9)
	assert.InDelta(t, 13, *c.EVEBITDA, 1e-9)
	assert.InDelta(t, 3, *c.EVRevenue, 1e-9)
	assert.InDelta(t, 1.4, *c.PEG, 1e-9)
}

func TestCompute_GuardsDenominators(t *testing.T) {
	t.Parallel()

	s := &model.FinancialSnapshot{
		Ticker:            "LOSS",
		Price:             f(10),
		SharesOutstanding: f(100),
		Revenue:           f(0),
		EBITDA:            f(-50),
		NetIncome:         f(-20),
		TotalDebt:         f(300),
		EVRevenue:         f(math.NaN()),
	}

	c := Compute(s)
	require.True(t, c.Valid)
	assert.Nil(t, c.EVRevenue)
	assert.Nil(t, c.EVEBITDA)
	assert.Nil(t, c.PE)
	assert.Nil(t, c.PS)
	assert.Nil(t, c.PB)
	assert.Nil(t, c.EBITDAMargin)
	assert.Nil(t, c.NetMargin)
	assert.Nil(t, c.DebtToEBITDA)
	assert.Nil(t, c.RuleOf40)
	assert.InDelta(t, -0.2, *c.EPS, 1e-9)
}

func TestCompute_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		snap    *model.FinancialSnapshot
		wantErr string
	}{
		{"nil snapshot", nil, ErrNoData},
		{"missing ticker", &model.FinancialSnapshot{Price: f(1)}, "missing ticker"},
		{"missing price", &model.FinancialSnapshot{Ticker: "X"}, ErrNoData},
		{"zero price", &model.FinancialSnapshot{Ticker: "X", Price: f(0)}, ErrNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compute(tt.snap)
			assert.False(t, c.Valid)
			assert.Equal(t, tt.wantErr, c.Error)
		})
	}
}

func TestFailed(t *testing.T) {
	t.Parallel()

	c := Failed(" abc ", "timeout")
	assert.Equal(t, "ABC", c.Ticker)
	assert.False(t, c.Valid)
	assert.Equal(t, "timeout", c.Error)
}
