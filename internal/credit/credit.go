// Package credit computes pro forma leverage, coverage and a paydown
// projection for acquisition debt.
package credit

import (
	"math"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
)

// Input is the combined balance sheet and earnings the metrics are built
// from. Interest amounts are expected as positive expenses.
type Input struct {
	AcquirerDebt        float64
	TargetDebt          float64
	NewDebt             float64
	AcquirerCash        float64
	TargetCash          float64
	AcquirerInterest    float64
	TargetInterest      float64
	IncrementalInterest float64
	ProFormaEBITDA      float64
}

// PaydownYear is the state of acquisition debt at the end of one year.
type PaydownYear struct {
	Year          int      `json:"year"`
	RemainingDebt float64  `json:"remaining_debt"`
	Leverage      *float64 `json:"leverage,omitempty"`
}

// Metrics are the pro forma credit statistics.
type Metrics struct {
	TotalDebt     float64       `json:"total_debt"`
	NetDebt       float64       `json:"net_debt"`
	TotalInterest float64       `json:"total_interest"`
	Leverage      *float64      `json:"leverage,omitempty"`
	Coverage      *float64      `json:"coverage,omitempty"`
	AnnualPaydown float64       `json:"annual_paydown"`
	Paydown       []PaydownYear `json:"paydown,omitempty"`
	YearsToRepay  *int          `json:"years_to_repay,omitempty"`
}

// Analyze computes credit metrics. Leverage is nil when EBITDA is not
// positive and coverage is nil without interest expense.
func Analyze(in Input, cfg config.CreditConfig) *Metrics {
	m := &Metrics{
		TotalDebt:     in.AcquirerDebt + in.TargetDebt + in.NewDebt,
		TotalInterest: math.Abs(in.AcquirerInterest) + math.Abs(in.TargetInterest) + in.IncrementalInterest,
	}
	m.NetDebt = m.TotalDebt - (in.AcquirerCash + in.TargetCash)
	m.Leverage = leverage(m.TotalDebt, in.ProFormaEBITDA)
	if m.TotalInterest > 0 {
		m.Coverage = model.FiniteOrNil(in.ProFormaEBITDA / m.TotalInterest)
	}

	m.AnnualPaydown = math.Max(in.ProFormaEBITDA*cfg.PaydownPctOfEBITDA/100, 0)
	m.Paydown, m.YearsToRepay = paydown(in, m.AnnualPaydown, cfg.PaydownMaxYears)
	return m
}

// paydown retires new debt by a fixed annual amount until it is repaid or
// maxYears have elapsed.
func paydown(in Input, annual float64, maxYears int) ([]PaydownYear, *int) {
	if in.NewDebt <= 0 || maxYears <= 0 {
		return nil, nil
	}
	existing := in.AcquirerDebt + in.TargetDebt
	remaining := in.NewDebt

	var (
		years  []PaydownYear
		repaid *int
	)
	for y := 1; y <= maxYears && remaining > 0; y++ {
		remaining = math.Max(remaining-annual, 0)
		years = append(years, PaydownYear{
			Year:          y,
			RemainingDebt: remaining,
			Leverage:      leverage(existing+remaining, in.ProFormaEBITDA),
		})
		if remaining == 0 {
			year := y
			repaid = &year
		}
	}
	return years, repaid
}

func leverage(debt, ebitda float64) *float64 {
	if ebitda <= 0 {
		return nil
	}
	return model.FiniteOrNil(debt / ebitda)
}
