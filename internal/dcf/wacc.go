package dcf

import (
	"fmt"
	"math"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
)

// WACC is a weighted average cost of capital built with CAPM.
type WACC struct {
	Beta         float64              `json:"beta"`
	CostOfEquity float64              `json:"cost_of_equity"`
	CostOfDebt   float64              `json:"cost_of_debt"` // pre-tax
	TaxRate      float64              `json:"tax_rate"`
	WeightEquity float64              `json:"weight_equity"`
	WeightDebt   float64              `json:"weight_debt"`
	Rate         float64              `json:"wacc"`
	Warnings     model.Warnings       `json:"warnings,omitempty"`
	Insufficient *model.Insufficiency `json:"insufficient,omitempty"`
}

// ComputeWACC derives the discount rate for s. Missing beta, cost of debt or
// tax rate fall back to configured defaults with a warning; a company with
// neither market cap nor debt cannot be weighted.
func ComputeWACC(s *model.FinancialSnapshot, cfg config.WACCConfig) *WACC {
	w := &WACC{}
	if s == nil {
		w.Insufficient = &model.Insufficiency{Field: "wacc", Reason: "no snapshot"}
		return w
	}

	if beta, ok := model.Value(s.Beta); ok {
		w.Beta = beta
	} else {
		w.Beta = cfg.DefaultBeta
		w.Warnings.Add(model.WarnDefaultBeta, fmt.Sprintf("beta missing for %s; using %.2f", s.Ticker, cfg.DefaultBeta))
	}
	// CAPM: ke = rf + beta × ERP
	w.CostOfEquity = cfg.RiskFreeRate + w.Beta*cfg.EquityRiskPremium

	debt := math.Max(model.Or(s.TotalDebt, 0), 0)
	interest, hasInterest := model.Value(s.InterestExpense)
	if debt > 0 && hasInterest && interest != 0 {
		w.CostOfDebt = math.Abs(interest) / debt
	} else {
		w.CostOfDebt = cfg.DefaultCostOfDebt
		if debt > 0 {
			w.Warnings.Add(model.WarnDefaultCostDebt, fmt.Sprintf("interest expense missing for %s; using %.2f%%", s.Ticker, cfg.DefaultCostOfDebt*100))
		}
	}

	tax, hasTax := model.Value(s.TaxProvision)
	pretax, hasPretax := model.Value(s.PretaxIncome)
	if hasTax && hasPretax && pretax != 0 {
		raw := math.Abs(tax) / math.Abs(pretax)
		w.TaxRate = math.Min(math.Max(raw, cfg.MinTaxRate), cfg.MaxTaxRate)
		if w.TaxRate != raw {
			w.Warnings.Add(model.WarnTaxRateClamped, fmt.Sprintf("effective tax rate %.1f%% clamped to %.1f%%", raw*100, w.TaxRate*100))
		}
	} else {
		w.TaxRate = cfg.DefaultTaxRate
		w.Warnings.Add(model.WarnDefaultTaxRate, fmt.Sprintf("tax data missing for %s; using %.1f%%", s.Ticker, cfg.DefaultTaxRate*100))
	}

	mc, _ := s.MarketCapValue()
	total := mc + debt
	if total <= 0 {
		w.Insufficient = &model.Insufficiency{Field: "wacc", Reason: "market cap and debt both missing"}
		return w
	}
	w.WeightEquity = mc / total
	w.WeightDebt = debt / total
	w.Rate = w.WeightEquity*w.CostOfEquity + w.WeightDebt*w.CostOfDebt*(1-w.TaxRate)
	return w
}
