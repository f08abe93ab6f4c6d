// Package synergy estimates merger synergies and values them.
//
// The run-rate total feeds the pro forma income statement and is valued as
// a perpetuity at the configured discount rate. The phased realization
// schedule is a separate view of the same synergies and never feeds net
// income.
package synergy

import (
	"fmt"
	"math"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/deal"
	"github.com/sells-group/valuation-cli/internal/model"
)

// Basis names what cost synergies were applied to.
type Basis string

const (
	BasisSGA     Basis = "sga"
	BasisRevenue Basis = "revenue_fallback"
	BasisNone    Basis = "none"
)

// Year is one period of the phased realization schedule.
type Year struct {
	Year           int     `json:"year"`
	RealizationPct float64 `json:"realization_pct"`
	Synergies      float64 `json:"synergies"`
	PresentValue   float64 `json:"present_value"`
}

// Schedule is the phased realization view.
type Schedule struct {
	Years   []Year  `json:"years"`
	TotalPV float64 `json:"total_pv"`
}

// Result holds the synergy estimate.
type Result struct {
	CostBasis        Basis   `json:"cost_basis"`
	CostBasisAmount  float64 `json:"cost_basis_amount"`
	CostSynergies    float64 `json:"cost_synergies"`
	RevenueSynergies float64 `json:"revenue_synergies"`
	Total            float64 `json:"total"`

	DiscountRate  float64  `json:"discount_rate"`
	PerpetuityNPV float64  `json:"perpetuity_npv"`
	Schedule      Schedule `json:"schedule"`

	Warnings model.Warnings `json:"warnings,omitempty"`
}

// AfterTax returns run-rate synergies net of tax at taxRate (a fraction).
func (r *Result) AfterTax(taxRate float64) float64 {
	return r.Total * (1 - taxRate)
}

// Estimate computes cost and revenue synergies for target. Cost synergies
// apply to |SG&A|; without SG&A they fall back to a share of revenue and a
// warning is recorded.
func Estimate(target *model.FinancialSnapshot, a deal.Assumptions, cfg config.SynergyConfig) *Result {
	r := &Result{DiscountRate: cfg.DiscountRate}

	var revenue float64
	if target != nil {
		revenue = math.Max(model.Or(target.Revenue, 0), 0)
	}

	if sga, ok := sgaOf(target); ok {
		r.CostBasis = BasisSGA
		r.CostBasisAmount = sga
	} else if revenue > 0 {
		r.CostBasis = BasisRevenue
		r.CostBasisAmount = revenue * cfg.SGAFallbackPct / 100
		r.Warnings.Add(model.WarnSynergyBasis, fmt.Sprintf(
			"SG&A not available for %s; using %g%% of revenue as synergy basis", ticker(target), cfg.SGAFallbackPct))
	} else {
		r.CostBasis = BasisNone
		r.Warnings.Add(model.WarnSynergyBasis, fmt.Sprintf(
			"neither SG&A nor revenue available for %s; cost synergies set to zero", ticker(target)))
	}

	r.CostSynergies = r.CostBasisAmount * a.CostSynergyPct / 100
	r.RevenueSynergies = revenue * a.RevenueSynergyPct / 100
	r.Total = r.CostSynergies + r.RevenueSynergies

	if cfg.DiscountRate > 0 {
		r.PerpetuityNPV = r.Total / cfg.DiscountRate
	}
	r.Schedule = phased(r.Total, cfg)

	return r
}

// phased ramps synergies in by the configured realization fractions, holding
// the last fraction flat until the horizon.
func phased(total float64, cfg config.SynergyConfig) Schedule {
	years := cfg.ScheduleYears
	if years <= 0 {
		years = len(cfg.PhaseIn)
	}
	var s Schedule
	if years <= 0 {
		return s
	}
	s.Years = make([]Year, 0, years)
	for y := 1; y <= years; y++ {
		pct := 1.0
		if n := len(cfg.PhaseIn); n > 0 {
			pct = cfg.PhaseIn[min(y, n)-1]
		}
		amount := total * pct
		pv := amount / math.Pow(1+cfg.DiscountRate, float64(y))
		s.Years = append(s.Years, Year{Year: y, RealizationPct: pct * 100, Synergies: amount, PresentValue: pv})
		s.TotalPV += pv
	}
	return s
}

func sgaOf(s *model.FinancialSnapshot) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := model.Value(s.SGA)
	if !ok || v == 0 {
		return 0, false
	}
	return math.Abs(v), true
}

func ticker(s *model.FinancialSnapshot) string {
	if s == nil || s.Ticker == "" {
		return "target"
	}
	return s.Ticker
}
