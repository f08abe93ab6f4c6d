// Package lbo estimates sponsor returns for a leveraged buyout of a company
// at its current enterprise value.
package lbo

import (
	"fmt"
	"math"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
)

// exitBands scale the entry multiple when no exit multiples are configured.
var exitBands = []float64{0.8, 1.0, 1.2}

// DefaultMaxHoldYears caps the holding period when no cap is configured.
const DefaultMaxHoldYears = 30

// Assumptions drive the returns grid.
type Assumptions struct {
	Leverage      float64   `json:"leverage"`    // entry debt / EBITDA
	PaydownPct    float64   `json:"paydown_pct"` // share of entry EBITDA repaying debt each year
	HoldYears     int       `json:"hold_years"`
	GrowthRates   []float64 `json:"growth_rates"`
	ExitMultiples []float64 `json:"exit_multiples,omitempty"` // empty = entry multiple × 0.8/1.0/1.2

	// MaxHoldYears is the longest accepted hold; zero means DefaultMaxHoldYears.
	MaxHoldYears int `json:"-"`
}

func (a Assumptions) maxHoldYears() int {
	if a.MaxHoldYears > 0 {
		return a.MaxHoldYears
	}
	return DefaultMaxHoldYears
}

// AssumptionsFromConfig returns the configured defaults.
func AssumptionsFromConfig(c config.LBOConfig) Assumptions {
	return Assumptions{
		Leverage:      c.Leverage,
		PaydownPct:    c.PaydownPct,
		HoldYears:     c.HoldYears,
		GrowthRates:   c.GrowthRates,
		ExitMultiples: c.ExitMultiples,
		MaxHoldYears:  c.MaxHoldYears,
	}
}

// Cell is one growth × exit multiple scenario.
type Cell struct {
	Growth       float64  `json:"growth"`
	ExitMultiple float64  `json:"exit_multiple"`
	ExitEBITDA   float64  `json:"exit_ebitda"`
	ExitEV       float64  `json:"exit_ev"`
	EquityOut    float64  `json:"equity_out"`
	MOIC         *float64 `json:"moic,omitempty"`
	IRR          *float64 `json:"irr,omitempty"`
}

// Result is the returns analysis.
type Result struct {
	Ticker          string      `json:"ticker"`
	Assumptions     Assumptions `json:"assumptions"`
	EnterpriseValue float64     `json:"enterprise_value"`
	EBITDA          float64     `json:"ebitda"`
	EntryMultiple   float64     `json:"entry_multiple"`
	EntryDebt       float64     `json:"entry_debt"`
	EquityIn        float64     `json:"equity_in"`
	EquityPct       float64     `json:"equity_pct"`
	DebtPaydown     float64     `json:"debt_paydown"`
	ExitDebt        float64     `json:"exit_debt"`
	ExitMultiples   []float64   `json:"exit_multiples"`
	Grid            [][]Cell    `json:"grid"` // rows follow GrowthRates, columns ExitMultiples

	Insufficient *model.Insufficiency `json:"insufficient,omitempty"`
}

// Analyze builds the returns grid. The sponsor buys at current EV funded by
// Leverage × EBITDA of debt, repays PaydownPct of entry EBITDA each year and
// exits at the scenario multiple of grown EBITDA.
func Analyze(s *model.FinancialSnapshot, a Assumptions) *Result {
	res := &Result{Assumptions: a}
	if s == nil {
		res.Insufficient = &model.Insufficiency{Field: "lbo", Reason: "no snapshot"}
		return res
	}
	res.Ticker = s.Ticker

	ev, okEV := s.EnterpriseValueOf()
	ebitda, okE := model.Positive(s.EBITDA)
	switch {
	case !okEV || ev <= 0:
		res.Insufficient = &model.Insufficiency{Field: "enterprise_value", Reason: "enterprise value missing or not positive"}
		return res
	case !okE:
		res.Insufficient = &model.Insufficiency{Field: "ebitda", Reason: "EBITDA missing or not positive"}
		return res
	case a.HoldYears <= 0:
		res.Insufficient = &model.Insufficiency{Field: "hold_years", Reason: "hold period must be positive"}
		return res
	case a.HoldYears > a.maxHoldYears():
		res.Insufficient = &model.Insufficiency{
			Field:  "hold_years",
			Reason: fmt.Sprintf("hold period %d exceeds the maximum of %d years", a.HoldYears, a.maxHoldYears()),
		}
		return res
	}

	res.EnterpriseValue = ev
	res.EBITDA = ebitda
	res.EntryMultiple = ev / ebitda
	res.EntryDebt = a.Leverage * ebitda
	res.EquityIn = math.Max(ev-res.EntryDebt, 0)
	res.EquityPct = res.EquityIn / ev * 100
	res.DebtPaydown = ebitda * a.PaydownPct * float64(a.HoldYears)
	res.ExitDebt = math.Max(res.EntryDebt-res.DebtPaydown, 0)

	res.ExitMultiples = a.ExitMultiples
	if len(res.ExitMultiples) == 0 {
		res.ExitMultiples = make([]float64, len(exitBands))
		for i, b := range exitBands {
			res.ExitMultiples[i] = res.EntryMultiple * b
		}
	}

	res.Grid = make([][]Cell, len(a.GrowthRates))
	for i, g := range a.GrowthRates {
		row := make([]Cell, len(res.ExitMultiples))
		exitEBITDA := ebitda * math.Pow(1+g, float64(a.HoldYears))
		for j, m := range res.ExitMultiples {
			c := Cell{Growth: g, ExitMultiple: m, ExitEBITDA: exitEBITDA, ExitEV: exitEBITDA * m}
			c.EquityOut = math.Max(c.ExitEV-res.ExitDebt, 0)
			if res.EquityIn > 0 {
				moic := c.EquityOut / res.EquityIn
				c.MOIC = model.FiniteOrNil(moic)
				if moic > 0 {
					c.IRR = model.FiniteOrNil(math.Pow(moic, 1/float64(a.HoldYears)) - 1)
				}
			}
			row[j] = c
		}
		res.Grid[i] = row
	}
	return res
}
