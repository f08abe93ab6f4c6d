// Package dcf values a company from its free cash flow: forward DCF,
// sensitivity grids, reverse DCF, Monte Carlo simulation and WACC via CAPM.
package dcf

import (
	"fmt"
	"math"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
)

// DefaultMaxYears caps the projection horizon when no cap is configured.
const DefaultMaxYears = 50

// Assumptions drive the forward projection. Rates are decimals.
type Assumptions struct {
	Growth         float64 `json:"growth"`
	TerminalGrowth float64 `json:"terminal_growth"`
	DiscountRate   float64 `json:"discount_rate"`
	Years          int     `json:"years"`

	// MaxYears is the longest accepted horizon; zero means DefaultMaxYears.
	MaxYears int `json:"-"`
}

func (a Assumptions) maxYears() int {
	if a.MaxYears > 0 {
		return a.MaxYears
	}
	return DefaultMaxYears
}

// AssumptionsFromConfig returns the configured point estimate.
func AssumptionsFromConfig(c config.DCFConfig) Assumptions {
	return Assumptions{
		Growth:         c.Growth,
		TerminalGrowth: c.TerminalGrowth,
		DiscountRate:   c.DiscountRate,
		Years:          c.Years,
		MaxYears:       c.MaxYears,
	}
}

// Input is everything a valuation needs besides the assumptions.
type Input struct {
	Ticker       string
	BaseFCF      float64
	NetDebt      float64
	Shares       float64 // <= 0 when unknown
	CurrentPrice float64 // <= 0 when unknown
}

// InputFromSnapshot extracts valuation inputs. Missing FCF leaves BaseFCF at
// zero, which values as insufficient.
func InputFromSnapshot(s *model.FinancialSnapshot) Input {
	if s == nil {
		return Input{}
	}
	in := Input{
		Ticker:       s.Ticker,
		NetDebt:      s.NetDebt(),
		Shares:       model.Or(s.SharesOutstanding, 0),
		CurrentPrice: model.Or(s.Price, 0),
	}
	if fcf, ok := s.LatestFCF(); ok {
		in.BaseFCF = fcf
	}
	return in
}

// YearFlow is one projected year.
type YearFlow struct {
	Year       int     `json:"year"`
	FCF        float64 `json:"fcf"`
	Discounted float64 `json:"discounted"`
}

// Result is a forward DCF valuation.
type Result struct {
	Ticker      string      `json:"ticker,omitempty"`
	Assumptions Assumptions `json:"assumptions"`
	BaseFCF     float64     `json:"base_fcf"`

	Projections     []YearFlow `json:"projections,omitempty"`
	SumPV           float64    `json:"sum_pv"`
	TerminalValue   float64    `json:"terminal_value"`
	PVTerminal      float64    `json:"pv_terminal"`
	EnterpriseValue float64    `json:"enterprise_value"`
	NetDebt         float64    `json:"net_debt"`
	EquityValue     float64    `json:"equity_value"`

	ImpliedPrice *float64 `json:"implied_price,omitempty"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	UpsidePct    *float64 `json:"upside_pct,omitempty"`

	Insufficient *model.Insufficiency `json:"insufficient,omitempty"`
}

// Valid reports whether the valuation was computed.
func (r *Result) Valid() bool { return r != nil && r.Insufficient == nil }

// Value runs the forward DCF. Non-positive base FCF, a discount rate not
// above terminal growth, or a horizon outside 1..MaxYears yield an
// insufficient result rather than an error.
func Value(in Input, a Assumptions) *Result {
	res := &Result{
		Ticker:      in.Ticker,
		Assumptions: a,
		BaseFCF:     in.BaseFCF,
		NetDebt:     in.NetDebt,
	}
	if in.CurrentPrice > 0 {
		res.CurrentPrice = model.Float(in.CurrentPrice)
	}
	if ins := check(in.BaseFCF, a); ins != nil {
		res.Insufficient = ins
		return res
	}

	fcf := in.BaseFCF
	res.Projections = make([]YearFlow, 0, a.Years)
	for t := 1; t <= a.Years; t++ {
		fcf *= 1 + a.Growth
		pv := fcf / math.Pow(1+a.DiscountRate, float64(t))
		res.Projections = append(res.Projections, YearFlow{Year: t, FCF: fcf, Discounted: pv})
		res.SumPV += pv
	}
	res.TerminalValue = fcf * (1 + a.TerminalGrowth) / (a.DiscountRate - a.TerminalGrowth)
	res.PVTerminal = res.TerminalValue / math.Pow(1+a.DiscountRate, float64(a.Years))
	res.EnterpriseValue = res.SumPV + res.PVTerminal
	res.EquityValue = res.EnterpriseValue - in.NetDebt

	if in.Shares > 0 {
		price := res.EquityValue / in.Shares
		res.ImpliedPrice = model.FiniteOrNil(price)
		if in.CurrentPrice > 0 {
			res.UpsidePct = model.FiniteOrNil((price/in.CurrentPrice - 1) * 100)
		}
	}
	return res
}

// EnterpriseValue is the forward DCF enterprise value alone.
func EnterpriseValue(baseFCF float64, a Assumptions) (float64, bool) {
	if check(baseFCF, a) != nil {
		return 0, false
	}
	fcf := baseFCF
	var sum float64
	for t := 1; t <= a.Years; t++ {
		fcf *= 1 + a.Growth
		sum += fcf / math.Pow(1+a.DiscountRate, float64(t))
	}
	tv := fcf * (1 + a.TerminalGrowth) / (a.DiscountRate - a.TerminalGrowth)
	ev := sum + tv/math.Pow(1+a.DiscountRate, float64(a.Years))
	if math.IsNaN(ev) || math.IsInf(ev, 0) {
		return 0, false
	}
	return ev, true
}

// impliedPrice is the per-share equity value, or false when shares are unknown.
func impliedPrice(in Input, a Assumptions) (float64, bool) {
	if in.Shares <= 0 {
		return 0, false
	}
	ev, ok := EnterpriseValue(in.BaseFCF, a)
	if !ok {
		return 0, false
	}
	return (ev - in.NetDebt) / in.Shares, true
}

func check(baseFCF float64, a Assumptions) *model.Insufficiency {
	switch {
	case math.IsNaN(baseFCF) || baseFCF <= 0:
		return &model.Insufficiency{Field: "base_fcf", Reason: "free cash flow missing or not positive"}
	case a.Years <= 0:
		return &model.Insufficiency{Field: "years", Reason: "projection horizon must be positive"}
	case a.Years > a.maxYears():
		return &model.Insufficiency{
			Field:  "years",
			Reason: fmt.Sprintf("projection horizon %d exceeds the maximum of %d years", a.Years, a.maxYears()),
		}
	case a.DiscountRate <= a.TerminalGrowth:
		return &model.Insufficiency{
			Field:  "discount_rate",
			Reason: fmt.Sprintf("discount rate %.4f must exceed terminal growth %.4f", a.DiscountRate, a.TerminalGrowth),
		}
	}
	return nil
}
