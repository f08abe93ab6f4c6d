// Package deal turns offer assumptions into transaction terms.
package deal

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
)

// Assumptions are the per-run deal inputs. All fields are percentages
// (30 = 30%).
type Assumptions struct {
	OfferPremiumPct   float64 `json:"offer_premium_pct"`
	CashPct           float64 `json:"cash_pct"`
	StockPct          float64 `json:"stock_pct"`
	CostSynergyPct    float64 `json:"cost_synergy_pct"`
	RevenueSynergyPct float64 `json:"revenue_synergy_pct"`
	TaxRatePct        float64 `json:"tax_rate_pct"`
	CostOfDebtPct     float64 `json:"cost_of_debt_pct"`
	TransactionFeePct float64 `json:"transaction_fee_pct"`
}

// FromConfig returns the configured default assumptions.
func FromConfig(c config.DealConfig) Assumptions {
	return Assumptions{
		OfferPremiumPct:   c.OfferPremiumPct,
		CashPct:           c.CashPct,
		StockPct:          c.StockPct,
		CostSynergyPct:    c.CostSynergyPct,
		RevenueSynergyPct: c.RevenueSynergyPct,
		TaxRatePct:        c.TaxRatePct,
		CostOfDebtPct:     c.CostOfDebtPct,
		TransactionFeePct: c.TransactionFeePct,
	}
}

// TaxRate returns the tax rate as a fraction.
func (a Assumptions) TaxRate() float64 { return a.TaxRatePct / 100 }

// Validate reports every inconsistent assumption. The error wraps
// model.ErrInvalidAssumptions.
func (a Assumptions) Validate() error {
	var errs []string

	if math.Abs(a.CashPct+a.StockPct-100) > config.MixTolerance {
		errs = append(errs, fmt.Sprintf("cash %% + stock %% must equal 100, got %g", a.CashPct+a.StockPct))
	}
	pcts := []struct {
		name string
		v    float64
	}{
		{"cash_pct", a.CashPct},
		{"stock_pct", a.StockPct},
		{"tax_rate_pct", a.TaxRatePct},
	}
	for _, p := range pcts {
		if !finite(p.v) || p.v < 0 || p.v > 100 {
			errs = append(errs, fmt.Sprintf("%s must be within [0, 100], got %g", p.name, p.v))
		}
	}
	nonNeg := []struct {
		name string
		v    float64
	}{
		{"cost_synergy_pct", a.CostSynergyPct},
		{"revenue_synergy_pct", a.RevenueSynergyPct},
		{"cost_of_debt_pct", a.CostOfDebtPct},
		{"transaction_fee_pct", a.TransactionFeePct},
	}
	for _, p := range nonNeg {
		if !finite(p.v) || p.v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0, got %g", p.name, p.v))
		}
	}
	if !finite(a.OfferPremiumPct) || a.OfferPremiumPct <= -100 {
		errs = append(errs, fmt.Sprintf("offer_premium_pct must be finite and > -100, got %g", a.OfferPremiumPct))
	}

	if len(errs) > 0 {
		return eris.Wrap(model.ErrInvalidAssumptions, "deal: "+strings.Join(errs, "; "))
	}
	return nil
}

// Terms are the computed transaction terms.
type Terms struct {
	TargetPrice        float64 `json:"target_price"`
	TargetShares       float64 `json:"target_shares"`
	AcquirerPrice      float64 `json:"acquirer_price"`
	OfferPrice         float64 `json:"offer_price"`
	PurchasePrice      float64 `json:"purchase_price"`
	CashConsideration  float64 `json:"cash_consideration"`
	StockConsideration float64 `json:"stock_consideration"`
	NewSharesIssued    float64 `json:"new_shares_issued"`
	TransactionFees    float64 `json:"transaction_fees"`
	NewDebt            float64 `json:"new_debt"`

	TargetNetDebt    float64  `json:"target_net_debt"`
	ImpliedEV        float64  `json:"implied_ev"`
	ImpliedEVEBITDA  *float64 `json:"implied_ev_ebitda,omitempty"`
	ImpliedEVRevenue *float64 `json:"implied_ev_revenue,omitempty"`
	ImpliedPE        *float64 `json:"implied_pe,omitempty"`
}

// Structure prices the offer for target paid partly in acquirer stock.
// A target without price or shares, or an acquirer without a price, is
// unpriceable and returns an error wrapping model.ErrUnpriced.
func Structure(target, acquirer *model.FinancialSnapshot, a Assumptions) (*Terms, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if target == nil || acquirer == nil {
		return nil, eris.Wrap(model.ErrUnpriced, "deal: target and acquirer snapshots are required")
	}

	tgtPrice, ok := model.Positive(target.Price)
	if !ok {
		return nil, eris.Wrapf(model.ErrUnpriced, "deal: target %s has no price", target.Ticker)
	}
	tgtShares, ok := model.Positive(target.SharesOutstanding)
	if !ok {
		return nil, eris.Wrapf(model.ErrUnpriced, "deal: target %s has no shares outstanding", target.Ticker)
	}
	acqPrice, ok := model.Positive(acquirer.Price)
	if !ok {
		return nil, eris.Wrapf(model.ErrUnpriced, "deal: acquirer %s has no price", acquirer.Ticker)
	}

	t := &Terms{
		TargetPrice:   tgtPrice,
		TargetShares:  tgtShares,
		AcquirerPrice: acqPrice,
	}
	t.OfferPrice = tgtPrice * (1 + a.OfferPremiumPct/100)
	t.PurchasePrice = t.OfferPrice * tgtShares
	t.CashConsideration = t.PurchasePrice * a.CashPct / 100
	t.StockConsideration = t.PurchasePrice * a.StockPct / 100
	t.NewSharesIssued = t.StockConsideration / acqPrice
	t.TransactionFees = t.PurchasePrice * a.TransactionFeePct / 100
	t.NewDebt = t.CashConsideration + t.TransactionFees

	t.TargetNetDebt = target.NetDebt()
	t.ImpliedEV = t.PurchasePrice + t.TargetNetDebt
	t.ImpliedEVEBITDA = ratio(t.ImpliedEV, target.EBITDA)
	t.ImpliedEVRevenue = ratio(t.ImpliedEV, target.Revenue)
	t.ImpliedPE = ratio(t.PurchasePrice, target.NetIncome)

	// Finite inputs can still overflow once multiplied out.
	for _, v := range []float64{
		t.OfferPrice, t.PurchasePrice, t.CashConsideration, t.StockConsideration,
		t.NewSharesIssued, t.TransactionFees, t.NewDebt, t.ImpliedEV, t.IncrementalInterest(a),
	} {
		if !finite(v) {
			return nil, eris.Wrapf(model.ErrInvalidAssumptions,
				"deal: terms for %s overflow (offer price %g, purchase price %g)", target.Ticker, t.OfferPrice, t.PurchasePrice)
		}
	}

	return t, nil
}

// IncrementalInterest is the annual pre-tax interest on the new debt.
func (t *Terms) IncrementalInterest(a Assumptions) float64 {
	return t.NewDebt * a.CostOfDebtPct / 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ratio(num float64, den *float64) *float64 {
	d, ok := model.Positive(den)
	if !ok {
		return nil
	}
	return model.FiniteOrNil(num / d)
}
