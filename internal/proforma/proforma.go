// Package proforma combines an acquirer and a target into the pro forma
// company and measures EPS accretion or dilution.
package proforma

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/credit"
	"github.com/sells-group/valuation-cli/internal/deal"
	"github.com/sells-group/valuation-cli/internal/model"
	"github.com/sells-group/valuation-cli/internal/synergy"
)

// Book value bases for goodwill.
const (
	BookValuePerShare = "book_value_per_share"
	BookTotalEquity   = "total_equity"
	BookUnavailable   = "unavailable"
)

// Config groups the settings the combiner reads.
type Config struct {
	Synergy config.SynergyConfig
	Credit  config.CreditConfig
}

// Financials is one side's (or the combined) income statement.
type Financials struct {
	Revenue   float64  `json:"revenue"`
	EBITDA    float64  `json:"ebitda"`
	NetIncome float64  `json:"net_income"`
	Shares    float64  `json:"shares"`
	EPS       *float64 `json:"eps,omitempty"`
}

// Result is the merger pro forma.
type Result struct {
	Acquirer    string           `json:"acquirer"`
	Target      string           `json:"target"`
	Assumptions deal.Assumptions `json:"assumptions"`
	Terms       *deal.Terms      `json:"terms"`
	Synergies   *synergy.Result  `json:"synergies"`

	AcquirerStandalone Financials `json:"acquirer_standalone"`
	TargetStandalone   Financials `json:"target_standalone"`
	ProForma           Financials `json:"pro_forma"`

	IncrementalInterest  float64  `json:"incremental_interest"`
	AccretionDilutionPct *float64 `json:"accretion_dilution_pct,omitempty"`
	IsAccretive          bool     `json:"is_accretive"`

	TargetBookValue float64 `json:"target_book_value"`
	BookValueBasis  string  `json:"book_value_basis"`
	Goodwill        float64 `json:"goodwill"`

	Credit      *credit.Metrics `json:"credit"`
	SourcesUses *Ledger         `json:"sources_uses"`
	Bridge      []BridgeStep    `json:"eps_bridge"`

	Warnings     model.Warnings        `json:"warnings,omitempty"`
	Insufficient []model.Insufficiency `json:"insufficient,omitempty"`
}

// Combine builds the pro forma for acquirer buying target under a. It fails
// only when either party cannot be priced or the assumptions are invalid.
func Combine(acquirer, target *model.FinancialSnapshot, a deal.Assumptions, cfg Config) (*Result, error) {
	terms, err := deal.Structure(target, acquirer, a)
	if err != nil {
		return nil, err
	}
	acqShares, ok := model.Positive(acquirer.SharesOutstanding)
	if !ok {
		return nil, eris.Wrapf(model.ErrUnpriced, "proforma: acquirer %s has no shares outstanding", acquirer.Ticker)
	}

	res := &Result{
		Acquirer:    acquirer.Ticker,
		Target:      target.Ticker,
		Assumptions: a,
		Terms:       terms,
	}
	if ac, tc := strings.TrimSpace(acquirer.Currency), strings.TrimSpace(target.Currency); ac != "" && tc != "" && !strings.EqualFold(ac, tc) {
		res.Warnings.Add(model.WarnCurrencyMismatch, fmt.Sprintf(
			"acquirer reports in %s but target in %s; figures are combined without conversion", ac, tc))
	}

	res.AcquirerStandalone = standalone(acquirer, acqShares)
	res.TargetStandalone = standalone(target, terms.TargetShares)

	res.Synergies = synergy.Estimate(target, a, cfg.Synergy)
	res.Warnings = append(res.Warnings, res.Synergies.Warnings...)

	tax := a.TaxRate()
	res.IncrementalInterest = terms.IncrementalInterest(a)

	acq, tgt := res.AcquirerStandalone, res.TargetStandalone
	pf := Financials{
		Revenue: acq.Revenue + tgt.Revenue + res.Synergies.RevenueSynergies,
		EBITDA:  acq.EBITDA + tgt.EBITDA + res.Synergies.Total,
		NetIncome: acq.NetIncome + tgt.NetIncome +
			res.Synergies.AfterTax(tax) - res.IncrementalInterest*(1-tax),
		Shares: acqShares + terms.NewSharesIssued,
	}
	pfEPS := pf.NetIncome / pf.Shares
	pf.EPS = model.Float(pfEPS)
	res.ProForma = pf

	acqEPS := acq.NetIncome / acqShares
	if acqEPS != 0 {
		pct := (pfEPS - acqEPS) / math.Abs(acqEPS) * 100
		res.AccretionDilutionPct = model.Float(pct)
		res.IsAccretive = pct > 0
	} else {
		res.Insufficient = append(res.Insufficient, model.Insufficiency{
			Field:  "accretion_dilution_pct",
			Reason: "acquirer standalone EPS is zero",
		})
	}

	res.TargetBookValue, res.BookValueBasis = bookValue(target, terms.TargetShares)
	if res.BookValueBasis == BookUnavailable {
		res.Warnings.Add(model.WarnBookValue, fmt.Sprintf(
			"no book value for %s; goodwill equals the full purchase price", target.Ticker))
	}
	res.Goodwill = max(terms.PurchasePrice-res.TargetBookValue, 0)

	res.Credit = credit.Analyze(credit.Input{
		AcquirerDebt:        model.Or(acquirer.TotalDebt, 0),
		TargetDebt:          model.Or(target.TotalDebt, 0),
		NewDebt:             terms.NewDebt,
		AcquirerCash:        model.Or(acquirer.Cash, 0),
		TargetCash:          model.Or(target.Cash, 0),
		AcquirerInterest:    model.Or(acquirer.InterestExpense, 0),
		TargetInterest:      model.Or(target.InterestExpense, 0),
		IncrementalInterest: res.IncrementalInterest,
		ProFormaEBITDA:      pf.EBITDA,
	}, cfg.Credit)
	if lev, ok := model.Value(res.Credit.Leverage); ok && cfg.Credit.LeverageWarning > 0 && lev > cfg.Credit.LeverageWarning {
		res.Warnings.Add(model.WarnHighLeverage, fmt.Sprintf("pro forma leverage is %.1fx", lev))
	}

	res.SourcesUses = buildLedger(terms)
	res.Bridge = buildBridge(res, acqEPS, tax)

	zap.L().Debug("proforma: combined",
		zap.String("acquirer", res.Acquirer),
		zap.String("target", res.Target),
		zap.Float64("pf_eps", pfEPS),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

func standalone(s *model.FinancialSnapshot, shares float64) Financials {
	f := Financials{
		Revenue:   model.Or(s.Revenue, 0),
		EBITDA:    model.Or(s.EBITDA, 0),
		NetIncome: model.Or(s.NetIncome, 0),
		Shares:    shares,
	}
	if shares > 0 {
		f.EPS = model.FiniteOrNil(f.NetIncome / shares)
	}
	return f
}

// bookValue prefers book value per share × shares, then total equity.
func bookValue(s *model.FinancialSnapshot, shares float64) (float64, string) {
	if bvps, ok := model.Value(s.BookValuePerShare); ok && bvps != 0 && shares > 0 {
		return bvps * shares, BookValuePerShare
	}
	if eq, ok := model.Value(s.TotalEquity); ok {
		return eq, BookTotalEquity
	}
	return 0, BookUnavailable
}
