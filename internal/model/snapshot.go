package model

import "math"

// FinancialSnapshot is one company's pre-fetched market and financial data.
// Every numeric field is optional: nil means the provider did not supply it,
// which is distinct from a reported zero.
type FinancialSnapshot struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
	Currency string `json:"currency,omitempty"`

	// Market data.
	Price             *float64 `json:"price,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	EnterpriseValue   *float64 `json:"enterprise_value,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
	FiftyTwoWeekLow   *float64 `json:"fifty_two_week_low,omitempty"`
	FiftyTwoWeekHigh  *float64 `json:"fifty_two_week_high,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	AnalystTargetLow  *float64 `json:"analyst_target_low,omitempty"`
	AnalystTargetHigh *float64 `json:"analyst_target_high,omitempty"`
	BookValuePerShare *float64 `json:"book_value_per_share,omitempty"`

	// Income statement (latest fiscal year).
	Revenue         *float64 `json:"revenue,omitempty"`
	EBITDA          *float64 `json:"ebitda,omitempty"`
	NetIncome       *float64 `json:"net_income,omitempty"`
	SGA             *float64 `json:"sga,omitempty"`
	InterestExpense *float64 `json:"interest_expense,omitempty"`
	TaxProvision    *float64 `json:"tax_provision,omitempty"`
	PretaxIncome    *float64 `json:"pretax_income,omitempty"`
	RevenueGrowth   *float64 `json:"revenue_growth,omitempty"` // fraction, 0.12 = 12%

	// Balance sheet.
	TotalDebt   *float64 `json:"total_debt,omitempty"`
	Cash        *float64 `json:"cash,omitempty"`
	TotalEquity *float64 `json:"total_equity,omitempty"`

	// Cash flow, most recent year first.
	FreeCashFlow []float64 `json:"free_cash_flow,omitempty"`

	// Multiples already published by the data provider.
	TrailingPE   *float64 `json:"trailing_pe,omitempty"`
	PEG          *float64 `json:"peg,omitempty"`
	PriceSales   *float64 `json:"price_to_sales,omitempty"`
	PriceBook    *float64 `json:"price_to_book,omitempty"`
	EVEBITDA     *float64 `json:"ev_ebitda,omitempty"`
	EVRevenue    *float64 `json:"ev_revenue,omitempty"`
	EBITDAMargin *float64 `json:"ebitda_margin,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Value reports the value behind p and whether it is present and finite.
func Value(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

// Positive reports the value behind p and whether it is present, finite and > 0.
func Positive(p *float64) (float64, bool) {
	v, ok := Value(p)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// Or returns the value behind p, or def when p is missing.
func Or(p *float64, def float64) float64 {
	if v, ok := Value(p); ok {
		return v
	}
	return def
}

// PositiveOrNil returns a pointer to v when v is finite and positive.
func PositiveOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil
	}
	return &v
}

// FiniteOrNil returns a pointer to v when v is finite.
func FiniteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarketCapValue returns the reported market cap, falling back to price × shares.
func (s *FinancialSnapshot) MarketCapValue() (float64, bool) {
	if s == nil {
		return 0, false
	}
	if mc, ok := Positive(s.MarketCap); ok {
		return mc, true
	}
	price, okP := Positive(s.Price)
	shares, okS := Positive(s.SharesOutstanding)
	if okP && okS {
		return price * shares, true
	}
	return 0, false
}

// EnterpriseValueOf returns the reported EV, falling back to market cap + debt - cash.
func (s *FinancialSnapshot) EnterpriseValueOf() (float64, bool) {
	if s == nil {
		return 0, false
	}
	if ev, ok := Value(s.EnterpriseValue); ok && ev != 0 {
		return ev, true
	}
	mc, ok := s.MarketCapValue()
	if !ok {
		return 0, false
	}
	return mc + s.NetDebt(), true
}

// NetDebt is total debt minus cash; missing components count as zero.
func (s *FinancialSnapshot) NetDebt() float64 {
	if s == nil {
		return 0
	}
	return Or(s.TotalDebt, 0) - Or(s.Cash, 0)
}

// LatestFCF returns the most recent free cash flow observation.
func (s *FinancialSnapshot) LatestFCF() (float64, bool) {
	if s == nil || len(s.FreeCashFlow) == 0 {
		return 0, false
	}
	return Value(&s.FreeCashFlow[0])
}

// EPS returns net income per share when both are available.
func (s *FinancialSnapshot) EPS() (float64, bool) {
	if s == nil {
		return 0, false
	}
	ni, okN := Value(s.NetIncome)
	shares, okS := Positive(s.SharesOutstanding)
	if !okN || !okS {
		return 0, false
	}
	return ni / shares, true
}
