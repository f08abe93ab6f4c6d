package model

// Multiple names a trading multiple tracked for comparables.
type Multiple string

const (
	MultipleEVRevenue Multiple = "ev_revenue"
	MultipleEVEBITDA  Multiple = "ev_ebitda"
	MultiplePE        Multiple = "pe"
	MultiplePEG       Multiple = "peg"
	MultiplePS        Multiple = "price_to_sales"
	MultiplePB        Multiple = "price_to_book"
)

// Multiples lists every tracked multiple in reporting order.
var Multiples = []Multiple{
	MultipleEVRevenue,
	MultipleEVEBITDA,
	MultiplePE,
	MultiplePEG,
	MultiplePS,
	MultiplePB,
}

// CompanyComps is one company's computed valuation record. It is built once
// per analysis and never mutated afterwards.
type CompanyComps struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
	Currency string `json:"currency,omitempty"`

	MarketCap       float64 `json:"market_cap"`
	EnterpriseValue float64 `json:"enterprise_value"`
	Price           float64 `json:"price"`

	Revenue   *float64 `json:"revenue,omitempty"`
	EBITDA    *float64 `json:"ebitda,omitempty"`
	NetIncome *float64 `json:"net_income,omitempty"`
	EPS       *float64 `json:"eps,omitempty"`

	EVRevenue *float64 `json:"ev_revenue,omitempty"`
	EVEBITDA  *float64 `json:"ev_ebitda,omitempty"`
	PE        *float64 `json:"pe,omitempty"`
	PEG       *float64 `json:"peg,omitempty"`
	PS        *float64 `json:"price_to_sales,omitempty"`
	PB        *float64 `json:"price_to_book,omitempty"`

	EBITDAMargin  *float64 `json:"ebitda_margin,omitempty"`
	NetMargin     *float64 `json:"net_margin,omitempty"`
	DebtToEBITDA  *float64 `json:"debt_to_ebitda,omitempty"`
	RevenueGrowth *float64 `json:"revenue_growth,omitempty"`
	RuleOf40      *float64 `json:"rule_of_40,omitempty"`

	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Multiple returns the named multiple, or nil when absent.
func (c *CompanyComps) Multiple(m Multiple) *float64 {
	if c == nil {
		return nil
	}
	switch m {
	case MultipleEVRevenue:
		return c.EVRevenue
	case MultipleEVEBITDA:
		return c.EVEBITDA
	case MultiplePE:
		return c.PE
	case MultiplePEG:
		return c.PEG
	case MultiplePS:
		return c.PS
	case MultiplePB:
		return c.PB
	}
	return nil
}
