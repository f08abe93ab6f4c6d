// Package multiples turns a financial snapshot into a company's trading
// multiples and margins.
package multiples

import (
	"strings"

	"github.com/sells-group/valuation-cli/internal/model"
)

// ErrNoData is the CompanyComps error for snapshots that cannot be priced.
const ErrNoData = "no data available"

// Compute builds the CompanyComps record for one snapshot. It never fails:
// a snapshot that cannot be priced yields Valid=false with Error set.
// Multiples already on the snapshot are used as-is; missing ones are derived
// from their inputs when the denominator is positive.
func Compute(s *model.FinancialSnapshot) model.CompanyComps {
	if s == nil {
		return Failed("", ErrNoData)
	}

	c := model.CompanyComps{
		Ticker:   strings.ToUpper(strings.TrimSpace(s.Ticker)),
		Name:     s.Name,
		Sector:   s.Sector,
		Industry: s.Industry,
		Currency: s.Currency,
	}
	if c.Name == "" {
		c.Name = c.Ticker
	}
	if c.Ticker == "" {
		c.Error = "missing ticker"
		return c
	}

	price, ok := model.Positive(s.Price)
	if !ok {
		c.Error = ErrNoData
		return c
	}
	c.Price = price

	mc, hasMC := s.MarketCapValue()
	if hasMC {
		c.MarketCap = mc
	}
	ev, hasEV := s.EnterpriseValueOf()
	if hasEV {
		c.EnterpriseValue = ev
	}

	c.Revenue = finite(s.Revenue)
	c.EBITDA = finite(s.EBITDA)
	c.NetIncome = finite(s.NetIncome)
	if eps, ok := s.EPS(); ok {
		c.EPS = model.FiniteOrNil(eps)
	}
	c.RevenueGrowth = finite(s.RevenueGrowth)

	revenue, hasRev := model.Positive(s.Revenue)
	ebitda, hasEBITDA := model.Positive(s.EBITDA)

	c.EVRevenue = firstOf(s.EVRevenue, func() *float64 {
		if hasEV && hasRev {
			return model.FiniteOrNil(ev / revenue)
		}
		return nil
	})
	c.EVEBITDA = firstOf(s.EVEBITDA, func() *float64 {
		if hasEV && hasEBITDA {
			return model.FiniteOrNil(ev / ebitda)
		}
		return nil
	})
	c.PE = firstOf(s.TrailingPE, func() *float64 {
		if eps, ok := model.Positive(c.EPS); ok {
			return model.FiniteOrNil(price / eps)
		}
		return nil
	})
	c.PEG = finite(s.PEG)
	c.PS = firstOf(s.PriceSales, func() *float64 {
		if hasMC && hasRev {
			return model.FiniteOrNil(mc / revenue)
		}
		return nil
	})
	c.PB = firstOf(s.PriceBook, func() *float64 {
		if bvps, ok := model.Positive(s.BookValuePerShare); ok {
			return model.FiniteOrNil(price / bvps)
		}
		return nil
	})

	c.EBITDAMargin = firstOf(s.EBITDAMargin, func() *float64 {
		if e, ok := model.Value(s.EBITDA); ok && hasRev {
			return model.FiniteOrNil(e / revenue)
		}
		return nil
	})
	if ni, ok := model.Value(s.NetIncome); ok && hasRev {
		c.NetMargin = model.FiniteOrNil(ni / revenue)
	}
	if debt, ok := model.Value(s.TotalDebt); ok && hasEBITDA {
		c.DebtToEBITDA = model.FiniteOrNil(debt / ebitda)
	}

	// Rule of 40: growth% + EBITDA margin%.
	growth, okG := model.Value(c.RevenueGrowth)
	margin, okM := model.Value(c.EBITDAMargin)
	if okG && okM {
		c.RuleOf40 = model.FiniteOrNil(growth*100 + margin*100)
	}

	c.Valid = true
	return c
}

// Failed returns an invalid record for a ticker whose data could not be used.
func Failed(ticker, reason string) model.CompanyComps {
	return model.CompanyComps{
		Ticker: strings.ToUpper(strings.TrimSpace(ticker)),
		Valid:  false,
		Error:  reason,
	}
}

func finite(p *float64) *float64 {
	if v, ok := model.Value(p); ok {
		return model.Float(v)
	}
	return nil
}

func firstOf(reported *float64, derive func() *float64) *float64 {
	if v := finite(reported); v != nil {
		return v
	}
	return derive()
}
