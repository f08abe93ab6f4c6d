// Package precedent resolves valuation ranges from precedent transactions.
package precedent

import (
	"slices"

	"github.com/sells-group/valuation-cli/internal/model"
	"github.com/sells-group/valuation-cli/internal/stats"
)

// Plausibility bounds for a single deal's multiples. Values outside are
// treated as data errors and ignored.
const (
	MaxEVEBITDA  = 100.0
	MaxEVRevenue = 50.0
)

// Summary is the resolved precedent view.
type Summary struct {
	EVEBITDA        *model.MultipleRange `json:"ev_ebitda_range,omitempty"`
	EVEBITDAMedian  *float64             `json:"ev_ebitda_median,omitempty"`
	EVRevenue       *model.MultipleRange `json:"ev_revenue_range,omitempty"`
	EVRevenueMedian *float64             `json:"ev_revenue_median,omitempty"`
	DealCount       int                  `json:"deal_count"`
	UsableDeals     int                  `json:"usable_deals"`
	Source          string               `json:"source,omitempty"`
	SourceURL       string               `json:"source_url,omitempty"`
}

// Summarize resolves the EV/EBITDA and EV/Revenue ranges. An explicit range
// on the record wins; otherwise the range spans the plausible deal
// multiples. A nil record yields nil.
func Summarize(p *model.PrecedentData) *Summary {
	if p == nil {
		return nil
	}
	s := &Summary{
		DealCount: len(p.Deals),
		Source:    p.Source,
		SourceURL: p.SourceURL,
	}

	var ebitda, revenue []float64
	for _, d := range p.Deals {
		usable := false
		if v, ok := model.Value(d.EVEBITDA); ok && v > 0 && v < MaxEVEBITDA {
			ebitda = append(ebitda, v)
			usable = true
		}
		if v, ok := model.Value(d.EVRevenue); ok && v > 0 && v < MaxEVRevenue {
			revenue = append(revenue, v)
			usable = true
		}
		if usable {
			s.UsableDeals++
		}
	}

	s.EVEBITDA = resolve(p.EVEBITDARange, ebitda)
	s.EVRevenue = resolve(p.EVRevenueRange, revenue)
	if m, ok := stats.Median(ebitda); ok {
		s.EVEBITDAMedian = model.Float(m)
	}
	if m, ok := stats.Median(revenue); ok {
		s.EVRevenueMedian = model.Float(m)
	}
	return s
}

func resolve(explicit *model.MultipleRange, vals []float64) *model.MultipleRange {
	if valid(explicit) {
		r := *explicit
		return &r
	}
	if len(vals) == 0 {
		return nil
	}
	return &model.MultipleRange{Low: slices.Min(vals), High: slices.Max(vals)}
}

func valid(r *model.MultipleRange) bool {
	if r == nil {
		return false
	}
	_, okL := model.Positive(&r.Low)
	_, okH := model.Positive(&r.High)
	return okL && okH && r.Low <= r.High
}
