package model

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// MultipleRange is a low/high valuation multiple pair.
type MultipleRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// UnmarshalJSON accepts either {"low": x, "high": y} or a two-element [x, y] array.
func (r *MultipleRange) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return eris.Wrap(err, "model: decode multiple range array")
		}
		if len(pair) != 2 {
			return eris.Errorf("model: multiple range array needs [low, high], got %d values", len(pair))
		}
		r.Low, r.High = pair[0], pair[1]
		return nil
	}

	type plain MultipleRange
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return eris.Wrap(err, "model: decode multiple range")
	}
	*r = MultipleRange(p)
	return nil
}

// PrecedentDeal is one comparable M&A transaction.
type PrecedentDeal struct {
	Name      string   `json:"name"`
	Date      string   `json:"date,omitempty"`
	EVEBITDA  *float64 `json:"ev_ebitda,omitempty"`
	EVRevenue *float64 `json:"ev_revenue,omitempty"`
	DealValue *float64 `json:"deal_value,omitempty"`
}

// PrecedentData is the precedent-transactions record supplied by the filings collaborator.
type PrecedentData struct {
	Deals          []PrecedentDeal `json:"deals"`
	EVEBITDARange  *MultipleRange  `json:"ev_ebitda_range,omitempty"`
	EVRevenueRange *MultipleRange  `json:"ev_revenue_range,omitempty"`
	Source         string          `json:"source,omitempty"`
	SourceURL      string          `json:"source_url,omitempty"`
}
