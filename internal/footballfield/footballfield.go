// Package footballfield aggregates per-method equity value ranges for a
// target into one table.
package footballfield

import (
	"math"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
	"github.com/sells-group/valuation-cli/internal/precedent"
)

// Method names a valuation methodology. Bars are always emitted in the
// order of Methods.
type Method string

const (
	Method52Week            Method = "52-Week Range"
	MethodAnalystTargets    Method = "Analyst Targets"
	MethodEVEBITDAComps     Method = "EV/EBITDA Comps"
	MethodPEComps           Method = "P/E Comps"
	MethodDCF               Method = "DCF (Perpetuity)"
	MethodPrecedentEVEBITDA Method = "Precedent Txns (EV/EBITDA)"
	MethodPrecedentEVRev    Method = "Precedent Txns (EV/Revenue)"
)

// Methods lists every method in display order.
var Methods = []Method{
	Method52Week,
	MethodAnalystTargets,
	MethodEVEBITDAComps,
	MethodPEComps,
	MethodDCF,
	MethodPrecedentEVEBITDA,
	MethodPrecedentEVRev,
}

// Bar is one method's total equity value range.
type Bar struct {
	Method Method  `json:"method"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
}

// Field is the valuation range table.
type Field struct {
	Target     string                `json:"target"`
	Bars       []Bar                 `json:"bars"`
	OfferValue *float64              `json:"offer_value,omitempty"`
	Omitted    []model.Insufficiency `json:"omitted,omitempty"`
}

// Inputs collects what the builder reads. Peer medians normally come from a
// comparables run; everything is optional.
type Inputs struct {
	Target             *model.FinancialSnapshot
	PeerMedianEVEBITDA *float64
	PeerMedianPE       *float64
	Precedent          *precedent.Summary
	OfferValue         *float64 // purchase price, drawn as a reference line
}

// Build computes every method whose inputs are available. Missing inputs
// omit the method; they are never an error.
func Build(in Inputs, cfg config.FootballConfig) *Field {
	f := &Field{OfferValue: in.OfferValue}
	t := in.Target
	if t == nil {
		f.Omitted = append(f.Omitted, model.Insufficiency{Field: "target", Reason: "no target snapshot"})
		return f
	}
	f.Target = t.Ticker

	shares, hasShares := model.Positive(t.SharesOutstanding)
	ebitda, hasEBITDA := model.Positive(t.EBITDA)
	revenue, hasRevenue := model.Positive(t.Revenue)
	netIncome, hasNI := model.Positive(t.NetIncome)
	netDebt := t.NetDebt()

	for _, m := range Methods {
		var (
			low, high float64
			reason    string
		)
		switch m {
		case Method52Week:
			lo, okL := model.Positive(t.FiftyTwoWeekLow)
			hi, okH := model.Positive(t.FiftyTwoWeekHigh)
			switch {
			case !hasShares:
				reason = "shares outstanding missing"
			case !okL || !okH:
				reason = "52-week range missing"
			default:
				low, high = lo*shares, hi*shares
			}

		case MethodAnalystTargets:
			lo, okL := model.Positive(t.AnalystTargetLow)
			hi, okH := model.Positive(t.AnalystTargetHigh)
			switch {
			case !hasShares:
				reason = "shares outstanding missing"
			case !okL || !okH:
				reason = "analyst targets missing"
			default:
				low, high = lo*shares, hi*shares
			}

		case MethodEVEBITDAComps:
			med, ok := model.Positive(in.PeerMedianEVEBITDA)
			switch {
			case !ok:
				reason = "no peer EV/EBITDA median"
			case !hasEBITDA:
				reason = "target EBITDA missing or not positive"
			default:
				low = ebitda*med*cfg.CompsLowFactor - netDebt
				high = ebitda*med*cfg.CompsHighFactor - netDebt
			}

		case MethodPEComps:
			med, ok := model.Positive(in.PeerMedianPE)
			switch {
			case !ok:
				reason = "no peer P/E median"
			case !hasNI:
				reason = "target net income missing or not positive"
			default:
				low = netIncome * med * cfg.CompsLowFactor
				high = netIncome * med * cfg.CompsHighFactor
			}

		case MethodDCF:
			fcf, ok := t.LatestFCF()
			if !ok || fcf <= 0 {
				reason = "free cash flow missing or not positive"
				break
			}
			a, okA := gordon(fcf, cfg.DCFLowWACC, cfg.DCFLowGrowth)
			b, okB := gordon(fcf, cfg.DCFHighWACC, cfg.DCFHighGrowth)
			a -= netDebt
			b -= netDebt
			if !okA || !okB || a <= 0 || b <= 0 {
				reason = "perpetuity scenarios do not yield positive equity value"
				break
			}
			low, high = a, b

		case MethodPrecedentEVEBITDA:
			switch {
			case in.Precedent == nil || in.Precedent.EVEBITDA == nil:
				reason = "no precedent EV/EBITDA range"
			case !hasEBITDA:
				reason = "target EBITDA missing or not positive"
			default:
				low = ebitda*in.Precedent.EVEBITDA.Low - netDebt
				high = ebitda*in.Precedent.EVEBITDA.High - netDebt
			}

		case MethodPrecedentEVRev:
			switch {
			case in.Precedent == nil || in.Precedent.EVRevenue == nil:
				reason = "no precedent EV/Revenue range"
			case !hasRevenue:
				reason = "target revenue missing or not positive"
			default:
				low = revenue*in.Precedent.EVRevenue.Low - netDebt
				high = revenue*in.Precedent.EVRevenue.High - netDebt
			}
		}

		if reason != "" {
			f.Omitted = append(f.Omitted, model.Insufficiency{Field: string(m), Reason: reason})
			continue
		}
		f.Bars = append(f.Bars, Bar{Method: m, Low: math.Min(low, high), High: math.Max(low, high)})
	}
	return f
}

// Bar returns the bar for m, if present.
func (f *Field) Bar(m Method) (Bar, bool) {
	for _, b := range f.Bars {
		if b.Method == m {
			return b, true
		}
	}
	return Bar{}, false
}

// gordon values a perpetuity growing at g discounted at r.
func gordon(fcf, r, g float64) (float64, bool) {
	if r <= g {
		return 0, false
	}
	return fcf * (1 + g) / (r - g), true
}
