package dcf

import (
	"fmt"
	"math"

	"github.com/sells-group/valuation-cli/internal/model"
)

// ReverseConfig bounds the implied-growth search.
type ReverseConfig struct {
	Low       float64
	High      float64
	Tolerance float64 // relative to the target EV
	MaxIter   int
}

// ReverseResult is the growth rate the market price implies.
type ReverseResult struct {
	TargetEV      float64              `json:"target_ev"`
	ImpliedGrowth *float64             `json:"implied_growth,omitempty"`
	Iterations    int                  `json:"iterations"`
	Insufficient  *model.Insufficiency `json:"insufficient,omitempty"`
}

// ReverseFromPrice solves for the growth rate at which the forward DCF
// reproduces the current market enterprise value (price × shares + net debt).
func ReverseFromPrice(in Input, a Assumptions, cfg ReverseConfig) *ReverseResult {
	if in.CurrentPrice <= 0 || in.Shares <= 0 {
		return &ReverseResult{Insufficient: &model.Insufficiency{
			Field:  "implied_growth",
			Reason: "current price and shares outstanding are required",
		}}
	}
	return Reverse(in.BaseFCF, in.CurrentPrice*in.Shares+in.NetDebt, a, cfg)
}

// Reverse bisects growth over [cfg.Low, cfg.High] until the forward EV is
// within the relative tolerance of targetEV. EV is increasing in growth for
// positive FCF, so a target outside the bracket is reported as insufficient.
func Reverse(baseFCF, targetEV float64, a Assumptions, cfg ReverseConfig) *ReverseResult {
	res := &ReverseResult{TargetEV: targetEV}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 200
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 1e-6
	}

	if targetEV <= 0 || math.IsNaN(targetEV) {
		res.Insufficient = &model.Insufficiency{Field: "implied_growth", Reason: "target enterprise value not positive"}
		return res
	}
	if ins := check(baseFCF, a); ins != nil {
		res.Insufficient = ins
		return res
	}

	ev := func(g float64) float64 {
		x := a
		x.Growth = g
		v, _ := EnterpriseValue(baseFCF, x)
		return v
	}

	lo, hi := cfg.Low, cfg.High
	evLo, evHi := ev(lo), ev(hi)
	if targetEV < evLo || targetEV > evHi {
		res.Insufficient = &model.Insufficiency{
			Field: "implied_growth",
			Reason: fmt.Sprintf("target EV %.2f outside the range %.2f-%.2f reachable with growth in [%.2f, %.2f]",
				targetEV, evLo, evHi, lo, hi),
		}
		return res
	}

	for res.Iterations = 1; res.Iterations <= cfg.MaxIter; res.Iterations++ {
		mid := (lo + hi) / 2
		diff := ev(mid) - targetEV
		if math.Abs(diff)/targetEV <= cfg.Tolerance {
			res.ImpliedGrowth = model.Float(mid)
			return res
		}
		if diff < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	res.Iterations = cfg.MaxIter
	res.ImpliedGrowth = model.Float((lo + hi) / 2)
	return res
}
