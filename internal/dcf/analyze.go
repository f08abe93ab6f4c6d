package dcf

import (
	"go.uber.org/zap"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
)

// Options select the optional parts of a full analysis.
type Options struct {
	UseWACC        bool // discount at the company's WACC instead of the assumption
	SkipMonteCarlo bool
}

// Report is a full DCF analysis of one company.
type Report struct {
	Valuation   *Result        `json:"valuation"`
	WACC        *WACC          `json:"wacc"`
	Sensitivity *Sensitivity   `json:"sensitivity,omitempty"`
	Reverse     *ReverseResult `json:"reverse,omitempty"`
	MonteCarlo  *Distribution  `json:"monte_carlo,omitempty"`
}

// Analyze runs every DCF view for s. It never fails; each part reports its
// own insufficiency.
func Analyze(s *model.FinancialSnapshot, a Assumptions, cfg config.DCFConfig, waccCfg config.WACCConfig, opts Options) *Report {
	in := InputFromSnapshot(s)
	if cfg.MaxYears > 0 {
		a.MaxYears = cfg.MaxYears
	}
	rep := &Report{WACC: ComputeWACC(s, waccCfg)}

	if opts.UseWACC && rep.WACC.Insufficient == nil {
		a.DiscountRate = rep.WACC.Rate
	}

	rep.Valuation = Value(in, a)
	if !rep.Valuation.Valid() {
		zap.L().Debug("dcf: valuation insufficient",
			zap.String("ticker", in.Ticker),
			zap.String("reason", rep.Valuation.Insufficient.Reason),
		)
		return rep
	}

	sens := Sensitize(in, a, cfg.SensitivityStep, cfg.SensitivitySteps)
	rep.Sensitivity = &sens
	rep.Reverse = ReverseFromPrice(in, a, ReverseConfig{
		Low:       cfg.ReverseLow,
		High:      cfg.ReverseHigh,
		Tolerance: cfg.ReverseTolerance,
		MaxIter:   cfg.ReverseMaxIter,
	})
	if !opts.SkipMonteCarlo {
		rep.MonteCarlo = Simulate(in, a, cfg.MonteCarlo)
	}
	return rep
}
