package dcf

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
	"github.com/sells-group/valuation-cli/internal/stats"
)

// Distribution summarises simulated implied prices.
type Distribution struct {
	Samples          int                  `json:"samples"`
	Kept             int                  `json:"kept"`
	P10              float64              `json:"p10"`
	P25              float64              `json:"p25"`
	P50              float64              `json:"p50"`
	P75              float64              `json:"p75"`
	P90              float64              `json:"p90"`
	Mean             float64              `json:"mean"`
	ProbAboveCurrent *float64             `json:"prob_above_current,omitempty"`
	Warnings         model.Warnings       `json:"warnings,omitempty"`
	Insufficient     *model.Insufficiency `json:"insufficient,omitempty"`
}

// Simulate draws growth and discount rate from independent normals centred
// on a and values each draw. Draws that are not positive, not finite, or
// above MaxPriceMultiple × the current price are discarded. The seed makes
// runs reproducible.
func Simulate(in Input, a Assumptions, cfg config.MonteCarloConfig) *Distribution {
	d := &Distribution{Samples: cfg.Samples}
	if in.Shares <= 0 {
		d.Insufficient = &model.Insufficiency{Field: "monte_carlo", Reason: "shares outstanding missing"}
		return d
	}
	if ins := check(in.BaseFCF, a); ins != nil {
		d.Insufficient = ins
		return d
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	ceiling := math.Inf(1)
	if in.CurrentPrice > 0 && cfg.MaxPriceMultiple > 0 {
		ceiling = in.CurrentPrice * cfg.MaxPriceMultiple
	}

	prices := make([]float64, 0, cfg.Samples)
	above := 0
	for i := 0; i < cfg.Samples; i++ {
		x := a
		x.Growth = a.Growth + cfg.GrowthStdDev*rng.NormFloat64()
		x.DiscountRate = a.DiscountRate + cfg.DiscountStdDev*rng.NormFloat64()

		p, ok := impliedPrice(in, x)
		if !ok || p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) || p > ceiling {
			continue
		}
		prices = append(prices, p)
		if in.CurrentPrice > 0 && p > in.CurrentPrice {
			above++
		}
	}

	d.Kept = len(prices)
	if discarded := cfg.Samples - d.Kept; discarded > 0 {
		d.Warnings.Add(model.WarnSamplesDiscarded, fmt.Sprintf("%d of %d draws discarded as implausible", discarded, cfg.Samples))
	}
	if d.Kept == 0 {
		d.Insufficient = &model.Insufficiency{Field: "monte_carlo", Reason: "no plausible draws"}
		return d
	}

	pct := stats.Percentiles(prices, 10, 25, 50, 75, 90)
	d.P10, d.P25, d.P50, d.P75, d.P90 = pct[10], pct[25], pct[50], pct[75], pct[90]
	d.Mean, _ = stats.Mean(prices)
	if in.CurrentPrice > 0 {
		d.ProbAboveCurrent = model.Float(float64(above) / float64(d.Kept))
	}
	return d
}
