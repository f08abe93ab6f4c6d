// Package comps runs comparable-company analysis: it prices a target against
// a market-cap-banded set of sector peers.
package comps

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
	"github.com/sells-group/valuation-cli/internal/multiples"
	"github.com/sells-group/valuation-cli/internal/peers"
	"github.com/sells-group/valuation-cli/internal/stats"
	"github.com/sells-group/valuation-cli/internal/workpool"
)

// SnapshotSource supplies already-fetched financial snapshots by ticker.
type SnapshotSource interface {
	Snapshot(ctx context.Context, ticker string) (*model.FinancialSnapshot, error)
}

// Options are the per-run inputs to an analysis.
type Options struct {
	MaxPeers     int
	MinMarketCap *float64 // nil = band low factor × target market cap
	MaxMarketCap *float64 // nil = band high factor × target market cap
	Verticals    []string
}

// Band is the market-cap window applied to peers.
type Band struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Summary holds peer statistics for one multiple.
type Summary struct {
	Median *float64 `json:"median,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	Count  int      `json:"count"`
}

// Result is a complete comparables analysis.
type Result struct {
	Target          model.CompanyComps   `json:"target"`
	Peers           []model.CompanyComps `json:"peers"`
	UniverseVersion string               `json:"universe_version,omitempty"`
	Candidates      int                  `json:"candidates"`
	Fetched         int                  `json:"fetched"`
	Band            *Band                `json:"band,omitempty"`

	Stats       map[model.Multiple]Summary `json:"stats"`
	Percentiles map[model.Multiple]float64 `json:"percentiles"`

	ImpliedEVFromRevenue *float64 `json:"implied_ev_from_revenue,omitempty"`
	ImpliedEVFromEBITDA  *float64 `json:"implied_ev_from_ebitda,omitempty"`
	ImpliedPriceFromPE   *float64 `json:"implied_price_from_pe,omitempty"`

	Insufficient []model.Insufficiency `json:"insufficient,omitempty"`
}

// Median returns the peer median for m, or nil.
func (r *Result) Median(m model.Multiple) *float64 {
	if r == nil {
		return nil
	}
	return r.Stats[m].Median
}

// Engine runs comparables analyses.
type Engine struct {
	source   SnapshotSource
	resolver *peers.Resolver
	cfg      config.CompsConfig
}

// New creates an Engine.
func New(source SnapshotSource, resolver *peers.Resolver, cfg config.CompsConfig) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.MaxPeers <= 0 {
		cfg.MaxPeers = 10
	}
	if cfg.BandLowFactor <= 0 && cfg.BandHighFactor <= 0 {
		cfg.BandLowFactor, cfg.BandHighFactor = 0.2, 5.0
	}
	return &Engine{source: source, resolver: resolver, cfg: cfg}
}

// Run values ticker against its peers. It fails only when the target itself
// cannot be priced; peers that fail are dropped.
func (e *Engine) Run(ctx context.Context, ticker string, opts Options) (*Result, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	log := zap.L().With(zap.String("ticker", ticker))

	maxPeers := opts.MaxPeers
	if maxPeers <= 0 {
		maxPeers = e.cfg.MaxPeers
	}

	snap, err := e.source.Snapshot(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(model.ErrUnpriced, "comps: fetch target %s: %v", ticker, err)
	}
	target := multiples.Compute(snap)
	if !target.Valid {
		return nil, eris.Wrapf(model.ErrUnpriced, "comps: target %s: %s", ticker, target.Error)
	}

	candidates := e.resolver.Resolve(peers.Query{
		Ticker:    ticker,
		Sector:    target.Sector,
		Industry:  target.Industry,
		Verticals: opts.Verticals,
		MaxPeers:  maxPeers,
	})
	log.Debug("comps: resolved peer candidates", zap.Int("candidates", len(candidates)))

	fetched := e.fetchPeers(ctx, candidates)

	res := &Result{
		Target:      target,
		Candidates:  len(candidates),
		Fetched:     len(fetched),
		Stats:       make(map[model.Multiple]Summary, len(model.Multiples)),
		Percentiles: make(map[model.Multiple]float64, len(model.Multiples)),
	}
	if u := e.resolver.Universe(); u != nil {
		res.UniverseVersion = u.Version
	}

	band := e.band(target.MarketCap, opts)
	res.Band = band
	res.Peers = rank(fetched, target.MarketCap, band, maxPeers)

	e.summarize(res)

	log.Info("comps: analysis complete",
		zap.Int("candidates", res.Candidates),
		zap.Int("fetched", res.Fetched),
		zap.Int("peers", len(res.Peers)),
	)
	return res, nil
}

// fetchPeers computes multiples for every candidate under a bounded pool.
// Failed, invalid and zero-market-cap peers are dropped.
func (e *Engine) fetchPeers(ctx context.Context, tickers []string) []model.CompanyComps {
	outcomes := workpool.Map(ctx, tickers, e.cfg.Concurrency, func(ctx context.Context, t string) (model.CompanyComps, error) {
		snap, err := e.source.Snapshot(ctx, t)
		if err != nil {
			return multiples.Failed(t, err.Error()), err
		}
		c := multiples.Compute(snap)
		if !c.Valid {
			return c, eris.New(c.Error)
		}
		return c, nil
	})

	out := make([]model.CompanyComps, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			zap.L().Debug("comps: dropping peer",
				zap.String("peer", tickers[o.Index]),
				zap.Error(o.Err),
			)
			continue
		}
		if o.Value.MarketCap <= 0 {
			zap.L().Debug("comps: dropping peer without market cap", zap.String("peer", o.Value.Ticker))
			continue
		}
		out = append(out, o.Value)
	}
	return out
}

// band resolves the market-cap window. Without a target market cap only
// caller-supplied bounds apply.
func (e *Engine) band(targetMC float64, opts Options) *Band {
	b := Band{Low: 0, High: math.Inf(1)}
	if targetMC > 0 {
		b.Low = targetMC * e.cfg.BandLowFactor
		b.High = targetMC * e.cfg.BandHighFactor
	}
	if opts.MinMarketCap != nil {
		b.Low = *opts.MinMarketCap
	}
	if opts.MaxMarketCap != nil {
		b.High = *opts.MaxMarketCap
	}
	if math.IsInf(b.High, 1) {
		// JSON cannot carry +Inf; report no band when it is unbounded.
		if b.Low == 0 {
			return nil
		}
		b.High = math.MaxFloat64
	}
	return &b
}

// rank filters peers to the band and orders them by market-cap distance to
// the target, ties broken by ticker.
func rank(fetched []model.CompanyComps, targetMC float64, band *Band, maxPeers int) []model.CompanyComps {
	in := make([]model.CompanyComps, 0, len(fetched))
	for _, p := range fetched {
		if band != nil && (p.MarketCap < band.Low || p.MarketCap > band.High) {
			continue
		}
		in = append(in, p)
	}

	sort.SliceStable(in, func(i, j int) bool {
		di := math.Abs(in[i].MarketCap - targetMC)
		dj := math.Abs(in[j].MarketCap - targetMC)
		if di != dj {
			return di < dj
		}
		return in[i].Ticker < in[j].Ticker
	})

	if len(in) > maxPeers {
		in = in[:maxPeers]
	}
	return in
}

func (e *Engine) summarize(res *Result) {
	for _, m := range model.Multiples {
		vals := make([]*float64, len(res.Peers))
		for i := range res.Peers {
			vals[i] = res.Peers[i].Multiple(m)
		}
		clean := stats.Positive(vals)

		var s Summary
		s.Count = len(clean)
		if med, ok := stats.Median(clean); ok {
			s.Median = model.Float(med)
		}
		if mean, ok := stats.Mean(clean); ok {
			s.Mean = model.Float(mean)
		}
		res.Stats[m] = s

		if tv, ok := model.Positive(res.Target.Multiple(m)); ok {
			if pct, ok := stats.PercentileRank(tv, clean); ok {
				res.Percentiles[m] = pct
			}
		}
	}

	res.ImpliedEVFromRevenue = implied(res, model.MultipleEVRevenue, res.Target.Revenue, "implied_ev_from_revenue", "target revenue")
	res.ImpliedEVFromEBITDA = implied(res, model.MultipleEVEBITDA, res.Target.EBITDA, "implied_ev_from_ebitda", "target EBITDA")
	res.ImpliedPriceFromPE = implied(res, model.MultiplePE, res.Target.EPS, "implied_price_from_pe", "target EPS")
}

// implied multiplies the peer median by the target's base metric, recording
// why when either side is unavailable.
func implied(res *Result, m model.Multiple, base *float64, field, baseName string) *float64 {
	med, okMed := model.Positive(res.Stats[m].Median)
	if !okMed {
		res.Insufficient = append(res.Insufficient, model.Insufficiency{
			Field:  field,
			Reason: "no positive peer " + string(m) + " values",
		})
		return nil
	}
	b, okBase := model.Positive(base)
	if !okBase {
		res.Insufficient = append(res.Insufficient, model.Insufficiency{
			Field:  field,
			Reason: baseName + " missing or not positive",
		})
		return nil
	}
	return model.Float(med * b)
}
