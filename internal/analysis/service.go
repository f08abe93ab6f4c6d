// Package analysis wires snapshot sources and the valuation engines into the
// operations exposed by the CLI and HTTP server.
package analysis

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-cli/internal/comps"
	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/dcf"
	"github.com/sells-group/valuation-cli/internal/deal"
	"github.com/sells-group/valuation-cli/internal/footballfield"
	"github.com/sells-group/valuation-cli/internal/lbo"
	"github.com/sells-group/valuation-cli/internal/model"
	"github.com/sells-group/valuation-cli/internal/peers"
	"github.com/sells-group/valuation-cli/internal/precedent"
	"github.com/sells-group/valuation-cli/internal/proforma"
	"github.com/sells-group/valuation-cli/internal/source"
)

// Service runs analyses against one snapshot source.
type Service struct {
	cfg      *config.Config
	src      source.Source
	resolver *peers.Resolver
	engine   *comps.Engine
}

// NewResolver loads the configured peer universe.
func NewResolver(cfg *config.Config) (*peers.Resolver, error) {
	u, err := peers.Load(cfg.Peers.UniversePath)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: load peer universe")
	}
	return peers.NewResolver(u, cfg.Peers.OversampleFactor), nil
}

// New creates a Service. src is throttled according to cfg.Source.
func New(cfg *config.Config, resolver *peers.Resolver, src source.Source) *Service {
	src = source.NewRateLimited(src, cfg.Source)
	return &Service{
		cfg:      cfg,
		src:      src,
		resolver: resolver,
		engine:   comps.New(src, resolver, cfg.Comps),
	}
}

// Resolver returns the peer resolver in use.
func (s *Service) Resolver() *peers.Resolver { return s.resolver }

func runLogger(op, ticker string) *zap.Logger {
	return zap.L().With(
		zap.String("run_id", uuid.NewString()),
		zap.String("op", op),
		zap.String("ticker", ticker),
	)
}

// Comps runs a comparables analysis for ticker.
func (s *Service) Comps(ctx context.Context, ticker string, opts comps.Options) (*comps.Result, error) {
	log := runLogger("comps", ticker)
	res, err := s.engine.Run(ctx, ticker, opts)
	if err != nil {
		log.Warn("analysis: comps failed", zap.Error(err))
		return nil, err
	}
	log.Info("analysis: comps complete",
		zap.Int("candidates", res.Candidates),
		zap.Int("peers", len(res.Peers)),
	)
	return res, nil
}

// Merger builds the pro forma for acquirer buying target.
func (s *Service) Merger(ctx context.Context, acquirer, target string, a deal.Assumptions) (*proforma.Result, error) {
	log := runLogger("merger", target).With(zap.String("acquirer", acquirer))

	acq, err := s.party(ctx, "acquirer", acquirer)
	if err != nil {
		return nil, err
	}
	tgt, err := s.party(ctx, "target", target)
	if err != nil {
		return nil, err
	}

	res, err := proforma.Combine(acq, tgt, a, proforma.Config{Synergy: s.cfg.Synergy, Credit: s.cfg.Credit})
	if err != nil {
		log.Warn("analysis: merger failed", zap.Error(err))
		return nil, err
	}
	fields := []zap.Field{zap.Bool("accretive", res.IsAccretive), zap.Int("warnings", len(res.Warnings))}
	if res.AccretionDilutionPct != nil {
		fields = append(fields, zap.Float64("accretion_pct", *res.AccretionDilutionPct))
	}
	log.Info("analysis: merger complete", fields...)
	return res, nil
}

func (s *Service) party(ctx context.Context, role, ticker string) (*model.FinancialSnapshot, error) {
	snap, err := s.src.Snapshot(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(model.ErrUnpriced, "analysis: fetch %s %s: %v", role, ticker, err)
	}
	return snap, nil
}

// DCF values ticker from its free cash flow.
func (s *Service) DCF(ctx context.Context, ticker string, a dcf.Assumptions, opts dcf.Options) (*dcf.Report, error) {
	log := runLogger("dcf", ticker)
	snap, err := s.party(ctx, "target", ticker)
	if err != nil {
		return nil, err
	}
	rep := dcf.Analyze(snap, a, s.cfg.DCF, s.cfg.WACC, opts)
	if rep.Valuation != nil && rep.Valuation.Insufficient != nil {
		log.Info("analysis: dcf insufficient", zap.String("reason", rep.Valuation.Insufficient.Reason))
	} else {
		log.Info("analysis: dcf complete")
	}
	return rep, nil
}

// FootballRequest carries the optional inputs of a football field.
type FootballRequest struct {
	Ticker     string
	Comps      comps.Options
	Precedent  *model.PrecedentData
	OfferValue *float64
}

// Football builds the valuation range chart for a target. A comps failure
// on peers only drops the comps-based bars.
func (s *Service) Football(ctx context.Context, req FootballRequest) (*footballfield.Field, error) {
	log := runLogger("football", req.Ticker)
	snap, err := s.party(ctx, "target", req.Ticker)
	if err != nil {
		return nil, err
	}

	in := footballfield.Inputs{
		Target:     snap,
		Precedent:  precedent.Summarize(req.Precedent),
		OfferValue: req.OfferValue,
	}
	res, err := s.engine.Run(ctx, req.Ticker, req.Comps)
	if err != nil {
		log.Debug("analysis: comps unavailable for football field", zap.Error(err))
	} else {
		in.PeerMedianEVEBITDA = res.Median(model.MultipleEVEBITDA)
		in.PeerMedianPE = res.Median(model.MultiplePE)
	}

	f := footballfield.Build(in, s.cfg.Football)
	log.Info("analysis: football field complete", zap.Int("bars", len(f.Bars)), zap.Int("omitted", len(f.Omitted)))
	return f, nil
}

// LBO computes sponsor returns for ticker.
func (s *Service) LBO(ctx context.Context, ticker string, a lbo.Assumptions) (*lbo.Result, error) {
	log := runLogger("lbo", ticker)
	snap, err := s.party(ctx, "target", ticker)
	if err != nil {
		return nil, err
	}
	if s.cfg.LBO.MaxHoldYears > 0 {
		a.MaxHoldYears = s.cfg.LBO.MaxHoldYears
	}
	res := lbo.Analyze(snap, a)
	log.Info("analysis: lbo complete", zap.Bool("sufficient", res.Insufficient == nil))
	return res, nil
}
