// Package server exposes the analyses over an HTTP JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-cli/internal/analysis"
	"github.com/sells-group/valuation-cli/internal/comps"
	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/dcf"
	"github.com/sells-group/valuation-cli/internal/deal"
	"github.com/sells-group/valuation-cli/internal/lbo"
	"github.com/sells-group/valuation-cli/internal/model"
	"github.com/sells-group/valuation-cli/internal/peers"
	"github.com/sells-group/valuation-cli/internal/source"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Server handles analysis requests. Each request carries its own snapshots,
// optionally layered over a fallback source loaded at startup.
type Server struct {
	cfg      *config.Config
	resolver *peers.Resolver
	fallback source.Source
	router   chi.Router
}

// New creates a Server. fallback may be nil.
func New(cfg *config.Config, resolver *peers.Resolver, fallback source.Source) *Server {
	s := &Server{cfg: cfg, resolver: resolver, fallback: fallback}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/peers/{ticker}", s.handlePeers)
		r.Post("/comps", s.handleComps)
		r.Post("/merger", s.handleMerger)
		r.Post("/dcf", s.handleDCF)
		r.Post("/football", s.handleFootball)
		r.Post("/lbo", s.handleLBO)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

// Request bodies.

type snapshotsBody struct {
	Snapshots []*model.FinancialSnapshot `json:"snapshots"`
}

type compsRequest struct {
	snapshotsBody
	Ticker       string   `json:"ticker"`
	MaxPeers     int      `json:"max_peers"`
	MinMarketCap *float64 `json:"min_market_cap"`
	MaxMarketCap *float64 `json:"max_market_cap"`
	Verticals    []string `json:"verticals"`
}

func (r compsRequest) options() comps.Options {
	return comps.Options{
		MaxPeers:     r.MaxPeers,
		MinMarketCap: r.MinMarketCap,
		MaxMarketCap: r.MaxMarketCap,
		Verticals:    r.Verticals,
	}
}

type mergerRequest struct {
	snapshotsBody
	Acquirer    string            `json:"acquirer"`
	Target      string            `json:"target"`
	Assumptions *deal.Assumptions `json:"assumptions"`
}

type dcfRequest struct {
	snapshotsBody
	Ticker         string           `json:"ticker"`
	Assumptions    *dcf.Assumptions `json:"assumptions"`
	UseWACC        bool             `json:"use_wacc"`
	SkipMonteCarlo bool             `json:"skip_monte_carlo"`
}

type footballRequest struct {
	compsRequest
	Precedent  *model.PrecedentData `json:"precedent"`
	OfferValue *float64             `json:"offer_value"`
}

type lboRequest struct {
	snapshotsBody
	Ticker      string           `json:"ticker"`
	Assumptions *lbo.Assumptions `json:"assumptions"`
}

// Handlers.

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"universe": s.resolver.Universe().Version,
	})
}

func (s *Server) handlePeers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxPeers := s.cfg.Comps.MaxPeers
	if v := q.Get("max_peers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "max_peers must be a positive integer")
			return
		}
		maxPeers = n
	}
	peerList := s.resolver.Resolve(peers.Query{
		Ticker:    chi.URLParam(r, "ticker"),
		Sector:    q.Get("sector"),
		Industry:  q.Get("industry"),
		Verticals: q["vertical"],
		MaxPeers:  maxPeers,
	})
	writeJSON(w, http.StatusOK, map[string]any{"peers": peerList})
}

func (s *Server) handleComps(w http.ResponseWriter, r *http.Request) {
	var req compsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	res, err := s.service(req.Snapshots).Comps(r.Context(), req.Ticker, req.options())
	respond(w, res, err)
}

func (s *Server) handleMerger(w http.ResponseWriter, r *http.Request) {
	var req mergerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Acquirer == "" || req.Target == "" {
		writeError(w, http.StatusBadRequest, "acquirer and target are required")
		return
	}
	a := deal.FromConfig(s.cfg.Deal)
	if req.Assumptions != nil {
		a = *req.Assumptions
	}
	res, err := s.service(req.Snapshots).Merger(r.Context(), req.Acquirer, req.Target, a)
	respond(w, res, err)
}

func (s *Server) handleDCF(w http.ResponseWriter, r *http.Request) {
	var req dcfRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	a := dcf.AssumptionsFromConfig(s.cfg.DCF)
	if req.Assumptions != nil {
		a = *req.Assumptions
	}
	res, err := s.service(req.Snapshots).DCF(r.Context(), req.Ticker, a, dcf.Options{
		UseWACC:        req.UseWACC,
		SkipMonteCarlo: req.SkipMonteCarlo,
	})
	respond(w, res, err)
}

func (s *Server) handleFootball(w http.ResponseWriter, r *http.Request) {
	var req footballRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	res, err := s.service(req.Snapshots).Football(r.Context(), analysis.FootballRequest{
		Ticker:     req.Ticker,
		Comps:      req.options(),
		Precedent:  req.Precedent,
		OfferValue: req.OfferValue,
	})
	respond(w, res, err)
}

func (s *Server) handleLBO(w http.ResponseWriter, r *http.Request) {
	var req lboRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	a := lbo.AssumptionsFromConfig(s.cfg.LBO)
	if req.Assumptions != nil {
		a = *req.Assumptions
	}
	res, err := s.service(req.Snapshots).LBO(r.Context(), req.Ticker, a)
	respond(w, res, err)
}

// service builds a per-request Service over the inline snapshots, falling
// back to the startup source for tickers the request does not carry.
func (s *Server) service(snaps []*model.FinancialSnapshot) *analysis.Service {
	var src source.Source = source.NewMemory(snaps...)
	if s.fallback != nil {
		src = layered{primary: src, fallback: s.fallback}
	}
	return analysis.New(s.cfg, s.resolver, src)
}

// layered consults primary first and fallback when primary has no snapshot.
type layered struct {
	primary  source.Source
	fallback source.Source
}

func (l layered) Snapshot(ctx context.Context, ticker string) (*model.FinancialSnapshot, error) {
	snap, err := l.primary.Snapshot(ctx, ticker)
	if errors.Is(err, source.ErrNotFound) {
		return l.fallback.Snapshot(ctx, ticker)
	}
	return snap, err
}

// Helpers.

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, v any, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, v)
	case errors.Is(err, model.ErrInvalidAssumptions):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrUnpriced):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		zap.L().Error("server: analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
