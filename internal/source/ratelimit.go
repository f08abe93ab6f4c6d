package source

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
)

// RateLimited throttles calls to an upstream Source.
type RateLimited struct {
	next    Source
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a token bucket. A non-positive rate returns
// next unchanged.
func NewRateLimited(next Source, cfg config.SourceConfig) Source {
	if cfg.RatePerSec <= 0 {
		return next
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst),
	}
}

// Snapshot waits for a token, then delegates.
func (r *RateLimited) Snapshot(ctx context.Context, ticker string) (*model.FinancialSnapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "source: rate limit wait")
	}
	return r.next.Snapshot(ctx, ticker)
}
