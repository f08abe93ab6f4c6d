package peers

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultOversample is how many candidates are kept per requested peer,
// since later filtering drops invalid and out-of-band companies.
const DefaultOversample = 3

// Query describes the company whose peers are wanted.
type Query struct {
	Ticker    string
	Sector    string
	Industry  string
	Verticals []string // vertical names to include regardless of industry
	MaxPeers  int
}

// Resolver looks up candidate peers in a Universe.
type Resolver struct {
	universe   *Universe
	oversample int
}

// NewResolver creates a Resolver. An oversample below 1 uses DefaultOversample.
func NewResolver(u *Universe, oversample int) *Resolver {
	if oversample < 1 {
		oversample = DefaultOversample
	}
	return &Resolver{universe: u, oversample: oversample}
}

// Universe returns the table the resolver reads from.
func (r *Resolver) Universe() *Universe { return r.universe }

// Resolve returns an order-preserving, deduplicated candidate list with the
// target removed, truncated to MaxPeers times the oversample factor.
func (r *Resolver) Resolve(q Query) []string {
	fold := cases.Fold()
	sector := fold.String(strings.TrimSpace(q.Sector))
	industry := fold.String(q.Industry)

	var candidates []string
	if s := r.matchSector(fold, sector); s != nil {
		candidates = append(candidates, s.Tickers...)
	}

	forced := make(map[string]bool, len(q.Verticals))
	for _, v := range q.Verticals {
		forced[fold.String(v)] = true
	}
	for _, v := range r.universe.Verticals {
		if forced[fold.String(v.Name)] || mentions(fold, industry, v.Keywords) {
			candidates = append(candidates, v.Tickers...)
		}
	}

	target := strings.ToUpper(strings.TrimSpace(q.Ticker))
	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		t := strings.ToUpper(strings.TrimSpace(c))
		if t == "" || t == target || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}

	if q.MaxPeers > 0 {
		if limit := q.MaxPeers * r.oversample; len(out) > limit {
			out = out[:limit]
		}
	}
	return out
}

// matchSector returns the first sector whose name contains the query or is
// contained by it. An empty query matches nothing.
func (r *Resolver) matchSector(fold cases.Caser, sector string) *Sector {
	if sector == "" {
		return nil
	}
	for i := range r.universe.Sectors {
		name := fold.String(r.universe.Sectors[i].Name)
		if strings.Contains(name, sector) || strings.Contains(sector, name) {
			return &r.universe.Sectors[i]
		}
	}
	return nil
}

func mentions(fold cases.Caser, industry string, keywords []string) bool {
	if industry == "" {
		return false
	}
	for _, k := range keywords {
		if k != "" && strings.Contains(industry, fold.String(k)) {
			return true
		}
	}
	return false
}
