// Package source supplies pre-fetched financial snapshots to the analysis
// engines from memory or caller-provided files.
package source

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-cli/internal/model"
)

// ErrNotFound is returned when a source has no snapshot for a ticker.
var ErrNotFound = eris.New("source: snapshot not found")

// Source returns the latest snapshot for a ticker.
type Source interface {
	Snapshot(ctx context.Context, ticker string) (*model.FinancialSnapshot, error)
}

// Memory is a Source backed by a ticker-keyed map. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	snaps map[string]*model.FinancialSnapshot
}

// NewMemory creates a Memory source holding snaps. Later duplicates of a
// ticker replace earlier ones.
func NewMemory(snaps ...*model.FinancialSnapshot) *Memory {
	m := &Memory{snaps: make(map[string]*model.FinancialSnapshot, len(snaps))}
	for _, s := range snaps {
		m.Add(s)
	}
	return m
}

// Add stores s under its upper-cased ticker. Snapshots without a ticker are ignored.
func (m *Memory) Add(s *model.FinancialSnapshot) {
	if s == nil {
		return
	}
	key := normalize(s.Ticker)
	if key == "" {
		return
	}
	m.mu.Lock()
	m.snaps[key] = s
	m.mu.Unlock()
}

// Snapshot implements Source.
func (m *Memory) Snapshot(ctx context.Context, ticker string) (*model.FinancialSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "source: snapshot")
	}
	m.mu.RLock()
	s, ok := m.snaps[normalize(ticker)]
	m.mu.RUnlock()
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "ticker %s", ticker)
	}
	return s, nil
}

// Tickers returns the stored tickers in sorted order.
func (m *Memory) Tickers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.snaps))
	for k := range m.snaps {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored snapshots.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snaps)
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
