package peers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultResolver(t *testing.T) *Resolver {
	t.Helper()
	u, err := Default()
	require.NoError(t, err)
	return NewResolver(u, DefaultOversample)
}

func TestDefaultUniverse(t *testing.T) {
	t.Parallel()

	u, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, u.Version)
	assert.Len(t, u.Sectors, 11)
	assert.Equal(t, "Technology", u.SectorNames()[0])
	require.Len(t, u.Verticals, 1)
	assert.Equal(t, "software_saas", u.Verticals[0].Name)
	assert.Len(t, u.Verticals[0].Tickers, 40)
}

func TestResolve_SectorMatch(t *testing.T) {
	t.Parallel()
	r := defaultResolver(t)

	tests := []struct {
		name      string
		sector    string
		wantFirst string
	}{
		{"exact", "Technology", "AAPL"},
		{"lower case", "technology", "AAPL"},
		{"query inside name", "Energ", "XOM"},
		{"name inside query", "Global Healthcare Providers", "JNJ"},
		{"upper case", "REAL ESTATE", "PLD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(Query{Ticker: "ZZZZ", Sector: tt.sector, MaxPeers: 10})
			require.NotEmpty(t, got)
			assert.Equal(t, tt.wantFirst, got[0])
		})
	}
}

func TestResolve_ExcludesTargetAndTruncates(t *testing.T) {
	t.Parallel()
	r := defaultResolver(t)

	got := r.Resolve(Query{Ticker: "msft", Sector: "Technology", MaxPeers: 10})
	assert.Len(t, got, 29)
	assert.NotContains(t, got, "MSFT")
	assert.Equal(t, []string{"AAPL", "GOOGL", "META"}, got[:3])

	short := r.Resolve(Query{Ticker: "MSFT", Sector: "Technology", MaxPeers: 2})
	assert.Equal(t, []string{"AAPL", "GOOGL", "META", "NVDA", "ADBE", "CRM"}, short)
}

func TestResolve_VerticalOverlayDeduplicates(t *testing.T) {
	t.Parallel()
	r := defaultResolver(t)

	got := r.Resolve(Query{Ticker: "CRM", Sector: "Technology", Industry: "Software - Application", MaxPeers: 100})

	seen := map[string]bool{}
	for _, tk := range got {
		assert.False(t, seen[tk], "duplicate %s", tk)
		seen[tk] = true
	}
	assert.NotContains(t, got, "CRM")
	assert.Contains(t, got, "HUBS")
	// Sector peers come before the vertical overlay.
	assert.Equal(t, "AAPL", got[0])
	// 58 distinct tickers across both lists, minus the target.
	assert.Len(t, got, 57)
}

func TestResolve_ForcedVertical(t *testing.T) {
	t.Parallel()
	r := defaultResolver(t)

	got := r.Resolve(Query{Ticker: "HUBS", Verticals: []string{"Software_SaaS"}, MaxPeers: 3})
	assert.Equal(t, []string{"CRM", "NOW", "ADBE", "ORCL", "SAP", "INTU", "TEAM", "DDOG", "SNOW"}, got)
}

func TestResolve_NoMatch(t *testing.T) {
	t.Parallel()
	r := defaultResolver(t)

	assert.Empty(t, r.Resolve(Query{Ticker: "X", Sector: "Shipping", MaxPeers: 10}))
	assert.Empty(t, r.Resolve(Query{Ticker: "X", MaxPeers: 10}))
}

func TestResolve_FirstSectorWins(t *testing.T) {
	t.Parallel()

	u, err := Parse([]byte(`
version: test
sectors:
  - name: Consumer
    tickers: [AAA, BBB]
  - name: Consumer Cyclical
    tickers: [CCC]
`))
	require.NoError(t, err)

	got := NewResolver(u, 0).Resolve(Query{Ticker: "T", Sector: "Consumer Cyclical", MaxPeers: 5})
	assert.Equal(t, []string{"AAA", "BBB"}, got)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("version: x\nsectors: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one sector")

	_, err = Parse([]byte("sectors:\n  - name: A\n  - name: A\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate sector A")

	_, err = Parse([]byte("sectors: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peers: parse universe")
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "universe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: custom\nsectors:\n  - name: Banks\n    tickers: [JPM, BAC]\n"), 0o644))

	u, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", u.Version)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Technology", def.Sectors[0].Name)
}
