package comps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-cli/internal/config"
	"github.com/sells-group/valuation-cli/internal/model"
	"github.com/sells-group/valuation-cli/internal/peers"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Snapshot(ctx context.Context, ticker string) (*model.FinancialSnapshot, error) {
	args := m.Called(ctx, ticker)
	snap, _ := args.Get(0).(*model.FinancialSnapshot)
	return snap, args.Error(1)
}

func f(v float64) *float64 { return model.Float(v) }

func peer(ticker string, mc, evEBITDA float64) *model.FinancialSnapshot {
	return &model.FinancialSnapshot{
		Ticker:    ticker,
		Sector:    "Software",
		Price:     f(1),
		MarketCap: f(mc),
		EVEBITDA:  f(evEBITDA),
	}
}

func testResolver(t *testing.T) *peers.Resolver {
	t.Helper()
	u, err := peers.Parse([]byte(`
version: test-1
sectors:
  - name: Software
    tickers: [AAA, BBB, CCC, DDD, EEE, FFF, TGT]
`))
	require.NoError(t, err)
	return peers.NewResolver(u, 3)
}

func testConfig(concurrency int) config.CompsConfig {
	return config.CompsConfig{MaxPeers: 10, Concurrency: concurrency, BandLowFactor: 0.2, BandHighFactor: 5}
}

func newSource() *mockSource {
	src := &mockSource{}
	src.On("Snapshot", mock.Anything, "TGT").Return(&model.FinancialSnapshot{
		Ticker:            "TGT",
		Sector:            "software",
		Price:             f(10),
		SharesOutstanding: f(100),
		Revenue:           f(500),
		EBITDA:            f(100),
		EVEBITDA:          f(11),
	}, nil)
	src.On("Snapshot", mock.Anything, "AAA").Return(peer("AAA", 900, 8), nil)
	src.On("Snapshot", mock.Anything, "BBB").Return(peer("BBB", 1100, 10), nil)
	src.On("Snapshot", mock.Anything, "CCC").Return(peer("CCC", 1500, 12), nil)
	src.On("Snapshot", mock.Anything, "DDD").Return(peer("DDD", 800, 14), nil)
	src.On("Snapshot", mock.Anything, "EEE").Return(nil, errors.New("timeout"))
	src.On("Snapshot", mock.Anything, "FFF").Return(peer("FFF", 10000, 30), nil)
	return src
}

func tickers(cs []model.CompanyComps) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Ticker
	}
	return out
}

func TestRun_RanksFiltersAndSummarizes(t *testing.T) {
	t.Parallel()

	src := newSource()
	e := New(src, testResolver(t), testConfig(8))

	res, err := e.Run(context.Background(), "tgt", Options{})
	require.NoError(t, err)

	assert.Equal(t, "TGT", res.Target.Ticker)
	assert.Equal(t, "test-1", res.UniverseVersion)
	assert.Equal(t, 6, res.Candidates)
	assert.Equal(t, 5, res.Fetched)
	require.NotNil(t, res.Band)
	assert.InDelta(t, 200, res.Band.Low, 1e-9)
	assert.InDelta(t, 5000, res.Band.High, 1e-9)

	// FFF is out of band, EEE failed; AAA/BBB tie on distance and sort by ticker.
	assert.Equal(t, []string{"AAA", "BBB", "DDD", "CCC"}, tickers(res.Peers))

	s := res.Stats[model.MultipleEVEBITDA]
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 11, *s.Median, 1e-9)
	assert.InDelta(t, 11, *s.Mean, 1e-9)
	assert.InDelta(t, 50, res.Percentiles[model.MultipleEVEBITDA], 1e-9)

	require.NotNil(t, res.ImpliedEVFromEBITDA)
	assert.InDelta(t, 1100, *res.ImpliedEVFromEBITDA, 1e-9)
	assert.Nil(t, res.ImpliedEVFromRevenue)
	assert.Nil(t, res.ImpliedPriceFromPE)

	fields := map[string]bool{}
	for _, in := range res.Insufficient {
		fields[in.Field] = true
	}
	assert.True(t, fields["implied_ev_from_revenue"])
	assert.True(t, fields["implied_price_from_pe"])

	src.AssertNumberOfCalls(t, "Snapshot", 7)
}

func TestRun_TruncatesToMaxPeers(t *testing.T) {
	t.Parallel()

	e := New(newSource(), testResolver(t), testConfig(2))

	res, err := e.Run(context.Background(), "TGT", Options{MaxPeers: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, tickers(res.Peers))
	assert.InDelta(t, 9, *res.Stats[model.MultipleEVEBITDA].Median, 1e-9)
	assert.InDelta(t, 100, res.Percentiles[model.MultipleEVEBITDA], 1e-9)
}

func TestRun_CallerBand(t *testing.T) {
	t.Parallel()

	e := New(newSource(), testResolver(t), testConfig(4))

	res, err := e.Run(context.Background(), "TGT", Options{MinMarketCap: f(1000), MaxMarketCap: f(20000)})
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB", "CCC", "FFF"}, tickers(res.Peers))
}

func TestRun_DeterministicAcrossPoolWidths(t *testing.T) {
	t.Parallel()

	var runs [][]string
	for _, width := range []int{1, 3, 8} {
		e := New(newSource(), testResolver(t), testConfig(width))
		res, err := e.Run(context.Background(), "TGT", Options{})
		require.NoError(t, err)
		runs = append(runs, tickers(res.Peers))
	}
	assert.Equal(t, runs[0], runs[1])
	assert.Equal(t, runs[0], runs[2])
}

func TestRun_TargetUnpriced(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap *model.FinancialSnapshot
		err  error
	}{
		{"fetch error", nil, errors.New("not found")},
		{"no price", &model.FinancialSnapshot{Ticker: "TGT", Sector: "Software"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockSource{}
			src.On("Snapshot", mock.Anything, "TGT").Return(tt.snap, tt.err)

			_, err := New(src, testResolver(t), testConfig(2)).Run(context.Background(), "TGT", Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrUnpriced))
			src.AssertNumberOfCalls(t, "Snapshot", 1)
		})
	}
}

func TestRun_NoPeers(t *testing.T) {
	t.Parallel()

	u, err := peers.Parse([]byte("sectors:\n  - name: Mining\n    tickers: [ZZZ]\n"))
	require.NoError(t, err)

	src := newSource()
	res, err := New(src, peers.NewResolver(u, 3), testConfig(2)).Run(context.Background(), "TGT", Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Peers)
	assert.Empty(t, res.Percentiles)
	assert.Equal(t, 0, res.Stats[model.MultipleEVEBITDA].Count)
	assert.Nil(t, res.ImpliedEVFromEBITDA)
}
