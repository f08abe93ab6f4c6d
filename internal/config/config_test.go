package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Comps.MaxPeers)
	assert.Equal(t, 8, cfg.Comps.Concurrency)
	assert.InDelta(t, 0.2, cfg.Comps.BandLowFactor, 0.001)
	assert.InDelta(t, 5.0, cfg.Comps.BandHighFactor, 0.001)
	assert.Equal(t, 3, cfg.Peers.OversampleFactor)
	assert.InDelta(t, 30.0, cfg.Deal.OfferPremiumPct, 0.001)
	assert.InDelta(t, 50.0, cfg.Deal.CashPct, 0.001)
	assert.InDelta(t, 0.10, cfg.Synergy.DiscountRate, 0.001)
	assert.Equal(t, []float64{0.33, 0.66, 1.0}, cfg.Synergy.PhaseIn)
	assert.InDelta(t, 40.0, cfg.Credit.PaydownPctOfEBITDA, 0.001)
	assert.Equal(t, 10, cfg.Credit.PaydownMaxYears)
	assert.Equal(t, 50, cfg.DCF.MaxYears)
	assert.Equal(t, 30, cfg.LBO.MaxHoldYears)
	assert.InDelta(t, 0.8, cfg.Football.CompsLowFactor, 0.001)
	assert.InDelta(t, 0.12, cfg.Football.DCFLowWACC, 0.001)
	assert.Equal(t, 5, cfg.DCF.Years)
	assert.Equal(t, 10000, cfg.DCF.MonteCarlo.Samples)
	assert.InDelta(t, 0.03, cfg.DCF.MonteCarlo.GrowthStdDev, 0.0001)
	assert.InDelta(t, 0.015, cfg.DCF.MonteCarlo.DiscountStdDev, 0.0001)
	assert.InDelta(t, 0.045, cfg.WACC.RiskFreeRate, 0.0001)
	assert.InDelta(t, 0.055, cfg.WACC.EquityRiskPremium, 0.0001)
	assert.InDelta(t, 5.0, cfg.LBO.Leverage, 0.001)
	assert.Equal(t, 5, cfg.LBO.HoldYears)

	assert.NoError(t, cfg.Validate("analysis"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
comps:
  max_peers: 6
dcf:
  monte_carlo:
    samples: 500
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Comps.MaxPeers)
	assert.Equal(t, 500, cfg.DCF.MonteCarlo.Samples)
	// Defaults still apply for unset values
	assert.Equal(t, 8, cfg.Comps.Concurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
comps:
  max_peers: 6
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("VALUATION_COMPS_MAX_PEERS", "12")
	t.Setenv("VALUATION_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, 12, cfg.Comps.MaxPeers)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("VALUATION_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Peers.OversampleFactor = 3
	cfg.Comps.MaxPeers = 10
	cfg.Comps.Concurrency = 8
	cfg.Comps.BandLowFactor = 0.2
	cfg.Comps.BandHighFactor = 5
	cfg.Deal.CashPct = 50
	cfg.Deal.StockPct = 50
	cfg.Synergy.DiscountRate = 0.10
	cfg.Credit.PaydownMaxYears = 10
	cfg.DCF.Years = 5
	cfg.DCF.DiscountRate = 0.10
	cfg.DCF.TerminalGrowth = 0.025
	cfg.DCF.ReverseLow = -0.10
	cfg.DCF.ReverseHigh = 0.40
	cfg.DCF.MonteCarlo.Samples = 100
	cfg.WACC.MaxTaxRate = 0.5
	cfg.LBO.HoldYears = 5
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("analysis"))
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidate_ConsiderationMix(t *testing.T) {
	cfg := validDefaults()
	cfg.Deal.CashPct = 60
	cfg.Deal.StockPct = 30

	err := cfg.Validate("analysis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must equal 100")
}

func TestValidate_ConsiderationMixTolerance(t *testing.T) {
	cfg := validDefaults()
	cfg.Deal.StockPct = 50 + MixTolerance/2
	assert.NoError(t, cfg.Validate("analysis"))

	cfg.Deal.StockPct = 50 + MixTolerance*1e3
	err := cfg.Validate("analysis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must equal 100")
}

func TestValidate_HorizonCaps(t *testing.T) {
	cfg := validDefaults()
	cfg.DCF.MaxYears = 50
	cfg.DCF.Years = 51
	cfg.LBO.MaxHoldYears = 30
	cfg.LBO.HoldYears = 31

	err := cfg.Validate("analysis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dcf.years must be <= dcf.max_years (50)")
	assert.Contains(t, err.Error(), "lbo.hold_years must be <= lbo.max_hold_years (30)")

	cfg.DCF.Years = 50
	cfg.LBO.HoldYears = 30
	assert.NoError(t, cfg.Validate("analysis"))
}

func TestValidate_DiscountBelowTerminalGrowth(t *testing.T) {
	cfg := validDefaults()
	cfg.DCF.DiscountRate = 0.02
	cfg.DCF.TerminalGrowth = 0.03

	err := cfg.Validate("analysis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dcf.discount_rate")
}

func TestValidate_JoinsAllProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Comps.MaxPeers = 0
	cfg.DCF.MonteCarlo.Samples = 0

	err := cfg.Validate("analysis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comps.max_peers")
	assert.Contains(t, err.Error(), "dcf.monte_carlo.samples")
	assert.Contains(t, err.Error(), "; ")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")

	// Port is irrelevant outside serve mode.
	assert.NoError(t, cfg.Validate("analysis"))
}
