package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MixTolerance bounds how far deal cash % + stock % may drift from 100.
const MixTolerance = 1e-9

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Peers    PeersConfig    `yaml:"peers" mapstructure:"peers"`
	Comps    CompsConfig    `yaml:"comps" mapstructure:"comps"`
	Deal     DealConfig     `yaml:"deal" mapstructure:"deal"`
	Synergy  SynergyConfig  `yaml:"synergy" mapstructure:"synergy"`
	Credit   CreditConfig   `yaml:"credit" mapstructure:"credit"`
	Football FootballConfig `yaml:"football" mapstructure:"football"`
	DCF      DCFConfig      `yaml:"dcf" mapstructure:"dcf"`
	WACC     WACCConfig     `yaml:"wacc" mapstructure:"wacc"`
	LBO      LBOConfig      `yaml:"lbo" mapstructure:"lbo"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// SourceConfig throttles snapshot lookups against the data collaborator.
type SourceConfig struct {
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"` // 0 disables throttling
	Burst      int     `yaml:"burst" mapstructure:"burst"`
}

// PeersConfig points at the sector peer universe.
type PeersConfig struct {
	UniversePath     string `yaml:"universe_path" mapstructure:"universe_path"` // empty = embedded table
	OversampleFactor int    `yaml:"oversample_factor" mapstructure:"oversample_factor"`
}

// CompsConfig configures the comparables engine.
type CompsConfig struct {
	MaxPeers       int     `yaml:"max_peers" mapstructure:"max_peers"`
	Concurrency    int     `yaml:"concurrency" mapstructure:"concurrency"`
	BandLowFactor  float64 `yaml:"band_low_factor" mapstructure:"band_low_factor"`
	BandHighFactor float64 `yaml:"band_high_factor" mapstructure:"band_high_factor"`
}

// DealConfig holds default deal assumptions, all in percent.
type DealConfig struct {
	OfferPremiumPct   float64 `yaml:"offer_premium_pct" mapstructure:"offer_premium_pct"`
	CashPct           float64 `yaml:"cash_pct" mapstructure:"cash_pct"`
	StockPct          float64 `yaml:"stock_pct" mapstructure:"stock_pct"`
	CostSynergyPct    float64 `yaml:"cost_synergy_pct" mapstructure:"cost_synergy_pct"`
	RevenueSynergyPct float64 `yaml:"revenue_synergy_pct" mapstructure:"revenue_synergy_pct"`
	TaxRatePct        float64 `yaml:"tax_rate_pct" mapstructure:"tax_rate_pct"`
	CostOfDebtPct     float64 `yaml:"cost_of_debt_pct" mapstructure:"cost_of_debt_pct"`
	TransactionFeePct float64 `yaml:"transaction_fee_pct" mapstructure:"transaction_fee_pct"`
}

// SynergyConfig configures synergy valuation.
type SynergyConfig struct {
	DiscountRate   float64   `yaml:"discount_rate" mapstructure:"discount_rate"`
	SGAFallbackPct float64   `yaml:"sga_fallback_pct" mapstructure:"sga_fallback_pct"`
	PhaseIn        []float64 `yaml:"phase_in" mapstructure:"phase_in"`
	ScheduleYears  int       `yaml:"schedule_years" mapstructure:"schedule_years"`
}

// CreditConfig configures the credit analysis.
type CreditConfig struct {
	PaydownPctOfEBITDA float64 `yaml:"paydown_pct_of_ebitda" mapstructure:"paydown_pct_of_ebitda"`
	PaydownMaxYears    int     `yaml:"paydown_max_years" mapstructure:"paydown_max_years"`
	LeverageWarning    float64 `yaml:"leverage_warning" mapstructure:"leverage_warning"`
}

// FootballConfig configures the valuation-range table.
type FootballConfig struct {
	CompsLowFactor  float64 `yaml:"comps_low_factor" mapstructure:"comps_low_factor"`
	CompsHighFactor float64 `yaml:"comps_high_factor" mapstructure:"comps_high_factor"`
	DCFLowWACC      float64 `yaml:"dcf_low_wacc" mapstructure:"dcf_low_wacc"`
	DCFLowGrowth    float64 `yaml:"dcf_low_growth" mapstructure:"dcf_low_growth"`
	DCFHighWACC     float64 `yaml:"dcf_high_wacc" mapstructure:"dcf_high_wacc"`
	DCFHighGrowth   float64 `yaml:"dcf_high_growth" mapstructure:"dcf_high_growth"`
}

// DCFConfig holds DCF defaults. Rates are decimals (0.10 = 10%).
type DCFConfig struct {
	Growth           float64          `yaml:"growth" mapstructure:"growth"`
	TerminalGrowth   float64          `yaml:"terminal_growth" mapstructure:"terminal_growth"`
	DiscountRate     float64          `yaml:"discount_rate" mapstructure:"discount_rate"`
	Years            int              `yaml:"years" mapstructure:"years"`
	MaxYears         int              `yaml:"max_years" mapstructure:"max_years"`
	SensitivityStep  float64          `yaml:"sensitivity_step" mapstructure:"sensitivity_step"`
	SensitivitySteps int              `yaml:"sensitivity_steps" mapstructure:"sensitivity_steps"`
	ReverseLow       float64          `yaml:"reverse_low" mapstructure:"reverse_low"`
	ReverseHigh      float64          `yaml:"reverse_high" mapstructure:"reverse_high"`
	ReverseTolerance float64          `yaml:"reverse_tolerance" mapstructure:"reverse_tolerance"`
	ReverseMaxIter   int              `yaml:"reverse_max_iter" mapstructure:"reverse_max_iter"`
	MonteCarlo       MonteCarloConfig `yaml:"monte_carlo" mapstructure:"monte_carlo"`
}

// MonteCarloConfig configures the DCF simulation.
type MonteCarloConfig struct {
	Samples          int     `yaml:"samples" mapstructure:"samples"`
	GrowthStdDev     float64 `yaml:"growth_std_dev" mapstructure:"growth_std_dev"`
	DiscountStdDev   float64 `yaml:"discount_std_dev" mapstructure:"discount_std_dev"`
	MaxPriceMultiple float64 `yaml:"max_price_multiple" mapstructure:"max_price_multiple"`
	Seed             uint64  `yaml:"seed" mapstructure:"seed"`
}

// WACCConfig holds CAPM inputs that are not company-specific.
type WACCConfig struct {
	RiskFreeRate      float64 `yaml:"risk_free_rate" mapstructure:"risk_free_rate"`
	EquityRiskPremium float64 `yaml:"equity_risk_premium" mapstructure:"equity_risk_premium"`
	DefaultBeta       float64 `yaml:"default_beta" mapstructure:"default_beta"`
	DefaultCostOfDebt float64 `yaml:"default_cost_of_debt" mapstructure:"default_cost_of_debt"`
	DefaultTaxRate    float64 `yaml:"default_tax_rate" mapstructure:"default_tax_rate"`
	MinTaxRate        float64 `yaml:"min_tax_rate" mapstructure:"min_tax_rate"`
	MaxTaxRate        float64 `yaml:"max_tax_rate" mapstructure:"max_tax_rate"`
}

// LBOConfig holds the sponsor returns assumptions.
type LBOConfig struct {
	Leverage      float64   `yaml:"leverage" mapstructure:"leverage"`
	PaydownPct    float64   `yaml:"paydown_pct" mapstructure:"paydown_pct"`
	HoldYears     int       `yaml:"hold_years" mapstructure:"hold_years"`
	MaxHoldYears  int       `yaml:"max_hold_years" mapstructure:"max_hold_years"`
	GrowthRates   []float64 `yaml:"growth_rates" mapstructure:"growth_rates"`
	ExitMultiples []float64 `yaml:"exit_multiples" mapstructure:"exit_multiples"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VALUATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("source.rate_per_sec", 0)
	v.SetDefault("source.burst", 1)

	v.SetDefault("peers.universe_path", "")
	v.SetDefault("peers.oversample_factor", 3)

	v.SetDefault("comps.max_peers", 10)
	v.SetDefault("comps.concurrency", 8)
	v.SetDefault("comps.band_low_factor", 0.2)
	v.SetDefault("comps.band_high_factor", 5.0)

	v.SetDefault("deal.offer_premium_pct", 30.0)
	v.SetDefault("deal.cash_pct", 50.0)
	v.SetDefault("deal.stock_pct", 50.0)
	v.SetDefault("deal.cost_synergy_pct", 10.0)
	v.SetDefault("deal.revenue_synergy_pct", 2.0)
	v.SetDefault("deal.tax_rate_pct", 25.0)
	v.SetDefault("deal.cost_of_debt_pct", 5.0)
	v.SetDefault("deal.transaction_fee_pct", 2.0)

	v.SetDefault("synergy.discount_rate", 0.10)
	v.SetDefault("synergy.sga_fallback_pct", 5.0)
	v.SetDefault("synergy.phase_in", []float64{0.33, 0.66, 1.0})
	v.SetDefault("synergy.schedule_years", 5)

	v.SetDefault("credit.paydown_pct_of_ebitda", 40.0)
	v.SetDefault("credit.paydown_max_years", 10)
	v.SetDefault("credit.leverage_warning", 5.0)

	v.SetDefault("football.comps_low_factor", 0.8)
	v.SetDefault("football.comps_high_factor", 1.2)
	v.SetDefault("football.dcf_low_wacc", 0.12)
	v.SetDefault("football.dcf_low_growth", 0.02)
	v.SetDefault("football.dcf_high_wacc", 0.08)
	v.SetDefault("football.dcf_high_growth", 0.04)

	v.SetDefault("dcf.growth", 0.05)
	v.SetDefault("dcf.terminal_growth", 0.025)
	v.SetDefault("dcf.discount_rate", 0.10)
	v.SetDefault("dcf.years", 5)
	v.SetDefault("dcf.max_years", 50)
	v.SetDefault("dcf.sensitivity_step", 0.01)
	v.SetDefault("dcf.sensitivity_steps", 2)
	v.SetDefault("dcf.reverse_low", -0.10)
	v.SetDefault("dcf.reverse_high", 0.40)
	v.SetDefault("dcf.reverse_tolerance", 1e-6)
	v.SetDefault("dcf.reverse_max_iter", 200)
	v.SetDefault("dcf.monte_carlo.samples", 10000)
	v.SetDefault("dcf.monte_carlo.growth_std_dev", 0.03)
	v.SetDefault("dcf.monte_carlo.discount_std_dev", 0.015)
	v.SetDefault("dcf.monte_carlo.max_price_multiple", 20.0)
	v.SetDefault("dcf.monte_carlo.seed", 42)

	v.SetDefault("wacc.risk_free_rate", 0.045)
	v.SetDefault("wacc.equity_risk_premium", 0.055)
	v.SetDefault("wacc.default_beta", 1.0)
	v.SetDefault("wacc.default_cost_of_debt", 0.06)
	v.SetDefault("wacc.default_tax_rate", 0.21)
	v.SetDefault("wacc.min_tax_rate", 0.0)
	v.SetDefault("wacc.max_tax_rate", 0.50)

	v.SetDefault("lbo.leverage", 5.0)
	v.SetDefault("lbo.paydown_pct", 0.30)
	v.SetDefault("lbo.hold_years", 5)
	v.SetDefault("lbo.max_hold_years", 30)
	v.SetDefault("lbo.growth_rates", []float64{0.05, 0.08, 0.12})
	v.SetDefault("lbo.exit_multiples", []float64{})
}

// Validate checks the settings a command mode depends on. Every mode gets
// the analysis checks; "serve" additionally checks the listener.
func (c *Config) Validate(mode string) error {
	var errs []string

	if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Comps.MaxPeers <= 0 {
		errs = append(errs, "comps.max_peers must be > 0")
	}
	if c.Comps.Concurrency <= 0 {
		errs = append(errs, "comps.concurrency must be > 0")
	}
	if c.Comps.BandLowFactor < 0 || c.Comps.BandHighFactor < c.Comps.BandLowFactor {
		errs = append(errs, "comps band factors must satisfy 0 <= low <= high")
	}
	if c.Peers.OversampleFactor < 1 {
		errs = append(errs, "peers.oversample_factor must be >= 1")
	}
	if math.Abs(c.Deal.CashPct+c.Deal.StockPct-100) > MixTolerance {
		errs = append(errs, fmt.Sprintf("deal.cash_pct + deal.stock_pct must equal 100, got %.2f", c.Deal.CashPct+c.Deal.StockPct))
	}
	if c.Synergy.DiscountRate <= 0 {
		errs = append(errs, "synergy.discount_rate must be > 0")
	}
	if c.Credit.PaydownMaxYears <= 0 {
		errs = append(errs, "credit.paydown_max_years must be > 0")
	}
	if c.DCF.Years <= 0 {
		errs = append(errs, "dcf.years must be > 0")
	}
	if c.DCF.MaxYears > 0 && c.DCF.Years > c.DCF.MaxYears {
		errs = append(errs, fmt.Sprintf("dcf.years must be <= dcf.max_years (%d)", c.DCF.MaxYears))
	}
	if c.DCF.DiscountRate <= c.DCF.TerminalGrowth {
		errs = append(errs, "dcf.discount_rate must exceed dcf.terminal_growth")
	}
	if c.DCF.SensitivitySteps < 0 {
		errs = append(errs, "dcf.sensitivity_steps must be >= 0")
	}
	if c.DCF.ReverseHigh <= c.DCF.ReverseLow {
		errs = append(errs, "dcf.reverse_high must exceed dcf.reverse_low")
	}
	if c.DCF.MonteCarlo.Samples <= 0 {
		errs = append(errs, "dcf.monte_carlo.samples must be > 0")
	}
	if c.DCF.MonteCarlo.GrowthStdDev < 0 || c.DCF.MonteCarlo.DiscountStdDev < 0 {
		errs = append(errs, "dcf.monte_carlo std devs must be >= 0")
	}
	if c.WACC.MaxTaxRate < c.WACC.MinTaxRate {
		errs = append(errs, "wacc.max_tax_rate must be >= wacc.min_tax_rate")
	}
	if c.LBO.HoldYears <= 0 {
		errs = append(errs, "lbo.hold_years must be > 0")
	}
	if c.LBO.MaxHoldYears > 0 && c.LBO.HoldYears > c.LBO.MaxHoldYears {
		errs = append(errs, fmt.Sprintf("lbo.hold_years must be <= lbo.max_hold_years (%d)", c.LBO.MaxHoldYears))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
