package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/valuation-cli/internal/deal"
)

var mergerCmd = &cobra.Command{
	Use:   "merger",
	Short: "Build a merger pro forma with accretion/dilution",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := initService(cmd)
		if err != nil {
			return err
		}

		acquirer, _ := cmd.Flags().GetString("acquirer")
		target, _ := cmd.Flags().GetString("target")

		a := deal.FromConfig(cfg.Deal)
		overrides := map[string]*float64{
			"premium":         &a.OfferPremiumPct,
			"cash-pct":        &a.CashPct,
			"stock-pct":       &a.StockPct,
			"cost-synergy":    &a.CostSynergyPct,
			"rev-synergy":     &a.RevenueSynergyPct,
			"tax-rate":        &a.TaxRatePct,
			"cost-of-debt":    &a.CostOfDebtPct,
			"transaction-fee": &a.TransactionFeePct,
		}
		for name, dst := range overrides {
			if v := optionalFloat(cmd, name); v != nil {
				*dst = *v
			}
		}
		// A lone cash override implies the stock remainder and vice versa.
		switch {
		case cmd.Flags().Changed("cash-pct") && !cmd.Flags().Changed("stock-pct"):
			a.StockPct = 100 - a.CashPct
		case cmd.Flags().Changed("stock-pct") && !cmd.Flags().Changed("cash-pct"):
			a.CashPct = 100 - a.StockPct
		}

		res, err := svc.Merger(cmd.Context(), acquirer, target, a)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	mergerCmd.Flags().String("acquirer", "", "acquirer ticker")
	mergerCmd.Flags().String("target", "", "target ticker")
	mergerCmd.Flags().Float64("premium", 0, "offer premium over target price, percent")
	mergerCmd.Flags().Float64("cash-pct", 0, "cash share of consideration, percent")
	mergerCmd.Flags().Float64("stock-pct", 0, "stock share of consideration, percent")
	mergerCmd.Flags().Float64("cost-synergy", 0, "cost synergies, percent of target SG&A")
	mergerCmd.Flags().Float64("rev-synergy", 0, "revenue synergies, percent of target revenue")
	mergerCmd.Flags().Float64("tax-rate", 0, "tax rate, percent")
	mergerCmd.Flags().Float64("cost-of-debt", 0, "pre-tax cost of new debt, percent")
	mergerCmd.Flags().Float64("transaction-fee", 0, "transaction fees, percent of purchase price")
	_ = mergerCmd.MarkFlagRequired("acquirer")
	_ = mergerCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(mergerCmd)
}
