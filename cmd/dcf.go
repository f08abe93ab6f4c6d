package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/valuation-cli/internal/dcf"
)

var dcfCmd = &cobra.Command{
	Use:   "dcf <ticker>",
	Short: "Discounted cash flow valuation with sensitivity, reverse DCF and Monte Carlo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initService(cmd)
		if err != nil {
			return err
		}

		a := dcf.AssumptionsFromConfig(cfg.DCF)
		if v := optionalFloat(cmd, "growth"); v != nil {
			a.Growth = *v
		}
		if v := optionalFloat(cmd, "terminal-growth"); v != nil {
			a.TerminalGrowth = *v
		}
		if v := optionalFloat(cmd, "discount-rate"); v != nil {
			a.DiscountRate = *v
		}
		if cmd.Flags().Changed("years") {
			a.Years, _ = cmd.Flags().GetInt("years")
		}
		useWACC, _ := cmd.Flags().GetBool("use-wacc")
		skipMC, _ := cmd.Flags().GetBool("skip-monte-carlo")

		rep, err := svc.DCF(cmd.Context(), args[0], a, dcf.Options{UseWACC: useWACC, SkipMonteCarlo: skipMC})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), rep)
	},
}

func init() {
	dcfCmd.Flags().Float64("growth", 0, "annual FCF growth during projection (fraction)")
	dcfCmd.Flags().Float64("terminal-growth", 0, "perpetual growth after projection (fraction)")
	dcfCmd.Flags().Float64("discount-rate", 0, "discount rate (fraction)")
	dcfCmd.Flags().Int("years", 0, "projection years")
	dcfCmd.Flags().Bool("use-wacc", false, "discount at the company's CAPM WACC")
	dcfCmd.Flags().Bool("skip-monte-carlo", false, "skip the Monte Carlo distribution")
	rootCmd.AddCommand(dcfCmd)
}
