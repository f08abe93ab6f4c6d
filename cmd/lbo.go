package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/valuation-cli/internal/lbo"
)

var lboCmd = &cobra.Command{
	Use:   "lbo <ticker>",
	Short: "Sponsor IRR / MOIC grid for a leveraged buyout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initService(cmd)
		if err != nil {
			return err
		}

		a := lbo.AssumptionsFromConfig(cfg.LBO)
		if v := optionalFloat(cmd, "leverage"); v != nil {
			a.Leverage = *v
		}
		if cmd.Flags().Changed("hold-years") {
			a.HoldYears, _ = cmd.Flags().GetInt("hold-years")
		}
		if cmd.Flags().Changed("exit-multiple") {
			a.ExitMultiples, _ = cmd.Flags().GetFloat64Slice("exit-multiple")
		}

		res, err := svc.LBO(cmd.Context(), args[0], a)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	lboCmd.Flags().Float64("leverage", 0, "entry debt as a multiple of EBITDA")
	lboCmd.Flags().Int("hold-years", 0, "holding period in years")
	lboCmd.Flags().Float64Slice("exit-multiple", nil, "exit EV/EBITDA multiples (default entry multiple x 0.8/1.0/1.2)")
	rootCmd.AddCommand(lboCmd)
}
