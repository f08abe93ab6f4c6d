package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/valuation-cli/internal/comps"
)

var compsCmd = &cobra.Command{
	Use:   "comps <ticker>",
	Short: "Value a company against its trading peers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initService(cmd)
		if err != nil {
			return err
		}

		maxPeers, _ := cmd.Flags().GetInt("max-peers")
		verticals, _ := cmd.Flags().GetStringSlice("vertical")

		res, err := svc.Comps(cmd.Context(), args[0], comps.Options{
			MaxPeers:     maxPeers,
			MinMarketCap: optionalFloat(cmd, "min-market-cap"),
			MaxMarketCap: optionalFloat(cmd, "max-market-cap"),
			Verticals:    verticals,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

func addCompsFlags(c *cobra.Command) {
	c.Flags().Int("max-peers", 0, "maximum peers in the result (default from config)")
	c.Flags().Float64("min-market-cap", 0, "lower market-cap bound for peers")
	c.Flags().Float64("max-market-cap", 0, "upper market-cap bound for peers")
	c.Flags().StringSlice("vertical", nil, "force-include peer verticals (e.g. software_saas)")
}

func init() {
	addCompsFlags(compsCmd)
	rootCmd.AddCommand(compsCmd)
}
