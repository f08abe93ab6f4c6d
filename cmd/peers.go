package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/valuation-cli/internal/analysis"
	"github.com/sells-group/valuation-cli/internal/peers"
)

var peersCmd = &cobra.Command{
	Use:   "peers <ticker>",
	Short: "List peer candidates from the curated universe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := analysis.NewResolver(cfg)
		if err != nil {
			return err
		}

		sector, _ := cmd.Flags().GetString("sector")
		industry, _ := cmd.Flags().GetString("industry")
		verticals, _ := cmd.Flags().GetStringSlice("vertical")
		maxPeers, _ := cmd.Flags().GetInt("max-peers")
		if maxPeers <= 0 {
			maxPeers = cfg.Comps.MaxPeers
		}

		list := resolver.Resolve(peers.Query{
			Ticker:    args[0],
			Sector:    sector,
			Industry:  industry,
			Verticals: verticals,
			MaxPeers:  maxPeers,
		})
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"ticker":           args[0],
			"universe_version": resolver.Universe().Version,
			"peers":            list,
		})
	},
}

func init() {
	peersCmd.Flags().String("sector", "", "target sector")
	peersCmd.Flags().String("industry", "", "target industry (drives vertical keywords)")
	peersCmd.Flags().StringSlice("vertical", nil, "force-include peer verticals")
	peersCmd.Flags().Int("max-peers", 0, "maximum peers (candidates are oversampled; default from config)")
	rootCmd.AddCommand(peersCmd)
}
