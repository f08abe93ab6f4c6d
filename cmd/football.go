package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/valuation-cli/internal/analysis"
	"github.com/sells-group/valuation-cli/internal/comps"
	"github.com/sells-group/valuation-cli/internal/model"
	"github.com/sells-group/valuation-cli/internal/source"
)

var footballCmd = &cobra.Command{
	Use:   "football <ticker>",
	Short: "Build a football-field valuation range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initService(cmd)
		if err != nil {
			return err
		}

		var prec *model.PrecedentData
		if path, _ := cmd.Flags().GetString("precedent"); path != "" {
			if prec, err = source.LoadPrecedent(path); err != nil {
				return err
			}
		}

		maxPeers, _ := cmd.Flags().GetInt("max-peers")
		verticals, _ := cmd.Flags().GetStringSlice("vertical")

		field, err := svc.Football(cmd.Context(), analysis.FootballRequest{
			Ticker: args[0],
			Comps: comps.Options{
				MaxPeers:     maxPeers,
				MinMarketCap: optionalFloat(cmd, "min-market-cap"),
				MaxMarketCap: optionalFloat(cmd, "max-market-cap"),
				Verticals:    verticals,
			},
			Precedent:  prec,
			OfferValue: optionalFloat(cmd, "offer-value"),
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), field)
	},
}

func init() {
	addCompsFlags(footballCmd)
	footballCmd.Flags().String("precedent", "", "precedent transactions JSON file")
	footballCmd.Flags().Float64("offer-value", 0, "offer equity value drawn as a reference line")
	rootCmd.AddCommand(footballCmd)
}
