package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/valuation-cli/internal/analysis"
	"github.com/sells-group/valuation-cli/internal/server"
	"github.com/sells-group/valuation-cli/internal/source"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		resolver, err := analysis.NewResolver(cfg)
		if err != nil {
			return err
		}

		// Snapshot files given at startup back requests that omit them.
		var fallback source.Source
		mem, err := loadSnapshots(ctx, cmd)
		if err != nil {
			return err
		}
		if mem.Len() > 0 {
			fallback = mem
		}

		return server.New(cfg, resolver, fallback).ListenAndServe(ctx, cfg.Server.Port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
