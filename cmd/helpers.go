package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-cli/internal/analysis"
	"github.com/sells-group/valuation-cli/internal/source"
)

// loadSnapshots reads every --snapshots file into one in-memory source.
func loadSnapshots(ctx context.Context, cmd *cobra.Command) (*source.Memory, error) {
	paths, _ := cmd.Flags().GetStringSlice("snapshots")
	mem := source.NewMemory()
	for _, p := range paths {
		snaps, err := source.LoadFile(ctx, p)
		if err != nil {
			return nil, eris.Wrapf(err, "load snapshots %s", p)
		}
		for _, s := range snaps {
			mem.Add(s)
		}
		zap.L().Debug("loaded snapshots", zap.String("path", p), zap.Int("count", len(snaps)))
	}
	return mem, nil
}

// initService validates config and builds an analysis service over the
// command's snapshot files.
func initService(cmd *cobra.Command) (*analysis.Service, error) {
	if err := cfg.Validate("analyze"); err != nil {
		return nil, err
	}
	mem, err := loadSnapshots(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}
	if mem.Len() == 0 {
		return nil, eris.New("no snapshots loaded; pass --snapshots")
	}
	resolver, err := analysis.NewResolver(cfg)
	if err != nil {
		return nil, err
	}
	return analysis.New(cfg, resolver, mem), nil
}

// optionalFloat returns the flag value only when the user set it.
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil
	}
	return &v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
