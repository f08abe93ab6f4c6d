package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"comps", "merger", "dcf", "football", "lbo", "peers", "serve", "version"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "valuation-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("snapshots"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestMergerCommand_Flags(t *testing.T) {
	for _, name := range []string{"acquirer", "target", "premium", "cash-pct", "stock-pct", "tax-rate"} {
		assert.NotNil(t, mergerCmd.Flags().Lookup(name), "merger should have --%s flag", name)
	}
}

func TestCompsAndFootballShareFlags(t *testing.T) {
	for _, c := range []string{"max-peers", "min-market-cap", "max-market-cap", "vertical"} {
		assert.NotNil(t, compsCmd.Flags().Lookup(c))
		assert.NotNil(t, footballCmd.Flags().Lookup(c))
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSnapshots(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snaps.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"ticker":"MSFT","sector":"Technology","price":400,"shares_outstanding":7400,
		 "ebitda":130000,"net_income":88000,"free_cash_flow":[70000]},
		{"ticker":"ORCL","sector":"Technology","price":120,"market_cap":330000,"ev_ebitda":20}
	]`), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestPeersCommand(t *testing.T) {
	out, err := execute(t, "peers", "MSFT", "--sector", "technology", "--max-peers", "2")
	require.NoError(t, err)

	var res struct {
		Peers []string `json:"peers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"AAPL", "GOOGL", "META", "NVDA", "ADBE", "CRM"}, res.Peers)
}

func TestLBOCommand(t *testing.T) {
	out, err := execute(t, "lbo", "MSFT", "--snapshots", writeSnapshots(t))
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "MSFT", res["ticker"])
	assert.Len(t, res["grid"], 3)
}

func TestCompsCommand_UnknownTicker(t *testing.T) {
	_, err := execute(t, "comps", "NOPE", "--snapshots", writeSnapshots(t))
	assert.Error(t, err)
}
