package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"DefiPrime/internal/domain/models"

	"DefiPrime/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsApply(t *testing.T) {
	cfg, err := config.Parse([]byte("entities: [a]\n"))
	require.NoError(t, err)

	f := &flags{entities: []string{"p1", "p2"}, sinkType: "csv", sinkPath: "out.csv", port: 9090}
	require.NoError(t, f.apply(cfg))
	assert.Equal(t, []string{"p1", "p2"}, cfg.Entities)
	assert.Equal(t, "csv", cfg.Sink.Type)
	assert.Equal(t, "out.csv", cfg.Sink.Path)
	assert.Equal(t, 9090, cfg.Server.Port)

	f = &flags{sinkType: "json"}
	cfg.Sink.Path = ""
	assert.Error(t, f.apply(cfg))
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["serve"])
	assert.True(t, names["tvl"])
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

// writeWorkspace writes a config with no entities and a file source holding bodies.
func writeWorkspace(t *testing.T, bodies map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for id, body := range bodies {
		require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), []byte(body), 0o644))
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	y := "log: {level: error, output: stderr}\nsource: {type: file, dir: " + dir + "}\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(y), 0o644))

	t.Setenv("ENTITIES", "")
	t.Setenv("TVL_PROTOCOLS", "")
	t.Setenv("SINK_TYPE", "")
	t.Setenv("SINK_PATH", "")
	t.Setenv("SOURCE_TYPE", "")
	return cfgPath
}

func TestRunEntitiesFromFlagOnly(t *testing.T) {
	cfgPath := writeWorkspace(t, map[string]string{
		"p1": `{"data":[{"timestamp":"2024-01-01T00:00:00Z","apy":4,"tvlUsd":100}]}`,
	})
	out := filepath.Join(t.TempDir(), "composite.json")

	root := newRootCmd()
	root.SetArgs([]string{"run", "--config", cfgPath, "--entities", "p1", "--sink", "json", "--out", out})
	require.NoError(t, root.Execute())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var rows []models.CompositeRow
	require.NoError(t, json.Unmarshal(b, &rows))
	require.Len(t, rows, 1)
	assert.InDelta(t, 4.0, rows[0].CompositeRate, 1e-9)
}

func TestRunWithoutAnyEntities(t *testing.T) {
	cfgPath := writeWorkspace(t, nil)

	root := newRootCmd()
	root.SetArgs([]string{"run", "--config", cfgPath})
	assert.Error(t, root.Execute())
}

func TestTVLProtocolsFromArgs(t *testing.T) {
	cfgPath := writeWorkspace(t, map[string]string{
		"aave":  `{"tvl":[{"date":1704067200,"totalLiquidityUSD":10},{"date":1704153600,"totalLiquidityUSD":20}]}`,
		"curve": `{"tvl":[{"date":1704153600,"totalLiquidityUSD":7}]}`,
	})
	out := filepath.Join(t.TempDir(), "tvl.csv")

	root := newRootCmd()
	root.SetArgs([]string{"tvl", "aave", "curve", "--config", cfgPath, "--sink", "csv", "--out", out})
	require.NoError(t, root.Execute())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "date,aave,curve\n2024-01-02,20,7\n", string(b))
}
