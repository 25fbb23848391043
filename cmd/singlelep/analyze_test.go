// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/singlelep/internal/store"
	"github.com/pdiddy/singlelep/pkg/types"
)

const dataEvents = `events:
  - run: 1
    event: 10
    muons:
      - p4: {pt: 40, eta: 0.5, phi: 1.0, energy: 45}
        charge: 1
        is_global: true
        global_track: {px: 40, normalized_chi2: 2, valid_muon_hits: 3}
        inner_track: {px: 40, valid_pixel_hits: 2, tracker_layers: 8}
    vertices:
      offlineSlimmedPrimaryVertices:
        - position: {z: 0.1}
    rho:
      fixedGridRhoAll: 8
    trigger_objects:
      selectedPatTrigger: []
    jets:
      slimmedJetsAK8: []
  - run: 1
    event: 11
`

// newAnalyzeCmd returns a fresh command carrying the analyze flags so tests
// do not share flag state.
func newAnalyzeCmd(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	fresh := &cobra.Command{Use: "analyze"}
	fresh.Flags().String("out", "features.yaml", "")
	fresh.Flags().Bool("mc", false, "")
	fresh.Flags().Bool("full-history", true, "")
	fresh.Flags().String("data-type", "None", "")
	fresh.Flags().Int("workers", 1, "")
	fresh.Flags().Bool("store", false, "")
	fresh.Flags().String("db", "features", "")
	for name, value := range flags {
		require.NoError(t, fresh.Flags().Set(name, value))
	}
	return fresh
}

func TestAnalyzeConfigFlags(t *testing.T) {
	cmd := newAnalyzeCmd(t, map[string]string{
		"mc":        "true",
		"data-type": "M",
		"workers":   "0",
		"db":        "elsewhere",
	})
	cfg, err := analyzeConfig(cmd)
	require.NoError(t, err)
	assert.True(t, cfg.Calc.IsMC)
	assert.True(t, cfg.Calc.KeepFullMCHistory, "unset flag keeps the default")
	assert.Equal(t, "M", cfg.Calc.DataType)
	assert.Equal(t, 1, cfg.Workers, "workers is at least one")
	assert.Equal(t, "elsewhere", cfg.Store.Dir)
}

func TestRunAnalyzeReportsFailures(t *testing.T) {
	dir := t.TempDir()
	events := filepath.Join(dir, "events.yaml")
	require.NoError(t, os.WriteFile(events, []byte(dataEvents), 0o644))
	out := filepath.Join(dir, "out", "features.json")
	db := filepath.Join(dir, "db")

	cmd := newAnalyzeCmd(t, map[string]string{
		"out":     out,
		"store":   "true",
		"db":      db,
		"workers": "2",
	})
	err := runAnalyze(cmd, []string{events})
	require.Error(t, err, "second event has no vertex collection")
	assert.Contains(t, err.Error(), "1 event(s) failed analysis")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"muPt": [`)

	s, err := store.NewStore(types.StoreConfig{Dir: db})
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, events, runs[0].Source)
	assert.Equal(t, 1, runs[0].Events)
}
