// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/singlelep/internal/calc"
	"github.com/pdiddy/singlelep/internal/eventio"
	"github.com/pdiddy/singlelep/internal/store"
	"github.com/pdiddy/singlelep/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <events-file>",
	Short: "Compute feature records for every event in a file",
	Long: `Analyze reads reconstructed events from a YAML or JSON event file,
computes one feature record per event, and writes them to a feature file.
The output encoding follows the extension of --out.

With --store the records are also kept in the SQLite feature store under a
new run, so they can be listed and exported later.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := analyzeConfig(cmd)
	if err != nil {
		return err
	}

	c, err := calc.NewCalculator(cfg.Calc)
	if err != nil {
		return err
	}

	source := args[0]
	events, err := eventio.ReadEventFile(source)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, summary := calc.AnalyzeAll(ctx, c, events, cfg.Workers, os.Stdout)
	fmt.Fprintf(os.Stdout, "\n%d analyzed, %d failed, %d skipped\n",
		summary.Analyzed, summary.Failed, summary.Skipped)

	out, _ := cmd.Flags().GetString("out")
	if err := eventio.WriteFeatureFile(out, eventio.FeatureFile{Source: source, Events: results}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", out)

	if keep, _ := cmd.Flags().GetBool("store"); keep {
		if err := storeResults(ctx, cfg, source, results); err != nil {
			return err
		}
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d event(s) failed analysis", summary.Failed)
	}
	return nil
}

func storeResults(ctx context.Context, cfg types.PipelineConfig, source string, results []calc.EventFeatures) error {
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	runID, err := s.BeginRun(ctx, source, cfg.Calc)
	if err != nil {
		return err
	}
	summary, err := s.WriteAll(ctx, runID, results, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d event(s) failed storing", summary.Failed)
	}
	return nil
}

// analyzeConfig loads the pipeline configuration and applies any flags the
// user set explicitly.
func analyzeConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("mc") {
		cfg.Calc.IsMC, _ = flags.GetBool("mc")
	}
	if flags.Changed("full-history") {
		cfg.Calc.KeepFullMCHistory, _ = flags.GetBool("full-history")
	}
	if flags.Changed("data-type") {
		cfg.Calc.DataType, _ = flags.GetString("data-type")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("db") {
		cfg.Store.Dir, _ = flags.GetString("db")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func init() {
	analyzeCmd.Flags().String("out", "features.yaml", "feature file to write (.yaml, .yml or .json)")
	analyzeCmd.Flags().Bool("mc", false, "input is simulation: enable truth matching and the gen table")
	analyzeCmd.Flags().Bool("full-history", true, "match leptons to truth and record their ancestry (simulation only)")
	analyzeCmd.Flags().String("data-type", "None", "primary dataset: E, Electron, M, Muon, All or None")
	analyzeCmd.Flags().Int("workers", 1, "number of events analysed concurrently")
	analyzeCmd.Flags().Bool("store", false, "also keep the records in the SQLite feature store")
	analyzeCmd.Flags().String("db", "features", "feature store directory (contains features.db)")

	rootCmd.AddCommand(analyzeCmd)
}
