// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/singlelep/internal/calc"
	"github.com/pdiddy/singlelep/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the feature store (runs, show, export)",
	Long: `Store reads the local SQLite feature store written by analyze --store.
Use subcommands to list runs, show one event or one feature column, or
export a run to a feature file.`,
}

// --- runs subcommand ---

var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	Args:  cobra.NoArgs,
	RunE:  runStoreRuns,
}

func runStoreRuns(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs stored.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-6s  %s\n", "Run", "Started", "Events", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-6d  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Events, r.Source)
	}
	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

// --- show subcommand ---

var storeShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one stored event or one feature across a run",
	Long: `Show prints the features of a single event (--event) or the values
of a single feature across every event of the run (--column).`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreShow,
}

func runStoreShow(cmd *cobra.Command, args []string) error {
	column, _ := cmd.Flags().GetString("column")
	index, _ := cmd.Flags().GetInt("event")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	if column != "" {
		entries, err := s.Column(ctx, args[0], column)
		if err != nil {
			return err
		}
		return formatColumn(column, entries, jsonOutput)
	}

	ef, err := s.Event(ctx, args[0], index)
	if err != nil {
		return err
	}
	return formatEvent(ef, jsonOutput)
}

func formatEvent(ef calc.EventFeatures, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(ef)
	}

	fmt.Fprintf(os.Stdout, "Event %d (run %d, lumi %d, event %d)\n\n", ef.Index, ef.Run, ef.Lumi, ef.Event)
	fmt.Fprintf(os.Stdout, "%-28s  %-7s  %s\n", "Feature", "Kind", "Value")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
	for _, name := range ef.Features.Names() {
		v, _ := ef.Features.Get(name)
		fmt.Fprintf(os.Stdout, "%-28s  %-7s  %v\n", name, v.Kind, v.Any())
	}
	fmt.Fprintf(os.Stdout, "\n%d features\n", ef.Features.Len())
	return nil
}

func formatColumn(name string, entries []store.ColumnEntry, jsonOutput bool) error {
	if jsonOutput {
		out := make(map[int]any, len(entries))
		for _, e := range entries {
			out[e.EventIndex] = e.Value.Any()
		}
		return printJSON(out)
	}

	if len(entries) == 0 {
		fmt.Printf("No values for %s.\n", name)
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %s\n", "Event", name)
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 40))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-6d  %v\n", e.EventIndex, e.Value.Any())
	}
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored run to a YAML or JSON feature file",
	Long: `Export writes every event of a stored run to a feature file in the
same layout analyze produces. The encoding follows the extension of --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Export(context.Background(), args[0], out); err != nil {
		return err
	}
	fmt.Printf("Exported run %s to %s\n", args[0], out)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("db") {
		cfg.Store.Dir, _ = cmd.Flags().GetString("db")
	}
	return store.NewStore(cfg.Store)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("db", "features", "feature store directory (contains features.db)")

	storeRunsCmd.Flags().Bool("json", false, "output runs as JSON")

	storeShowCmd.Flags().Int("event", 0, "event index to show")
	storeShowCmd.Flags().String("column", "", "show one feature across all events instead of one event")
	storeShowCmd.Flags().Bool("json", false, "output as JSON")

	storeExportCmd.Flags().String("out", "export.yaml", "file to write (.yaml, .yml or .json)")

	storeCmd.AddCommand(storeRunsCmd)
	storeCmd.AddCommand(storeShowCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
