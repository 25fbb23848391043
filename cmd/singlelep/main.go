// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the singlelep CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/singlelep/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the singlelep CLI.
var rootCmd = &cobra.Command{
	Use:   "singlelep",
	Short: "Per-event feature calculator for single-lepton analyses",
	Long: `singlelep turns reconstructed collision events into flat, named feature
records for single-lepton physics analyses: muon and electron kinematics,
identification and isolation, truth matching with ancestry, trigger matching,
jets and missing transverse energy.

Analysed runs can be kept in a local SQLite store and inspected or exported
later with the store subcommands.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./singlelep.yaml or ~/.config/singlelep/singlelep.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("singlelep")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "singlelep"))
		}
	}

	if err := bindEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindEnv maps every configuration key to a SINGLELEP_ environment variable,
// nested keys joined by underscores (calc.is_mc is SINGLELEP_CALC_IS_MC).
// Each key is registered with its default so that viper knows it even when no
// config file sets it.
func bindEnv() error {
	viper.SetEnvPrefix("SINGLELEP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	data, err := yaml.Marshal(types.DefaultPipelineConfig())
	if err != nil {
		return fmt.Errorf("marshaling defaults: %w", err)
	}
	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return fmt.Errorf("reading defaults: %w", err)
	}
	setDefaults("", defaults)
	return nil
}

func setDefaults(prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig returns the pipeline configuration: defaults, overlaid by the
// config file when one was read, overlaid by SINGLELEP_ environment variables.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
