// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// CollectionNames holds the labels used to fetch named collections from an
// Event.
type CollectionNames struct {
	// PrimaryVertices is the vertex collection; its first entry is the
	// reference for impact parameters.
	PrimaryVertices string `json:"pv_collection" yaml:"pv_collection" mapstructure:"pv_collection"`

	// GenParticles is the truth collection (simulation only).
	GenParticles string `json:"gen_particles" yaml:"gen_particles" mapstructure:"gen_particles"`

	// TriggerSummary is the trigger-object collection.
	TriggerSummary string `json:"trigger_summary" yaml:"trigger_summary" mapstructure:"trigger_summary"`

	// Rho is the ambient energy density used for electron isolation.
	Rho string `json:"rho" yaml:"rho" mapstructure:"rho"`

	// AK8Jets is the wide-cone jet collection.
	AK8Jets string `json:"ak8_jets" yaml:"ak8_jets" mapstructure:"ak8_jets"`
}

// TriggerConfig holds settings for matching the leading leptons to HLT
// objects.
type TriggerConfig struct {
	// ElectronFilter is the HLT filter label an electron trigger object must carry.
	ElectronFilter string `json:"electron_filter" yaml:"electron_filter" mapstructure:"electron_filter"`

	// MuonFilter is the HLT filter label a muon trigger object must carry.
	MuonFilter string `json:"muon_filter" yaml:"muon_filter" mapstructure:"muon_filter"`

	// MatchDeltaR is the maximum angular separation for a trigger match (default 0.5).
	MatchDeltaR float64 `json:"match_delta_r" yaml:"match_delta_r" mapstructure:"match_delta_r"`
}

// CalcConfig holds the settings fixed for a whole run of the feature
// calculator.
type CalcConfig struct {
	// IsMC enables truth matching and the hard-process table.
	IsMC bool `json:"is_mc" yaml:"is_mc" mapstructure:"is_mc"`

	// KeepFullMCHistory enables lepton truth matching and ancestry (default true).
	KeepFullMCHistory bool `json:"keep_full_mc_history" yaml:"keep_full_mc_history" mapstructure:"keep_full_mc_history"`

	// DataType is the primary dataset: E/Electron, M/Muon, All/ALL, or None.
	DataType string `json:"data_type" yaml:"data_type" mapstructure:"data_type"`

	// KeepPDGID lists the absolute species codes kept in the hard-process table.
	KeepPDGID []int `json:"keep_pdgid" yaml:"keep_pdgid" mapstructure:"keep_pdgid"`

	// KeepMomPDGID lists the absolute mother species codes kept in the
	// hard-process table. Checked before KeepPDGID.
	KeepMomPDGID []int `json:"keep_mom_pdgid" yaml:"keep_mom_pdgid" mapstructure:"keep_mom_pdgid"`

	// MatchDeltaR is the reco-truth match threshold (default 0.3).
	MatchDeltaR float64 `json:"match_delta_r" yaml:"match_delta_r" mapstructure:"match_delta_r"`

	// BTagThreshold is the CSV discriminator working point for AK4JetBTag.
	BTagThreshold float64 `json:"btag_threshold" yaml:"btag_threshold" mapstructure:"btag_threshold"`

	Collections CollectionNames `json:"collections" yaml:"collections" mapstructure:"collections"`
	Trigger     TriggerConfig   `json:"trigger" yaml:"trigger" mapstructure:"trigger"`
}

// DefaultCalcConfig returns the settings used when nothing is configured.
func DefaultCalcConfig() CalcConfig {
	return CalcConfig{
		KeepFullMCHistory: true,
		DataType:          "None",
		MatchDeltaR:       0.3,
		BTagThreshold:     0.890,
		Collections: CollectionNames{
			PrimaryVertices: "offlineSlimmedPrimaryVertices",
			GenParticles:    "prunedGenParticles",
			TriggerSummary:  "selectedPatTrigger",
			Rho:             "fixedGridRhoAll",
			AK8Jets:         "slimmedJetsAK8",
		},
		Trigger: TriggerConfig{
			ElectronFilter: "hltEle32WP85GsfTrackIsoFilter",
			MuonFilter:     "hltL3crIsoL1sMu20Eta2p1L1f0L2f20QL3f24QL3crIsoRhoFiltered0p15IterTrk02",
			MatchDeltaR:    0.5,
		},
	}
}

// Validate reports the first setting that cannot drive a run.
func (c CalcConfig) Validate() error {
	if c.MatchDeltaR <= 0 {
		return fmt.Errorf("match_delta_r must be positive, got %g", c.MatchDeltaR)
	}
	if c.Trigger.MatchDeltaR <= 0 {
		return fmt.Errorf("trigger.match_delta_r must be positive, got %g", c.Trigger.MatchDeltaR)
	}
	if c.Collections.PrimaryVertices == "" {
		return fmt.Errorf("collections.pv_collection is required")
	}
	if c.IsMC && c.Collections.GenParticles == "" {
		return fmt.Errorf("collections.gen_particles is required when is_mc is set")
	}
	return nil
}

// OutputFormat selects the feature file encoding.
type OutputFormat string

const (
	OutputYAML OutputFormat = "yaml"
	OutputJSON OutputFormat = "json"
)

// StoreConfig holds settings for the SQLite feature store.
type StoreConfig struct {
	// Dir is the directory holding features.db.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// PipelineConfig groups all configuration for an analyze run.
type PipelineConfig struct {
	Calc  CalcConfig  `json:"calc" yaml:"calc" mapstructure:"calc"`
	Store StoreConfig `json:"store" yaml:"store" mapstructure:"store"`

	// Workers is the number of events analysed concurrently (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// DefaultPipelineConfig returns the defaults for every stage.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Calc:    DefaultCalcConfig(),
		Store:   StoreConfig{Dir: "features"},
		Workers: 1,
	}
}
