// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"math"

	"go.yaml.in/yaml/v3"
)

// Vec4 is a four-momentum in collider coordinates.
type Vec4 struct {
	Pt     float64 `json:"pt" yaml:"pt"`
	Eta    float64 `json:"eta" yaml:"eta"`
	Phi    float64 `json:"phi" yaml:"phi"`
	Energy float64 `json:"energy" yaml:"energy"`
}

// Px returns the x component of the momentum.
func (v Vec4) Px() float64 { return v.Pt * math.Cos(v.Phi) }

// Py returns the y component of the momentum.
func (v Vec4) Py() float64 { return v.Pt * math.Sin(v.Phi) }

// Pz returns the longitudinal component of the momentum.
func (v Vec4) Pz() float64 { return v.Pt * math.Sinh(v.Eta) }

// Scale returns v with pt and energy multiplied by f.
func (v Vec4) Scale(f float64) Vec4 {
	return Vec4{Pt: v.Pt * f, Eta: v.Eta, Phi: v.Phi, Energy: v.Energy * f}
}

// Point is a position in detector coordinates (cm).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Vertex is a reconstructed primary vertex.
type Vertex struct {
	Position Point `json:"position" yaml:"position"`
	NTracks  int   `json:"ntracks,omitempty" yaml:"ntracks,omitempty"`
}

// Track is a fitted track with its reference point, momentum at that point,
// and hit-pattern summary.
type Track struct {
	// Ref is the point of closest approach to the beam line.
	Ref Point `json:"ref" yaml:"ref"`

	Px float64 `json:"px" yaml:"px"`
	Py float64 `json:"py" yaml:"py"`
	Pz float64 `json:"pz" yaml:"pz"`

	NormalizedChi2 float64 `json:"normalized_chi2" yaml:"normalized_chi2"`

	ValidMuonHits    int `json:"valid_muon_hits" yaml:"valid_muon_hits"`
	ValidPixelHits   int `json:"valid_pixel_hits" yaml:"valid_pixel_hits"`
	TrackerLayers    int `json:"tracker_layers" yaml:"tracker_layers"`
	MissingInnerHits int `json:"missing_inner_hits" yaml:"missing_inner_hits"`
}

// Pt returns the transverse momentum of the track.
func (t Track) Pt() float64 { return math.Hypot(t.Px, t.Py) }

// Muon is a selected reconstructed muon.
type Muon struct {
	P4     Vec4 `json:"p4" yaml:"p4"`
	Charge int  `json:"charge" yaml:"charge"`

	IsGlobal  bool `json:"is_global" yaml:"is_global"`
	IsTracker bool `json:"is_tracker" yaml:"is_tracker"`
	IsPF      bool `json:"is_pf" yaml:"is_pf"`

	// GlobalTrack and InnerTrack are nil when the track was not stored.
	GlobalTrack *Track `json:"global_track,omitempty" yaml:"global_track,omitempty"`
	InnerTrack  *Track `json:"inner_track,omitempty" yaml:"inner_track,omitempty"`
	// BestTrack defaults to GlobalTrack when absent.
	BestTrack *Track `json:"best_track,omitempty" yaml:"best_track,omitempty"`

	MatchedStations int `json:"matched_stations" yaml:"matched_stations"`

	// PF isolation sums in a cone of 0.4.
	ChargedHadronIso   float64 `json:"ch_iso" yaml:"ch_iso"`
	NeutralHadronIso   float64 `json:"nh_iso" yaml:"nh_iso"`
	PhotonIso          float64 `json:"photon_iso" yaml:"photon_iso"`
	PUChargedHadronIso float64 `json:"pu_iso" yaml:"pu_iso"`
}

// Electron is a selected reconstructed electron.
type Electron struct {
	P4 Vec4 `json:"p4" yaml:"p4"`
	// EcalDrivenP4 is the momentum estimated from the ECAL supercluster.
	EcalDrivenP4 Vec4 `json:"ecal_driven_p4" yaml:"ecal_driven_p4"`
	Charge       int  `json:"charge" yaml:"charge"`

	GsfTrack *Track `json:"gsf_track,omitempty" yaml:"gsf_track,omitempty"`

	SuperClusterEta float64 `json:"sc_eta" yaml:"sc_eta"`

	ChargedHadronIso float64 `json:"ch_iso" yaml:"ch_iso"`
	NeutralHadronIso float64 `json:"nh_iso" yaml:"nh_iso"`
	PhotonIso        float64 `json:"photon_iso" yaml:"photon_iso"`

	ConvDist float64 `json:"conv_dist" yaml:"conv_dist"`
	ConvDcot float64 `json:"conv_dcot" yaml:"conv_dcot"`

	PassConversionVeto bool `json:"pass_conversion_veto" yaml:"pass_conversion_veto"`
	ChargeConsistent   bool `json:"charge_consistent" yaml:"charge_consistent"`
	IsEB               bool `json:"is_eb" yaml:"is_eb"`
	IsEE               bool `json:"is_ee" yaml:"is_ee"`
	IsEBEEGap          bool `json:"is_ebee_gap" yaml:"is_ebee_gap"`

	DeltaEtaSCTrack    float64 `json:"deta_sc_track" yaml:"deta_sc_track"`
	DeltaPhiSCTrack    float64 `json:"dphi_sc_track" yaml:"dphi_sc_track"`
	SigmaIetaIeta      float64 `json:"sigma_ieta_ieta" yaml:"sigma_ieta_ieta"`
	HadronicOverEm     float64 `json:"hadronic_over_em" yaml:"hadronic_over_em"`
	DB                 float64 `json:"db" yaml:"db"`
	EcalEnergy         float64 `json:"ecal_energy" yaml:"ecal_energy"`
	ESuperClusterOverP float64 `json:"e_sc_over_p" yaml:"e_sc_over_p"`
}

// Jet is a reconstructed jet before energy corrections.
type Jet struct {
	P4 Vec4 `json:"p4" yaml:"p4"`

	// JEC is the correction factor provided upstream. Zero means 1.
	JEC float64 `json:"jec,omitempty" yaml:"jec,omitempty"`

	CSV float64 `json:"csv" yaml:"csv"`

	ChargedEmEnergy     float64 `json:"charged_em_energy" yaml:"charged_em_energy"`
	ChargedHadronEnergy float64 `json:"charged_hadron_energy" yaml:"charged_hadron_energy"`
	NeutralEmEnergy     float64 `json:"neutral_em_energy" yaml:"neutral_em_energy"`
	NeutralHadronEnergy float64 `json:"neutral_hadron_energy" yaml:"neutral_hadron_energy"`
}

// MET is the missing transverse momentum of the event.
type MET struct {
	P4 Vec4 `json:"p4" yaml:"p4"`
	// Corrected is the type-1 corrected MET supplied upstream, if any.
	Corrected *Vec4 `json:"corrected,omitempty" yaml:"corrected,omitempty"`
}

// GenParticle is a generator-level particle. Mother indexes into the same
// collection; -1 means no mother.
type GenParticle struct {
	PdgID  int  `json:"pdg_id" yaml:"pdg_id"`
	Status int  `json:"status" yaml:"status"`
	P4     Vec4 `json:"p4" yaml:"p4"`
	Mother int  `json:"mother" yaml:"mother"`
}

// NoMother marks a GenParticle without a mother reference.
const NoMother = -1

// UnmarshalYAML defaults Mother to NoMother so that an omitted key does not
// silently point at the first particle of the collection.
func (p *GenParticle) UnmarshalYAML(node *yaml.Node) error {
	type plain GenParticle
	raw := plain{Mother: NoMother}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = GenParticle(raw)
	return nil
}

// UnmarshalJSON applies the same Mother default as UnmarshalYAML.
func (p *GenParticle) UnmarshalJSON(data []byte) error {
	type plain GenParticle
	raw := plain{Mother: NoMother}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = GenParticle(raw)
	return nil
}

// TriggerObject is an HLT object with the filter labels it passed.
type TriggerObject struct {
	Eta          float64  `json:"eta" yaml:"eta"`
	Phi          float64  `json:"phi" yaml:"phi"`
	FilterLabels []string `json:"filter_labels" yaml:"filter_labels"`
}

// Event holds the per-event inputs: objects already selected upstream plus
// named collections fetched by label.
type Event struct {
	Run   int64 `json:"run,omitempty" yaml:"run,omitempty"`
	Lumi  int64 `json:"lumi,omitempty" yaml:"lumi,omitempty"`
	Event int64 `json:"event,omitempty" yaml:"event,omitempty"`

	Muons        []Muon     `json:"muons,omitempty" yaml:"muons,omitempty"`
	Electrons    []Electron `json:"electrons,omitempty" yaml:"electrons,omitempty"`
	SelectedJets []Jet      `json:"selected_jets,omitempty" yaml:"selected_jets,omitempty"`
	MET          *MET       `json:"met,omitempty" yaml:"met,omitempty"`

	Vertices       map[string][]Vertex        `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	GenParticles   map[string][]GenParticle   `json:"gen_particles,omitempty" yaml:"gen_particles,omitempty"`
	TriggerObjects map[string][]TriggerObject `json:"trigger_objects,omitempty" yaml:"trigger_objects,omitempty"`
	Rho            map[string]float64         `json:"rho,omitempty" yaml:"rho,omitempty"`
	Jets           map[string][]Jet           `json:"jets,omitempty" yaml:"jets,omitempty"`
}
