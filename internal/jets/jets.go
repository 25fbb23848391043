// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jets derives features from wide-cone and selected jets and from
// the missing transverse momentum. Energy corrections and b-tagging are
// delegated to collaborators.
package jets

import (
	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/pkg/types"
)

// Sentinels for absent data.
const (
	NoRCN = -999.0
	NoMET = -9999.0
)

// Corrector applies energy corrections.
type Corrector interface {
	// CorrectJet returns the corrected momentum of j. wide selects the
	// wide-cone (AK8) calibration.
	CorrectJet(j types.Jet, wide bool) types.Vec4
	// CorrectMET returns the corrected MET; a zero pt means unavailable.
	CorrectMET(m types.MET) types.Vec4
}

// Tagger decides whether a jet is b-tagged.
type Tagger interface {
	Tagged(j types.Jet) bool
}

// ScaleCorrector applies the per-jet factor carried on the input and passes
// through any upstream MET correction.
type ScaleCorrector struct{}

// CorrectJet implements Corrector.
func (ScaleCorrector) CorrectJet(j types.Jet, _ bool) types.Vec4 {
	if j.JEC == 0 {
		return j.P4
	}
	return j.P4.Scale(j.JEC)
}

// CorrectMET implements Corrector.
func (ScaleCorrector) CorrectMET(m types.MET) types.Vec4 {
	if m.Corrected == nil {
		return types.Vec4{}
	}
	return *m.Corrected
}

// CSVTagger tags jets whose CSV discriminator exceeds Threshold.
type CSVTagger struct {
	Threshold float64
}

// Tagged implements Tagger.
func (c CSVTagger) Tagged(j types.Jet) bool { return j.CSV > c.Threshold }

// RCN returns the charged-to-neutral energy ratio of j, or NoRCN when the
// neutral energy is zero.
func RCN(j types.Jet) float64 {
	neutral := j.NeutralEmEnergy + j.NeutralHadronEnergy
	if neutral == 0 {
		return NoRCN
	}
	return (j.ChargedEmEnergy + j.ChargedHadronEnergy) / neutral
}

// EmitAK8 writes the corrected wide-cone jets and their CSV discriminator.
func EmitAK8(jets []types.Jet, corr Corrector, sink features.Sink) {
	tbl := features.NewTable(
		features.FloatCol("AK8JetPt"),
		features.FloatCol("AK8JetEta"),
		features.FloatCol("AK8JetPhi"),
		features.FloatCol("AK8JetEnergy"),
		features.FloatCol("AK8JetCSV"),
	)
	for _, j := range jets {
		p := corr.CorrectJet(j, true)
		tbl.Float("AK8JetPt", p.Pt)
		tbl.Float("AK8JetEta", p.Eta)
		tbl.Float("AK8JetPhi", p.Phi)
		tbl.Float("AK8JetEnergy", p.Energy)
		tbl.Float("AK8JetCSV", j.CSV)
	}
	tbl.WriteTo(sink)
}

// EmitAK4 writes the corrected selected jets, their b-tag decision and
// charged-to-neutral ratio, and AK4HT, the scalar sum of corrected pt.
func EmitAK4(jets []types.Jet, corr Corrector, tag Tagger, sink features.Sink) {
	tbl := features.NewTable(
		features.FloatCol("AK4JetPt"),
		features.FloatCol("AK4JetEta"),
		features.FloatCol("AK4JetPhi"),
		features.FloatCol("AK4JetEnergy"),
	)
	ht := 0.0
	btag := features.NewTable(
		features.IntCol("AK4JetBTag"),
		features.FloatCol("AK4JetRCN"),
	)
	for _, j := range jets {
		p := corr.CorrectJet(j, false)
		tbl.Float("AK4JetPt", p.Pt)
		tbl.Float("AK4JetEta", p.Eta)
		tbl.Float("AK4JetPhi", p.Phi)
		tbl.Float("AK4JetEnergy", p.Energy)
		btag.Bool("AK4JetBTag", tag.Tagged(j))
		btag.Float("AK4JetRCN", RCN(j))
		ht += p.Pt
	}
	tbl.WriteTo(sink)
	sink.SetValue("AK4HT", features.Float(ht))
	btag.WriteTo(sink)
}

// EmitMET writes met, met_phi, corr_met and corr_met_phi. Absent MET leaves
// every value at NoMET; the corrected pair is set only for a positive
// corrected pt.
func EmitMET(m *types.MET, corr Corrector, sink features.Sink) {
	met, metPhi := NoMET, NoMET
	corrMET, corrPhi := NoMET, NoMET
	if m != nil {
		met, metPhi = m.P4.Pt, m.P4.Phi
		if c := corr.CorrectMET(*m); c.Pt > 0 {
			corrMET, corrPhi = c.Pt, c.Phi
		}
	}
	sink.SetValue("met", features.Float(met))
	sink.SetValue("met_phi", features.Float(metPhi))
	sink.SetValue("corr_met", features.Float(corrMET))
	sink.SetValue("corr_met_phi", features.Float(corrPhi))
}
