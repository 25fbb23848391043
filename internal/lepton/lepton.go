// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lepton derives kinematic, identification and isolation features
// from reconstructed muons and electrons and, for simulation, their truth
// match and ancestry.
package lepton

import (
	"math"

	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/internal/kinematics"
	"github.com/pdiddy/singlelep/internal/truth"
	"github.com/pdiddy/singlelep/pkg/types"
)

// Species codes used for truth matching.
const (
	SpeciesElectron = 11
	SpeciesMuon     = 13
)

// Sentinels for absent data.
const (
	NoVertexIP       = -999.0
	UnmatchedKinVal  = -1000.0
	UnmatchedID      = -1
	UnmatchedDeltaR  = -1.0
	UnmatchedMothers = -1
)

// EventContext carries the per-event inputs shared by every extractor.
type EventContext struct {
	// PV is the first primary vertex, nil when the collection is empty.
	PV *types.Point

	// Rho is the ambient energy density, already floored at zero.
	Rho float64

	// Gen is the truth collection; consulted only when MatchTruth is set.
	Gen         []types.GenParticle
	MatchTruth  bool
	MatchDeltaR float64
}

// Record is the feature set of one lepton.
type Record interface {
	// Momentum is the four-momentum reported in the kinematic features.
	Momentum() types.Vec4
	// Truth is the truth match, nil when matching is disabled.
	Truth() *TruthMatch
	fill(t *features.Table, prefix string)
}

// Extractor derives records from one lepton collection of an event. Objects
// lacking the required tracks produce no record.
type Extractor interface {
	// Prefix is prepended to every feature name ("mu", "el").
	Prefix() string
	// Species is the absolute truth species code matched against.
	Species() int
	// Columns declares the non-truth features in emission order.
	Columns() []features.Column
	// Records returns one record per usable object, in collection order.
	Records(ec *EventContext) []Record
}

// Undefined is emitted for ratios whose denominator is zero.
const Undefined = -999.0

// RelIso returns (ch + max(0, nh + ph - pu)) / pt, or Undefined for a
// non-positive pt.
func RelIso(ch, nh, ph, pu, pt float64) float64 {
	if pt <= 0 {
		return Undefined
	}
	return (ch + math.Max(0, nh+ph-pu)) / pt
}

// impactParameters returns dxy and dz of t relative to pv, or the sentinel
// pair when pv is nil.
func impactParameters(t types.Track, pv *types.Point) (dxy, dz float64) {
	if pv == nil {
		return NoVertexIP, NoVertexIP
	}
	return kinematics.Dxy(t, *pv), kinematics.Dz(t, *pv)
}

// TruthMatch is the truth information attached to one lepton.
type TruthMatch struct {
	Matched bool
	DeltaR  float64
	PdgID   int
	Status  int
	P4      types.Vec4
	// Mother indexes the matched particle's mother in the truth collection.
	Mother int
}

// matchTruth returns nil when matching is disabled, the genuine match when the
// nearest candidate of species is within threshold, and an unmatched value
// otherwise.
func matchTruth(ec *EventContext, species int, eta, phi float64) *TruthMatch {
	if !ec.MatchTruth {
		return nil
	}
	m := truth.FindClosest(ec.Gen, species, eta, phi)
	if !m.Within(ec.MatchDeltaR) {
		return &TruthMatch{Mother: types.NoMother}
	}
	p := ec.Gen[m.Index]
	return &TruthMatch{
		Matched: true,
		DeltaR:  m.DeltaR,
		PdgID:   p.PdgID,
		Status:  p.Status,
		P4:      p.P4,
		Mother:  p.Mother,
	}
}

func truthColumns(prefix string) []features.Column {
	return []features.Column{
		features.FloatCol(prefix + "Gen_Reco_dr"),
		features.IntCol(prefix + "PdgId"),
		features.IntCol(prefix + "Status"),
		features.IntCol(prefix + "Matched"),
		features.IntCol(prefix + "NumberOfMothers"),
		features.FloatCol(prefix + "MatchedPt"),
		features.FloatCol(prefix + "MatchedEta"),
		features.FloatCol(prefix + "MatchedPhi"),
		features.FloatCol(prefix + "MatchedEnergy"),
	}
}

// fillTruth appends one lepton's truth block. Ancestry rows go to the shared
// mother columns; the mother count is the number of rows this lepton added.
func fillTruth(t *features.Table, mothers *truth.AncestryColumns, gen []types.GenParticle, prefix string, m *TruthMatch) {
	if !m.Matched {
		t.Float(prefix+"Gen_Reco_dr", UnmatchedDeltaR)
		t.Int(prefix+"PdgId", UnmatchedID)
		t.Int(prefix+"Status", UnmatchedID)
		t.Int(prefix+"Matched", 0)
		t.Int(prefix+"NumberOfMothers", UnmatchedMothers)
		t.Float(prefix+"MatchedPt", UnmatchedKinVal)
		t.Float(prefix+"MatchedEta", UnmatchedKinVal)
		t.Float(prefix+"MatchedPhi", UnmatchedKinVal)
		t.Float(prefix+"MatchedEnergy", UnmatchedKinVal)
		return
	}

	n := truth.AppendAncestry(mothers, gen, m.Mother)

	t.Float(prefix+"Gen_Reco_dr", m.DeltaR)
	t.Int(prefix+"PdgId", m.PdgID)
	t.Int(prefix+"Status", m.Status)
	t.Int(prefix+"Matched", 1)
	t.Int(prefix+"NumberOfMothers", n)
	t.Float(prefix+"MatchedPt", m.P4.Pt)
	t.Float(prefix+"MatchedEta", m.P4.Eta)
	t.Float(prefix+"MatchedPhi", m.P4.Phi)
	t.Float(prefix+"MatchedEnergy", m.P4.Energy)
}

// Emit runs ex over the event, writes every feature column to sink and
// returns the records. Truth and mother columns are emitted only when
// matching is enabled, so every per-lepton column has one entry per record.
func Emit(ex Extractor, ec *EventContext, sink features.Sink) []Record {
	prefix := ex.Prefix()
	tbl := features.NewTable(ex.Columns()...)
	if ec.MatchTruth {
		tbl.Declare(truthColumns(prefix)...)
	}

	recs := ex.Records(ec)
	var mothers truth.AncestryColumns
	for _, r := range recs {
		r.fill(tbl, prefix)
		if m := r.Truth(); m != nil {
			fillTruth(tbl, &mothers, ec.Gen, prefix, m)
		}
	}

	tbl.WriteTo(sink)
	if !ec.MatchTruth {
		return recs
	}
	// Mother columns hold one row per ancestor, not per lepton.
	sink.SetValue(prefix+"Mother_pt", features.Floats(mothers.Pt))
	sink.SetValue(prefix+"Mother_eta", features.Floats(mothers.Eta))
	sink.SetValue(prefix+"Mother_phi", features.Floats(mothers.Phi))
	sink.SetValue(prefix+"Mother_energy", features.Floats(mothers.Energy))
	sink.SetValue(prefix+"Mother_status", features.Ints(mothers.Status))
	sink.SetValue(prefix+"Mother_id", features.Ints(mothers.ID))
	return recs
}
