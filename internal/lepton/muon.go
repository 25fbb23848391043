// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lepton

import (
	"math"

	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/pkg/types"
)

// Muon pileup correction factor applied to the PU charged hadron sum.
const muonPUFactor = 0.5

// Tight muon working point.
const (
	tightMaxChi2          = 10
	tightMinMuonHits      = 1
	tightMinStations      = 2
	tightMaxDxy           = 0.2
	tightMaxDz            = 0.5
	tightMinPixelHits     = 1
	tightMinTrackerLayers = 6
)

// MuonRecord is the feature set of one muon.
type MuonRecord struct {
	P4     types.Vec4
	Charge int

	IsGlobal  bool
	IsTracker bool
	IsTight   bool
	IsLoose   bool

	Chi2   float64
	Dxy    float64
	Dz     float64
	RelIso float64

	NValMuHits       int
	NMatchedStations int
	NValPixelHits    int
	NTrackerLayers   int

	ChIso float64
	NhIso float64
	GIso  float64
	PuIso float64

	Match *TruthMatch
}

// Momentum implements Record.
func (r *MuonRecord) Momentum() types.Vec4 { return r.P4 }

// Truth implements Record.
func (r *MuonRecord) Truth() *TruthMatch { return r.Match }

// Global returns the packed global/tracker flags: isGlobal<<2 | isTracker.
func (r *MuonRecord) Global() int {
	return b2i(r.IsGlobal)<<2 | b2i(r.IsTracker)
}

func (r *MuonRecord) fill(t *features.Table, prefix string) {
	t.Int(prefix+"Charge", r.Charge)
	t.Int(prefix+"Global", r.Global())
	t.Float(prefix+"Pt", r.P4.Pt)
	t.Float(prefix+"Eta", r.P4.Eta)
	t.Float(prefix+"Phi", r.P4.Phi)
	t.Float(prefix+"Energy", r.P4.Energy)
	t.Bool(prefix+"IsTight", r.IsTight)
	t.Bool(prefix+"IsLoose", r.IsLoose)
	t.Float(prefix+"Chi2", r.Chi2)
	t.Float(prefix+"Dxy", r.Dxy)
	t.Float(prefix+"Dz", r.Dz)
	t.Float(prefix+"RelIso", r.RelIso)
	t.Int(prefix+"NValMuHits", r.NValMuHits)
	t.Int(prefix+"NMatchedStations", r.NMatchedStations)
	t.Int(prefix+"NValPixelHits", r.NValPixelHits)
	t.Int(prefix+"NTrackerLayers", r.NTrackerLayers)
	t.Float(prefix+"ChIso", r.ChIso)
	t.Float(prefix+"NhIso", r.NhIso)
	t.Float(prefix+"GIso", r.GIso)
	t.Float(prefix+"PuIso", r.PuIso)
}

// MuonExtractor derives muon features.
type MuonExtractor struct {
	Muons []types.Muon
}

// Prefix implements Extractor.
func (MuonExtractor) Prefix() string { return "mu" }

// Species implements Extractor.
func (MuonExtractor) Species() int { return SpeciesMuon }

// Columns implements Extractor.
func (MuonExtractor) Columns() []features.Column {
	return []features.Column{
		features.IntCol("muCharge"),
		features.IntCol("muGlobal"),
		features.FloatCol("muPt"),
		features.FloatCol("muEta"),
		features.FloatCol("muPhi"),
		features.FloatCol("muEnergy"),
		features.IntCol("muIsTight"),
		features.IntCol("muIsLoose"),
		features.FloatCol("muChi2"),
		features.FloatCol("muDxy"),
		features.FloatCol("muDz"),
		features.FloatCol("muRelIso"),
		features.IntCol("muNValMuHits"),
		features.IntCol("muNMatchedStations"),
		features.IntCol("muNValPixelHits"),
		features.IntCol("muNTrackerLayers"),
		features.FloatCol("muChIso"),
		features.FloatCol("muNhIso"),
		features.FloatCol("muGIso"),
		features.FloatCol("muPuIso"),
	}
}

// Records implements Extractor. Muons without both a global and an inner
// track are skipped.
func (x MuonExtractor) Records(ec *EventContext) []Record {
	var out []Record
	for i := range x.Muons {
		m := &x.Muons[i]
		if m.GlobalTrack == nil || m.InnerTrack == nil {
			continue
		}
		out = append(out, x.record(m, ec))
	}
	return out
}

func (x MuonExtractor) record(m *types.Muon, ec *EventContext) *MuonRecord {
	best := m.BestTrack
	if best == nil {
		best = m.GlobalTrack
	}
	dxy, dz := impactParameters(*best, ec.PV)

	r := &MuonRecord{
		P4:               m.P4,
		Charge:           m.Charge,
		IsGlobal:         m.IsGlobal,
		IsTracker:        m.IsTracker,
		IsLoose:          m.IsPF && (m.IsGlobal || m.IsTracker),
		Chi2:             m.GlobalTrack.NormalizedChi2,
		Dxy:              dxy,
		Dz:               dz,
		NValMuHits:       m.GlobalTrack.ValidMuonHits,
		NMatchedStations: m.MatchedStations,
		NValPixelHits:    m.InnerTrack.ValidPixelHits,
		NTrackerLayers:   m.InnerTrack.TrackerLayers,
		ChIso:            m.ChargedHadronIso,
		NhIso:            m.NeutralHadronIso,
		GIso:             m.PhotonIso,
		PuIso:            m.PUChargedHadronIso,
		RelIso: RelIso(m.ChargedHadronIso, m.NeutralHadronIso, m.PhotonIso,
			muonPUFactor*m.PUChargedHadronIso, m.P4.Pt),
		Match: matchTruth(ec, x.Species(), m.P4.Eta, m.P4.Phi),
	}
	r.IsTight = isTight(m, ec.PV != nil, dxy, dz)
	return r
}

// isTight applies the tight working point. Without a primary vertex no muon
// is tight.
func isTight(m *types.Muon, hasPV bool, dxy, dz float64) bool {
	return hasPV &&
		m.IsGlobal && m.IsPF &&
		m.GlobalTrack.NormalizedChi2 < tightMaxChi2 &&
		m.GlobalTrack.ValidMuonHits >= tightMinMuonHits &&
		m.MatchedStations >= tightMinStations &&
		math.Abs(dxy) < tightMaxDxy &&
		math.Abs(dz) < tightMaxDz &&
		m.InnerTrack.ValidPixelHits >= tightMinPixelHits &&
		m.InnerTrack.TrackerLayers >= tightMinTrackerLayers
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
