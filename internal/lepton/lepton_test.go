// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lepton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/pkg/types"
)

// truthEvent is proton -> top -> W -> muon, plus a stray electron.
func truthEvent() []types.GenParticle {
	return []types.GenParticle{
		{PdgID: 2212, Status: 4, Mother: types.NoMother, P4: types.Vec4{Pt: 0, Eta: 0, Phi: 0, Energy: 6500}},
		{PdgID: 6, Status: 62, Mother: 0, P4: types.Vec4{Pt: 120, Eta: 0.3, Phi: 0.1, Energy: 230}},
		{PdgID: 24, Status: 22, Mother: 1, P4: types.Vec4{Pt: 80, Eta: 0.2, Phi: 0.15, Energy: 110}},
		{PdgID: -13, Status: 1, Mother: 2, P4: types.Vec4{Pt: 49, Eta: 0.11, Phi: 0.19, Energy: 49.3}},
		{PdgID: 11, Status: 1, Mother: types.NoMother, P4: types.Vec4{Pt: 30, Eta: 0.1, Phi: 0.2, Energy: 30.2}},
	}
}

func track() *types.Track {
	return &types.Track{
		Px: 10, Py: 0, Pz: 1,
		NormalizedChi2: 1.2,
		ValidMuonHits:  12,
		ValidPixelHits: 2,
		TrackerLayers:  9,
	}
}

func muon(pt, eta, phi float64) types.Muon {
	return types.Muon{
		P4:              types.Vec4{Pt: pt, Eta: eta, Phi: phi, Energy: pt},
		Charge:          1,
		IsGlobal:        true,
		IsTracker:       true,
		IsPF:            true,
		GlobalTrack:     track(),
		InnerTrack:      track(),
		MatchedStations: 3,
	}
}

func mcContext() *EventContext {
	return &EventContext{
		PV:          &types.Point{},
		Gen:         truthEvent(),
		MatchTruth:  true,
		MatchDeltaR: 0.3,
	}
}

func TestRelIso(t *testing.T) {
	tests := []struct {
		name               string
		ch, nh, ph, pu, pt float64
		want               float64
	}{
		{"neutral sum positive", 1, 2, 3, 1, 10, 0.5},
		{"neutral sum clamped", 1, 2, 3, 10, 10, 0.1},
		{"all zero", 0, 0, 0, 5, 10, 0},
		{"zero pt", 1, 1, 1, 0, 0, Undefined},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, RelIso(tc.ch, tc.nh, tc.ph, tc.pu, tc.pt), 1e-12)
		})
	}
}

func TestData2012EA03(t *testing.T) {
	tests := []struct {
		eta  float64
		want float64
	}{
		{0.5, 0.13},
		{-1.2, 0.14},
		{1.479, 0.07},
		{2.1, 0.09},
		{-2.25, 0.11},
		{2.35, 0.11},
		{2.4, 0.14},
		{3.0, 0.14},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Data2012EA03.EffectiveArea(tc.eta), "eta %g", tc.eta)
	}
}

func TestMuonTruthMatching(t *testing.T) {
	ex := MuonExtractor{Muons: []types.Muon{
		muon(50, 0.1, 0.2),
		muon(35, 0.6, 0.2),
	}}
	rec := features.NewRecord()
	recs := Emit(ex, mcContext(), rec)
	require.Len(t, recs, 2)

	assert.Equal(t, []int{1, 0}, rec.MustInts("muMatched"))
	assert.Equal(t, []int{-13, -1}, rec.MustInts("muPdgId"))
	assert.Equal(t, []int{1, -1}, rec.MustInts("muStatus"))
	assert.Equal(t, []int{3, -1}, rec.MustInts("muNumberOfMothers"))
	assert.Equal(t, []float64{49, -1000}, rec.MustFloats("muMatchedPt"))
	assert.Equal(t, []float64{0.11, -1000}, rec.MustFloats("muMatchedEta"))

	dr := rec.MustFloats("muGen_Reco_dr")
	require.Len(t, dr, 2)
	assert.InDelta(t, 0.01414, dr[0], 1e-4)
	assert.Equal(t, -1.0, dr[1])

	assert.Equal(t, []int{24, 6, 2212}, rec.MustInts("muMother_id"))
	assert.Equal(t, []int{22, 62, 4}, rec.MustInts("muMother_status"))
	assert.Equal(t, []float64{80, 120, 0}, rec.MustFloats("muMother_pt"))

	n, err := rec.CheckAligned("mu", "muMother_")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = rec.CheckAligned("muMother_")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMuonWithoutTruth(t *testing.T) {
	ex := MuonExtractor{Muons: []types.Muon{muon(50, 0.1, 0.2)}}
	rec := features.NewRecord()
	Emit(ex, &EventContext{PV: &types.Point{}}, rec)

	assert.Equal(t, []float64{50}, rec.MustFloats("muPt"))
	for _, name := range []string{"muMatched", "muPdgId", "muNumberOfMothers", "muMatchedPt", "muMother_id"} {
		_, ok := rec.Get(name)
		assert.False(t, ok, "%s emitted without truth matching", name)
	}

	n, err := rec.CheckAligned("mu")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMuonSkipsMissingTracks(t *testing.T) {
	noInner := muon(40, 0, 0)
	noInner.InnerTrack = nil
	noGlobal := muon(30, 0, 0)
	noGlobal.GlobalTrack = nil

	ex := MuonExtractor{Muons: []types.Muon{noInner, muon(20, 1, 1), noGlobal}}
	rec := features.NewRecord()
	Emit(ex, mcContext(), rec)

	assert.Equal(t, []float64{20}, rec.MustFloats("muPt"))
	n, err := rec.CheckAligned("mu", "muMother_")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMuonFeatures(t *testing.T) {
	m := muon(40, 0.5, -1)
	m.IsTracker = false
	m.ChargedHadronIso = 2
	m.NeutralHadronIso = 1
	m.PhotonIso = 1
	m.PUChargedHadronIso = 2

	rec := features.NewRecord()
	Emit(MuonExtractor{Muons: []types.Muon{m}}, &EventContext{PV: &types.Point{}}, rec)

	assert.Equal(t, []int{4}, rec.MustInts("muGlobal"))
	assert.Equal(t, []int{1}, rec.MustInts("muIsLoose"))
	assert.Equal(t, []int{1}, rec.MustInts("muIsTight"))
	assert.Equal(t, []float64{1.2}, rec.MustFloats("muChi2"))
	assert.InDelta(t, 0.075, rec.MustFloats("muRelIso")[0], 1e-12)
	assert.Equal(t, []int{12}, rec.MustInts("muNValMuHits"))
	assert.Equal(t, []int{3}, rec.MustInts("muNMatchedStations"))
	assert.Equal(t, []float64{2}, rec.MustFloats("muPuIso"))
}

func TestMuonWithoutVertex(t *testing.T) {
	rec := features.NewRecord()
	Emit(MuonExtractor{Muons: []types.Muon{muon(40, 0, 0)}}, &EventContext{}, rec)

	assert.Equal(t, []float64{NoVertexIP}, rec.MustFloats("muDxy"))
	assert.Equal(t, []float64{NoVertexIP}, rec.MustFloats("muDz"))
	assert.Equal(t, []int{0}, rec.MustInts("muIsTight"))
}

func TestTightMuon(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *types.Muon)
		pv     types.Point
		want   bool
	}{
		{"passes", func(m *types.Muon) {}, types.Point{}, true},
		{"not PF", func(m *types.Muon) { m.IsPF = false }, types.Point{}, false},
		{"not global", func(m *types.Muon) { m.IsGlobal = false }, types.Point{}, false},
		{"large chi2", func(m *types.Muon) { m.GlobalTrack.NormalizedChi2 = 10 }, types.Point{}, false},
		{"no muon hits", func(m *types.Muon) { m.GlobalTrack.ValidMuonHits = 0 }, types.Point{}, false},
		{"one station", func(m *types.Muon) { m.MatchedStations = 1 }, types.Point{}, false},
		{"no pixel hits", func(m *types.Muon) { m.InnerTrack.ValidPixelHits = 0 }, types.Point{}, false},
		{"five layers", func(m *types.Muon) { m.InnerTrack.TrackerLayers = 5 }, types.Point{}, false},
		{"far in z", func(m *types.Muon) {}, types.Point{Z: 1}, false},
		{"far in xy", func(m *types.Muon) {}, types.Point{Y: 0.3}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := muon(40, 0, 0)
			tc.mutate(&m)
			pv := tc.pv
			recs := MuonExtractor{Muons: []types.Muon{m}}.Records(&EventContext{PV: &pv})
			require.Len(t, recs, 1)
			assert.Equal(t, tc.want, recs[0].(*MuonRecord).IsTight)
		})
	}
}

func electron() types.Electron {
	return types.Electron{
		P4:                 types.Vec4{Pt: 20, Eta: 0.1, Phi: 0.2, Energy: 20.1},
		EcalDrivenP4:       types.Vec4{Pt: 21, Eta: 1.1, Phi: 0.2, Energy: 35},
		Charge:             -1,
		GsfTrack:           track(),
		SuperClusterEta:    0.5,
		ChargedHadronIso:   1,
		NeutralHadronIso:   2,
		PhotonIso:          0.5,
		ConvDist:           0.03,
		PassConversionVeto: true,
		IsEE:               true,
		EcalEnergy:         50,
		ESuperClusterOverP: 1,
		DB:                 0.004,
	}
}

func TestElectronFeatures(t *testing.T) {
	noTrack := electron()
	noTrack.GsfTrack = nil
	ec := mcContext()
	ec.Rho = 10

	rec := features.NewRecord()
	recs := Emit(ElectronExtractor{Electrons: []types.Electron{electron(), noTrack}}, ec, rec)
	require.Len(t, recs, 1)

	assert.Equal(t, []float64{21}, rec.MustFloats("elPt"))
	assert.Equal(t, []float64{1.1}, rec.MustFloats("elEta"))
	assert.Equal(t, []int{-1}, rec.MustInts("elCharge"))
	assert.InDelta(t, 0.11, rec.MustFloats("elRelIso")[0], 1e-12)
	assert.Equal(t, []float64{0.13}, rec.MustFloats("elAEff"))
	assert.Equal(t, []float64{10}, rec.MustFloats("elRhoIso"))
	assert.Equal(t, []int{1}, rec.MustInts("elNotConversion"))
	assert.Equal(t, []int{2}, rec.MustInts("elIsEBEE"))
	assert.Equal(t, []int{1}, rec.MustInts("elVtxFitConv"))
	assert.Equal(t, []float64{0.004}, rec.MustFloats("elD0"))
	assert.InDelta(t, 0.04, rec.MustFloats("elOoemoop")[0], 1e-12)

	// Matching uses the track momentum, not the ECAL-driven one.
	assert.Equal(t, []int{1}, rec.MustInts("elMatched"))
	assert.Equal(t, []int{11}, rec.MustInts("elPdgId"))
	assert.Equal(t, []int{0}, rec.MustInts("elNumberOfMothers"))
	assert.Empty(t, rec.MustInts("elMother_id"))

	n, err := rec.CheckAligned("el", "elMother_")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestElectronConversionAndEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *types.Electron)
		notConv bool
	}{
		{"separated partner", func(e *types.Electron) {}, true},
		{"dcot only", func(e *types.Electron) { e.ConvDist, e.ConvDcot = 0, -0.05 }, true},
		{"close partner", func(e *types.Electron) { e.ConvDist, e.ConvDcot = 0.01, 0.01 }, false},
		{"missing inner hit", func(e *types.Electron) { e.GsfTrack.MissingInnerHits = 1 }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := electron()
			tc.mutate(&e)
			recs := ElectronExtractor{Electrons: []types.Electron{e}}.Records(&EventContext{})
			require.Len(t, recs, 1)
			r := recs[0].(*ElectronRecord)
			assert.Equal(t, tc.notConv, r.NotConversion)
			assert.Equal(t, NoVertexIP, r.Dxy)
			assert.Nil(t, r.Truth())
		})
	}
}

func TestElectronZeroEcalEnergy(t *testing.T) {
	e := electron()
	e.EcalEnergy = 0
	recs := ElectronExtractor{Electrons: []types.Electron{e}}.Records(&EventContext{})
	require.Len(t, recs, 1)
	assert.Equal(t, Undefined, recs[0].(*ElectronRecord).Ooemoop)
}

type fixedArea float64

func (f fixedArea) EffectiveArea(float64) float64 { return float64(f) }

func TestElectronCustomEffectiveArea(t *testing.T) {
	recs := ElectronExtractor{
		Electrons: []types.Electron{electron()},
		EA:        fixedArea(0.3),
	}.Records(&EventContext{Rho: 5})
	require.Len(t, recs, 1)
	r := recs[0].(*ElectronRecord)
	assert.Equal(t, 0.3, r.AEff)
	// (1 + max(0, 2 + 0.5 - 1.5)) / 20
	assert.InDelta(t, 0.1, r.RelIso, 1e-12)
}

func TestPackedFlags(t *testing.T) {
	e := &ElectronRecord{IsEB: true, IsEBEEGap: true}
	assert.Equal(t, 5, e.EBEE())
	m := &MuonRecord{IsGlobal: true, IsTracker: true}
	assert.Equal(t, 5, m.Global())
	m.IsGlobal = false
	assert.Equal(t, 1, m.Global())
}
