// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/pkg/types"
)

func jet(pt, jec, csv float64) types.Jet {
	return types.Jet{
		P4:                  types.Vec4{Pt: pt, Eta: 0.5, Phi: 1, Energy: 2 * pt},
		JEC:                 jec,
		CSV:                 csv,
		ChargedEmEnergy:     1,
		ChargedHadronEnergy: 3,
		NeutralEmEnergy:     1,
		NeutralHadronEnergy: 1,
	}
}

func TestScaleCorrector(t *testing.T) {
	c := ScaleCorrector{}
	assert.Equal(t, types.Vec4{Pt: 50, Eta: 0.5, Phi: 1, Energy: 100}, c.CorrectJet(jet(50, 0, 0), false))
	assert.Equal(t, types.Vec4{Pt: 100, Eta: 0.5, Phi: 1, Energy: 200}, c.CorrectJet(jet(50, 2, 0), true))

	assert.Equal(t, types.Vec4{}, c.CorrectMET(types.MET{}))
	corr := types.Vec4{Pt: 40, Phi: -2}
	assert.Equal(t, corr, c.CorrectMET(types.MET{Corrected: &corr}))
}

func TestRCN(t *testing.T) {
	assert.Equal(t, 2.0, RCN(jet(30, 1, 0)))
	j := jet(30, 1, 0)
	j.NeutralEmEnergy, j.NeutralHadronEnergy = 0, 0
	assert.Equal(t, NoRCN, RCN(j))
}

func TestEmitAK4(t *testing.T) {
	rec := features.NewRecord()
	EmitAK4([]types.Jet{jet(100, 1.0, 0.95), jet(40, 1.5, 0.3)}, ScaleCorrector{}, CSVTagger{Threshold: 0.890}, rec)

	assert.InDeltaSlice(t, []float64{100, 60}, rec.MustFloats("AK4JetPt"), 1e-9)
	assert.Equal(t, []int{1, 0}, rec.MustInts("AK4JetBTag"))
	assert.Equal(t, []float64{2, 2}, rec.MustFloats("AK4JetRCN"))
	ht, ok := rec.Get("AK4HT")
	require.True(t, ok)
	assert.InDelta(t, 160, ht.Float, 1e-9)

	n, err := rec.CheckAligned("AK4Jet")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEmitAK4Empty(t *testing.T) {
	rec := features.NewRecord()
	EmitAK4(nil, ScaleCorrector{}, CSVTagger{Threshold: 0.890}, rec)
	ht, ok := rec.Get("AK4HT")
	require.True(t, ok)
	assert.Equal(t, 0.0, ht.Float)
	assert.Empty(t, rec.MustFloats("AK4JetPt"))
}

type wideOnly struct{ ScaleCorrector }

func (wideOnly) CorrectJet(j types.Jet, wide bool) types.Vec4 {
	if wide {
		return j.P4.Scale(2)
	}
	return j.P4
}

func TestEmitAK8UsesWideCalibration(t *testing.T) {
	rec := features.NewRecord()
	EmitAK8([]types.Jet{jet(200, 0, 0.7)}, wideOnly{}, rec)
	assert.Equal(t, []float64{400}, rec.MustFloats("AK8JetPt"))
	assert.Equal(t, []float64{0.7}, rec.MustFloats("AK8JetCSV"))
	assert.Equal(t, []string{"AK8JetPt", "AK8JetEta", "AK8JetPhi", "AK8JetEnergy", "AK8JetCSV"}, rec.Names())
}

func TestEmitMET(t *testing.T) {
	corrected := types.Vec4{Pt: 42, Phi: 0.7}
	zero := types.Vec4{}
	tests := []struct {
		name string
		met  *types.MET
		want [4]float64
	}{
		{"absent", nil, [4]float64{NoMET, NoMET, NoMET, NoMET}},
		{"uncorrected", &types.MET{P4: types.Vec4{Pt: 35, Phi: 1}}, [4]float64{35, 1, NoMET, NoMET}},
		{"zero correction", &types.MET{P4: types.Vec4{Pt: 35, Phi: 1}, Corrected: &zero}, [4]float64{35, 1, NoMET, NoMET}},
		{"corrected", &types.MET{P4: types.Vec4{Pt: 35, Phi: 1}, Corrected: &corrected}, [4]float64{35, 1, 42, 0.7}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := features.NewRecord()
			EmitMET(tc.met, ScaleCorrector{}, rec)
			for i, name := range []string{"met", "met_phi", "corr_met", "corr_met_phi"} {
				v, ok := rec.Get(name)
				require.True(t, ok, name)
				assert.Equal(t, tc.want[i], v.Float, name)
			}
		})
	}
}
