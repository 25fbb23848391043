// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/pkg/types"
)

const (
	elFilter = "hltEle"
	muFilter = "hltMu"
)

func TestMatched(t *testing.T) {
	lead := &types.Vec4{Pt: 40, Eta: 1, Phi: 0}
	tests := []struct {
		name string
		objs []types.TriggerObject
		lead *types.Vec4
		want bool
	}{
		{"close with filter", []types.TriggerObject{{Eta: 1.1, Phi: 0.1, FilterLabels: []string{"x", elFilter}}}, lead, true},
		{"close without filter", []types.TriggerObject{{Eta: 1, Phi: 0, FilterLabels: []string{muFilter}}}, lead, false},
		{"far with filter", []types.TriggerObject{{Eta: 1.6, Phi: 0, FilterLabels: []string{elFilter}}}, lead, false},
		{"exactly at cone", []types.TriggerObject{{Eta: 1.5, Phi: 0, FilterLabels: []string{elFilter}}}, lead, false},
		{"no lepton", []types.TriggerObject{{Eta: 1, Phi: 0, FilterLabels: []string{elFilter}}}, nil, false},
		{"no objects", nil, lead, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matched(tc.objs, elFilter, tc.lead, 0.5))
		})
	}
}

func TestEmitChecksAreIndependent(t *testing.T) {
	m := NewMatcher(types.TriggerConfig{ElectronFilter: elFilter, MuonFilter: muFilter, MatchDeltaR: 0.5})
	objs := []types.TriggerObject{
		// An electron-only object listed first must not hide the muon match.
		{Eta: 0, Phi: 0, FilterLabels: []string{elFilter}},
		{Eta: -1, Phi: 2, FilterLabels: []string{muFilter}},
	}

	rec := features.NewRecord()
	m.Emit(objs, &types.Vec4{Eta: 0, Phi: 0}, &types.Vec4{Eta: -1, Phi: 2.1}, rec)

	el, _ := rec.Get("electron_1_hltmatched")
	mu, _ := rec.Get("muon_1_hltmatched")
	assert.Equal(t, 1, el.Int)
	assert.Equal(t, 1, mu.Int)

	rec = features.NewRecord()
	m.Emit(objs, nil, &types.Vec4{Eta: 2, Phi: 2}, rec)
	el, _ = rec.Get("electron_1_hltmatched")
	mu, _ = rec.Get("muon_1_hltmatched")
	assert.Equal(t, 0, el.Int)
	assert.Equal(t, 0, mu.Int)
}
