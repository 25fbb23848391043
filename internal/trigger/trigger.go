// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trigger matches the leading reconstructed leptons to HLT objects.
package trigger

import (
	"slices"

	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/internal/kinematics"
	"github.com/pdiddy/singlelep/pkg/types"
)

// Matcher holds the filter labels and the matching cone.
type Matcher struct {
	ElectronFilter string
	MuonFilter     string
	MaxDeltaR      float64
}

// NewMatcher returns a Matcher configured from cfg.
func NewMatcher(cfg types.TriggerConfig) Matcher {
	return Matcher{
		ElectronFilter: cfg.ElectronFilter,
		MuonFilter:     cfg.MuonFilter,
		MaxDeltaR:      cfg.MatchDeltaR,
	}
}

// Matched reports whether any object carrying filter lies strictly within
// maxDR of lead. A nil lead never matches.
func Matched(objs []types.TriggerObject, filter string, lead *types.Vec4, maxDR float64) bool {
	if lead == nil {
		return false
	}
	for _, o := range objs {
		if !slices.Contains(o.FilterLabels, filter) {
			continue
		}
		if kinematics.DeltaR(o.Eta, o.Phi, lead.Eta, lead.Phi) < maxDR {
			return true
		}
	}
	return false
}

// Emit writes electron_1_hltmatched and muon_1_hltmatched for the leading
// kept electron and muon. The two checks are independent.
func (m Matcher) Emit(objs []types.TriggerObject, leadEl, leadMu *types.Vec4, sink features.Sink) {
	sink.SetValue("electron_1_hltmatched", features.Int(b2i(Matched(objs, m.ElectronFilter, leadEl, m.MaxDeltaR))))
	sink.SetValue("muon_1_hltmatched", features.Int(b2i(Matched(objs, m.MuonFilter, leadMu, m.MaxDeltaR))))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
