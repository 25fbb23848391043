// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lepton

import "math"

// EffectiveArea returns the area used to scale rho into a pileup estimate
// for an electron at the given supercluster eta.
type EffectiveArea interface {
	EffectiveArea(scEta float64) float64
}

// EtaBin is one step of a StepTable: Area applies for |eta| below UpTo.
type EtaBin struct {
	UpTo float64
	Area float64
}

// StepTable is an EffectiveArea defined by ascending |eta| bins. Beyond the
// last bin, Overflow applies.
type StepTable struct {
	Bins     []EtaBin
	Overflow float64
}

// EffectiveArea implements EffectiveArea.
func (s StepTable) EffectiveArea(scEta float64) float64 {
	a := math.Abs(scEta)
	for _, b := range s.Bins {
		if a < b.UpTo {
			return b.Area
		}
	}
	return s.Overflow
}

// Data2012EA03 is the gamma plus neutral hadron effective area for a cone of
// 0.3, measured on 2012 data.
var Data2012EA03 = StepTable{
	Bins: []EtaBin{
		{UpTo: 1.0, Area: 0.13},
		{UpTo: 1.479, Area: 0.14},
		{UpTo: 2.0, Area: 0.07},
		{UpTo: 2.2, Area: 0.09},
		{UpTo: 2.3, Area: 0.11},
		{UpTo: 2.4, Area: 0.11},
	},
	Overflow: 0.14,
}
