// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kinematics provides angular separation and impact-parameter helpers
// shared by the matching and feature stages.
package kinematics

import (
	"math"

	"github.com/pdiddy/singlelep/pkg/types"
)

// DeltaPhi returns phi1 - phi2 wrapped into [-π, π).
func DeltaPhi(phi1, phi2 float64) float64 {
	d := math.Mod(phi1-phi2+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}

// DeltaR returns the separation of two points in (eta, phi) space, taking the
// shortest path around the azimuth.
func DeltaR(eta1, phi1, eta2, phi2 float64) float64 {
	return math.Sqrt(DeltaR2(eta1, phi1, eta2, phi2))
}

// DeltaR2 is DeltaR squared.
func DeltaR2(eta1, phi1, eta2, phi2 float64) float64 {
	deta := eta1 - eta2
	dphi := DeltaPhi(phi1, phi2)
	return deta*deta + dphi*dphi
}

// Dxy returns the transverse impact parameter of t with respect to v.
func Dxy(t types.Track, v types.Point) float64 {
	pt := t.Pt()
	if pt == 0 {
		return 0
	}
	return (-(t.Ref.X-v.X)*t.Py + (t.Ref.Y-v.Y)*t.Px) / pt
}

// Dz returns the longitudinal impact parameter of t with respect to v.
func Dz(t types.Track, v types.Point) float64 {
	pt := t.Pt()
	if pt == 0 {
		return t.Ref.Z - v.Z
	}
	return (t.Ref.Z - v.Z) - ((t.Ref.X-v.X)*t.Px+(t.Ref.Y-v.Y)*t.Py)/pt*(t.Pz/pt)
}
