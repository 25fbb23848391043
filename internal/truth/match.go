// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package truth relates reconstructed objects to generator-level particles:
// species-filtered nearest-neighbour matching, bounded ancestry walks, and
// selection of the hard-process particle table.
//
// Particles are held in an arena ([]types.GenParticle) and refer to their
// mother by index, so no walk can follow a dangling pointer.
package truth

import (
	"math"

	"github.com/pdiddy/singlelep/internal/kinematics"
	"github.com/pdiddy/singlelep/pkg/types"
)

// MatchResult is the outcome of FindClosest. Index is -1 and DeltaR is +Inf
// when no candidate of the requested species exists.
type MatchResult struct {
	Index  int
	DeltaR float64
}

// NoMatch is the result returned when there is no candidate.
var NoMatch = MatchResult{Index: -1, DeltaR: math.Inf(1)}

// Found reports whether any candidate was considered.
func (m MatchResult) Found() bool { return m.Index >= 0 }

// Within reports whether the match is genuine under threshold. A separation
// equal to the threshold does not count.
func (m MatchResult) Within(threshold float64) bool {
	return m.Found() && m.DeltaR < threshold
}

// FindClosest returns the particle in gen whose absolute species code equals
// species and which lies nearest to (eta, phi). Ties keep the first particle
// in collection order.
func FindClosest(gen []types.GenParticle, species int, eta, phi float64) MatchResult {
	best := NoMatch
	for i, p := range gen {
		if abs(p.PdgID) != species {
			continue
		}
		dr := kinematics.DeltaR(eta, phi, p.P4.Eta, p.P4.Phi)
		if dr < best.DeltaR {
			best = MatchResult{Index: i, DeltaR: dr}
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
