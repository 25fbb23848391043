// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package truth

import (
	"math"

	"github.com/pdiddy/singlelep/pkg/types"
)

const (
	// StatusHardOutgoing marks an outgoing hard-process parton.
	StatusHardOutgoing = 23
	// StatusLegacyHard marks the legacy hard-process record.
	StatusLegacyHard = 3

	// legacyTolerance is the absolute eta and pt tolerance used to identify
	// the legacy record of a mother.
	legacyTolerance = 0.01
)

// HardParticle is one row of the hard-process table.
type HardParticle struct {
	P4          types.Vec4
	PdgID       int
	Index       int
	Status      int
	MotherPdgID int
	// MotherIndex is the index of the mother's status-3 record, or 0 when
	// none was found.
	MotherIndex int
}

// Selector picks hard-process particles by species allow-lists.
type Selector struct {
	keep    map[int]bool
	keepMom map[int]bool
}

// NewSelector builds a Selector from absolute species codes.
func NewSelector(keepPDGID, keepMomPDGID []int) *Selector {
	return &Selector{
		keep:    toSet(keepPDGID),
		keepMom: toSet(keepMomPDGID),
	}
}

func toSet(ids []int) map[int]bool {
	s := make(map[int]bool, len(ids))
	for _, id := range ids {
		s[abs(id)] = true
	}
	return s
}

// Keep reports whether a particle with species pdgID whose mother has species
// momPdgID belongs in the table. The mother list is consulted first.
func (s *Selector) Keep(pdgID, momPdgID int) bool {
	if s.keepMom[abs(momPdgID)] {
		return true
	}
	return s.keep[abs(pdgID)]
}

// Select returns the hard-process table for gen in collection order.
func (s *Selector) Select(gen []types.GenParticle) []HardParticle {
	var out []HardParticle
	for i, p := range gen {
		if p.Status != StatusHardOutgoing {
			continue
		}
		if p.Mother < 0 || p.Mother >= len(gen) {
			continue
		}
		mom := gen[p.Mother]
		if !s.Keep(p.PdgID, mom.PdgID) {
			continue
		}
		out = append(out, HardParticle{
			P4:          p.P4,
			PdgID:       p.PdgID,
			Index:       i,
			Status:      p.Status,
			MotherPdgID: mom.PdgID,
			MotherIndex: LegacyIndex(gen, mom),
		})
	}
	return out
}

// LegacyIndex returns the index of the first status-3 particle with the same
// species as mom and eta and pt each within 0.01 of it, or 0 when there is
// none. The match is approximate and order dependent.
func LegacyIndex(gen []types.GenParticle, mom types.GenParticle) int {
	for j, q := range gen {
		if q.Status != StatusLegacyHard {
			continue
		}
		if q.PdgID == mom.PdgID &&
			math.Abs(mom.P4.Eta-q.P4.Eta) < legacyTolerance &&
			math.Abs(mom.P4.Pt-q.P4.Pt) < legacyTolerance {
			return j
		}
	}
	return 0
}
