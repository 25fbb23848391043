// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package truth

import "github.com/pdiddy/singlelep/pkg/types"

// MaxAncestryDepth bounds how many ancestors a walk records. The immediate
// mother is depth 1.
const MaxAncestryDepth = 10

// AncestryRecord describes one ancestor.
type AncestryRecord struct {
	PdgID  int
	Status int
	P4     types.Vec4
}

// AncestryColumns accumulates ancestry records field by field. One instance
// backs every object of a type within an event, so callers read the number of
// rows they contributed from the return value of AppendAncestry.
type AncestryColumns struct {
	ID     []int
	Status []int
	Pt     []float64
	Eta    []float64
	Phi    []float64
	Energy []float64
}

// Len returns the number of records held.
func (c *AncestryColumns) Len() int { return len(c.ID) }

// Append adds one record.
func (c *AncestryColumns) Append(r AncestryRecord) {
	c.ID = append(c.ID, r.PdgID)
	c.Status = append(c.Status, r.Status)
	c.Pt = append(c.Pt, r.P4.Pt)
	c.Eta = append(c.Eta, r.P4.Eta)
	c.Phi = append(c.Phi, r.P4.Phi)
	c.Energy = append(c.Energy, r.P4.Energy)
}

// AppendAncestry appends the ancestors of the particle whose mother is at
// index mother to cols, immediate mother first, and returns the number of
// rows added. mother outside gen adds nothing. The walk stops after
// MaxAncestryDepth records, which also terminates cyclic mother graphs.
func AppendAncestry(cols *AncestryColumns, gen []types.GenParticle, mother int) int {
	before := cols.Len()
	walk(gen, mother, 1, cols.Append)
	return cols.Len() - before
}

func walk(gen []types.GenParticle, idx, depth int, emit func(AncestryRecord)) {
	if idx < 0 || idx >= len(gen) {
		return
	}
	p := gen[idx]
	emit(AncestryRecord{PdgID: p.PdgID, Status: p.Status, P4: p.P4})
	if depth >= MaxAncestryDepth {
		return
	}
	walk(gen, p.Mother, depth+1, emit)
}
