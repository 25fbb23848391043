// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package calc turns one reconstructed event into a flat set of named
// features: vertex and dataset flags, lepton kinematics and identification,
// truth matching, trigger matching, jets, MET and the hard-process table.
package calc

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/internal/jets"
	"github.com/pdiddy/singlelep/internal/lepton"
	"github.com/pdiddy/singlelep/internal/trigger"
	"github.com/pdiddy/singlelep/internal/truth"
	"github.com/pdiddy/singlelep/pkg/types"
)

// ErrMissingCollection is returned when a configured named collection is not
// present in the event.
var ErrMissingCollection = errors.New("missing collection")

// Option customises a Calculator.
type Option func(*Calculator)

// WithCorrector replaces the default jet and MET corrector.
func WithCorrector(c jets.Corrector) Option {
	return func(calc *Calculator) { calc.corrector = c }
}

// WithTagger replaces the default CSV b-tagger.
func WithTagger(t jets.Tagger) Option {
	return func(calc *Calculator) { calc.tagger = t }
}

// WithEffectiveArea replaces the default electron effective-area table.
func WithEffectiveArea(ea lepton.EffectiveArea) Option {
	return func(calc *Calculator) { calc.area = ea }
}

// Calculator computes features event by event. Its configuration is fixed at
// construction; AnalyzeEvent may be called from several goroutines.
type Calculator struct {
	cfg       types.CalcConfig
	selector  *truth.Selector
	matcher   trigger.Matcher
	corrector jets.Corrector
	tagger    jets.Tagger
	area      lepton.EffectiveArea
}

// NewCalculator validates cfg and returns a Calculator.
func NewCalculator(cfg types.CalcConfig, opts ...Option) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	c := &Calculator{
		cfg:       cfg,
		selector:  truth.NewSelector(cfg.KeepPDGID, cfg.KeepMomPDGID),
		matcher:   trigger.NewMatcher(cfg.Trigger),
		corrector: jets.ScaleCorrector{},
		tagger:    jets.CSVTagger{Threshold: cfg.BTagThreshold},
		area:      lepton.Data2012EA03,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// inputs are the named collections fetched for one event.
type inputs struct {
	vertices []types.Vertex
	gen      []types.GenParticle
	trigObjs []types.TriggerObject
	rho      float64
	ak8      []types.Jet
}

func (c *Calculator) fetch(ev *types.Event) (inputs, error) {
	var in inputs
	names := c.cfg.Collections
	var ok bool

	if in.vertices, ok = ev.Vertices[names.PrimaryVertices]; !ok {
		return in, missing("vertex", names.PrimaryVertices)
	}
	if c.cfg.IsMC {
		if in.gen, ok = ev.GenParticles[names.GenParticles]; !ok {
			return in, missing("gen particle", names.GenParticles)
		}
	}
	if in.rho, ok = ev.Rho[names.Rho]; !ok {
		return in, missing("rho", names.Rho)
	}
	if in.trigObjs, ok = ev.TriggerObjects[names.TriggerSummary]; !ok {
		return in, missing("trigger object", names.TriggerSummary)
	}
	if in.ak8, ok = ev.Jets[names.AK8Jets]; !ok {
		return in, missing("jet", names.AK8Jets)
	}
	return in, nil
}

func missing(kind, name string) error {
	return fmt.Errorf("%s collection %q: %w", kind, name, ErrMissingCollection)
}

// AnalyzeEvent computes every feature of ev and writes it to sink. Collections
// are fetched before anything is written, so an error leaves sink untouched.
func (c *Calculator) AnalyzeEvent(ev *types.Event, sink features.Sink) error {
	in, err := c.fetch(ev)
	if err != nil {
		return err
	}

	sink.SetValue("nPV", features.Int(len(in.vertices)))
	dataE, dataM := DatasetFlags(c.cfg.DataType)
	sink.SetValue("dataE", features.Int(dataE))
	sink.SetValue("dataM", features.Int(dataM))

	ec := &lepton.EventContext{
		Rho:         math.Max(in.rho, 0),
		Gen:         in.gen,
		MatchTruth:  c.cfg.IsMC && c.cfg.KeepFullMCHistory,
		MatchDeltaR: c.cfg.MatchDeltaR,
	}
	if len(in.vertices) > 0 {
		pv := in.vertices[0].Position
		ec.PV = &pv
	}

	mus := lepton.Emit(lepton.MuonExtractor{Muons: ev.Muons}, ec, sink)
	els := lepton.Emit(lepton.ElectronExtractor{Electrons: ev.Electrons, EA: c.area}, ec, sink)

	c.matcher.Emit(in.trigObjs, leading(els), leading(mus), sink)

	jets.EmitAK8(in.ak8, c.corrector, sink)
	jets.EmitAK4(ev.SelectedJets, c.corrector, c.tagger, sink)
	jets.EmitMET(ev.MET, c.corrector, sink)

	var hard []truth.HardParticle
	if c.cfg.IsMC {
		hard = c.selector.Select(in.gen)
	}
	emitHardProcess(hard, sink)
	return nil
}

// DatasetFlags maps the configured primary dataset to the dataE and dataM
// flags.
func DatasetFlags(dataType string) (dataE, dataM int) {
	switch dataType {
	case "E", "Electron":
		return 1, 0
	case "M", "Muon":
		return 0, 1
	case "All", "ALL":
		return 1, 1
	default:
		return 0, 0
	}
}

func leading(recs []lepton.Record) *types.Vec4 {
	if len(recs) == 0 {
		return nil
	}
	p := recs[0].Momentum()
	return &p
}

func emitHardProcess(hard []truth.HardParticle, sink features.Sink) {
	tbl := features.NewTable(
		features.FloatCol("genPt"),
		features.FloatCol("genEta"),
		features.FloatCol("genPhi"),
		features.FloatCol("genEnergy"),
		features.IntCol("genID"),
		features.IntCol("genIndex"),
		features.IntCol("genStatus"),
		features.IntCol("genMotherID"),
		features.IntCol("genMotherIndex"),
	)
	for _, h := range hard {
		tbl.Float("genPt", h.P4.Pt)
		tbl.Float("genEta", h.P4.Eta)
		tbl.Float("genPhi", h.P4.Phi)
		tbl.Float("genEnergy", h.P4.Energy)
		tbl.Int("genID", h.PdgID)
		tbl.Int("genIndex", h.Index)
		tbl.Int("genStatus", h.Status)
		tbl.Int("genMotherID", h.MotherPdgID)
		tbl.Int("genMotherIndex", h.MotherIndex)
	}
	tbl.WriteTo(sink)
}
