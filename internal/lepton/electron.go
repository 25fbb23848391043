// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lepton

import (
	"math"

	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/pkg/types"
)

// Partner-track separation above which an electron is not a conversion.
const conversionCut = 0.02

// ElectronRecord is the feature set of one electron.
type ElectronRecord struct {
	// P4 is the ECAL-driven momentum.
	P4     types.Vec4
	Charge int

	RelIso float64
	Dxy    float64
	DZ     float64

	NotConversion    bool
	ChargeConsistent bool
	IsEB             bool
	IsEE             bool
	IsEBEEGap        bool

	Deta       float64
	Dphi       float64
	Sihih      float64
	HoE        float64
	D0         float64
	Ooemoop    float64
	MHits      int
	VtxFitConv bool

	ChIso  float64
	NhIso  float64
	PhIso  float64
	AEff   float64
	RhoIso float64

	Match *TruthMatch
}

// Momentum implements Record.
func (r *ElectronRecord) Momentum() types.Vec4 { return r.P4 }

// Truth implements Record.
func (r *ElectronRecord) Truth() *TruthMatch { return r.Match }

// EBEE returns the packed detector-region flags: gap<<2 | EE<<1 | EB.
func (r *ElectronRecord) EBEE() int {
	return b2i(r.IsEBEEGap)<<2 | b2i(r.IsEE)<<1 | b2i(r.IsEB)
}

func (r *ElectronRecord) fill(t *features.Table, prefix string) {
	t.Float(prefix+"Pt", r.P4.Pt)
	t.Float(prefix+"Eta", r.P4.Eta)
	t.Float(prefix+"Phi", r.P4.Phi)
	t.Float(prefix+"Energy", r.P4.Energy)
	t.Int(prefix+"Charge", r.Charge)
	t.Float(prefix+"RelIso", r.RelIso)
	t.Float(prefix+"Dxy", r.Dxy)
	t.Float(prefix+"DZ", r.DZ)
	t.Bool(prefix+"NotConversion", r.NotConversion)
	t.Bool(prefix+"ChargeConsistent", r.ChargeConsistent)
	t.Int(prefix+"IsEBEE", r.EBEE())
	t.Float(prefix+"Deta", r.Deta)
	t.Float(prefix+"Dphi", r.Dphi)
	t.Float(prefix+"Sihih", r.Sihih)
	t.Float(prefix+"HoE", r.HoE)
	t.Float(prefix+"D0", r.D0)
	t.Float(prefix+"Ooemoop", r.Ooemoop)
	t.Int(prefix+"MHits", r.MHits)
	t.Bool(prefix+"VtxFitConv", r.VtxFitConv)
	t.Float(prefix+"ChIso", r.ChIso)
	t.Float(prefix+"NhIso", r.NhIso)
	t.Float(prefix+"PhIso", r.PhIso)
	t.Float(prefix+"AEff", r.AEff)
	t.Float(prefix+"RhoIso", r.RhoIso)
}

// ElectronExtractor derives electron features.
type ElectronExtractor struct {
	Electrons []types.Electron
	// EA defaults to Data2012EA03.
	EA EffectiveArea
}

// Prefix implements Extractor.
func (ElectronExtractor) Prefix() string { return "el" }

// Species implements Extractor.
func (ElectronExtractor) Species() int { return SpeciesElectron }

// Columns implements Extractor.
func (ElectronExtractor) Columns() []features.Column {
	return []features.Column{
		features.FloatCol("elPt"),
		features.FloatCol("elEta"),
		features.FloatCol("elPhi"),
		features.FloatCol("elEnergy"),
		features.IntCol("elCharge"),
		features.FloatCol("elRelIso"),
		features.FloatCol("elDxy"),
		features.FloatCol("elDZ"),
		features.IntCol("elNotConversion"),
		features.IntCol("elChargeConsistent"),
		features.IntCol("elIsEBEE"),
		features.FloatCol("elDeta"),
		features.FloatCol("elDphi"),
		features.FloatCol("elSihih"),
		features.FloatCol("elHoE"),
		features.FloatCol("elD0"),
		features.FloatCol("elOoemoop"),
		features.IntCol("elMHits"),
		features.IntCol("elVtxFitConv"),
		features.FloatCol("elChIso"),
		features.FloatCol("elNhIso"),
		features.FloatCol("elPhIso"),
		features.FloatCol("elAEff"),
		features.FloatCol("elRhoIso"),
	}
}

// Records implements Extractor. Electrons without a GSF track are skipped.
func (x ElectronExtractor) Records(ec *EventContext) []Record {
	ea := x.EA
	if ea == nil {
		ea = Data2012EA03
	}
	var out []Record
	for i := range x.Electrons {
		e := &x.Electrons[i]
		if e.GsfTrack == nil {
			continue
		}
		out = append(out, x.record(e, ea, ec))
	}
	return out
}

func (x ElectronExtractor) record(e *types.Electron, ea EffectiveArea, ec *EventContext) *ElectronRecord {
	aeff := ea.EffectiveArea(e.SuperClusterEta)
	dxy, dz := impactParameters(*e.GsfTrack, ec.PV)
	missing := e.GsfTrack.MissingInnerHits

	return &ElectronRecord{
		P4:     e.EcalDrivenP4,
		Charge: e.Charge,
		RelIso: RelIso(e.ChargedHadronIso, e.NeutralHadronIso, e.PhotonIso,
			ec.Rho*aeff, e.P4.Pt),
		Dxy: dxy,
		DZ:  dz,
		NotConversion: missing == 0 &&
			(math.Abs(e.ConvDist) > conversionCut || math.Abs(e.ConvDcot) > conversionCut),
		ChargeConsistent: e.ChargeConsistent,
		IsEB:             e.IsEB,
		IsEE:             e.IsEE,
		IsEBEEGap:        e.IsEBEEGap,
		Deta:             e.DeltaEtaSCTrack,
		Dphi:             e.DeltaPhiSCTrack,
		Sihih:            e.SigmaIetaIeta,
		HoE:              e.HadronicOverEm,
		D0:               e.DB,
		Ooemoop:          ooemoop(e.EcalEnergy, e.ESuperClusterOverP),
		MHits:            missing,
		VtxFitConv:       e.PassConversionVeto,
		ChIso:            e.ChargedHadronIso,
		NhIso:            e.NeutralHadronIso,
		PhIso:            e.PhotonIso,
		AEff:             aeff,
		RhoIso:           ec.Rho,
		Match:            matchTruth(ec, x.Species(), e.P4.Eta, e.P4.Phi),
	}
}

// ooemoop returns 1/E + (E/p)/E for the ECAL energy E, or Undefined when E
// is zero.
func ooemoop(ecal, eOverP float64) float64 {
	if ecal == 0 {
		return Undefined
	}
	return 1/ecal + eOverP/ecal
}
