package malaria

import (
	"math"

	"github.com/pkg/errors"
)

const (
	daysPerYear          = 365.0
	adultRBCProduction   = 2e11
	infantRBCProduction  = 1.5e10
	averageRBCLifespan   = 120.0
	feverDegreesPerUnit  = 4.0
	cytokineScale        = 1.0
	adultInvMicroliters  = 1.0 / 5e6
)

// PfEMP1AntibodyPair holds the minor (cross-reactive) and major (variant)
// antibody references an Infection keeps per PfEMP1 clonal variant. It is
// non-owning: the underlying Antibody objects live in, and outlive, the
// Susceptibility's registry (spec §3's "weak references resolved through
// Susceptibility's registry").
type PfEMP1AntibodyPair struct {
	Minor *Antibody
	Major *Antibody
}

// Susceptibility is the host-level immune, red-blood-cell and fever state
// exclusively owned by one Intrahost. It also owns every Antibody the host
// has ever raised: because Go structs allocated with `new`/`&T{}` live on
// the heap independent of whatever slice or map holds their pointer, the
// registry below hands out *Antibody references that stay valid for the
// Susceptibility's entire lifetime regardless of how the registry's maps
// grow — the address-stability hazard flagged in the design notes (a raw
// C++ vector reallocating out from under a held pointer) doesn't arise.
type Susceptibility struct {
	params *Params
	rng    *RNG

	age float64

	rbcCount      int64
	rbcCapacity   int64
	rbcProduction int64

	invMicrolitersBlood float64

	cytokines                  float64
	cytokineStimulationPending float64
	parasiteDensity            float64
	maternalAntibodyStrength   float64

	indPyrogenicThreshold float64
	indFeverKillRate      float64

	antigenicFlag bool

	csp               *Antibody
	activeMSP         map[uint16]*Antibody
	activePfEMP1Minor map[uint16]*Antibody
	activePfEMP1Major map[uint16]*Antibody
}

// NewSusceptibility constructs a host's immune/RBC state at age 0, drawing
// individual heterogeneity and maternal antibody levels per the configured
// InnateImmuneVariationType and MaternalAntibodiesType (SPEC_FULL.md §3).
func NewSusceptibility(p *Params, rng *RNG) *Susceptibility {
	s := &Susceptibility{
		params:            p,
		rng:               rng,
		indPyrogenicThreshold: p.PyrogenicThreshold,
		indFeverKillRate:      p.FeverIRBCKillRate,
		activeMSP:         make(map[uint16]*Antibody),
		activePfEMP1Minor: make(map[uint16]*Antibody),
		activePfEMP1Major: make(map[uint16]*Antibody),
	}
	s.recalculateBlood()

	switch p.InnateImmuneVariation {
	case InnateImmuneVariationPyrogenicThreshold:
		s.indPyrogenicThreshold = p.PyrogenicThreshold * (1 + 0.1*rng.Gaussian())
	case InnateImmuneVariationCytokineKilling:
		s.indFeverKillRate = p.FeverIRBCKillRate * (1 + 0.1*rng.Gaussian())
	case InnateImmuneVariationPyrogenicThresholdVsAge:
		s.indPyrogenicThreshold = p.PyrogenicThreshold * (1 + 0.1*rng.Gaussian())
		s.indFeverKillRate = p.FeverIRBCKillRate * (1 + 0.1*rng.Gaussian())
	}

	switch p.MaternalAntibodies {
	case MaternalAntibodiesSimpleWaning:
		s.maternalAntibodyStrength = p.MaternalAntibodyInitialFraction
	case MaternalAntibodiesConstantInitialImmunity:
		s.maternalAntibodyStrength = p.MaternalAntibodyInitialLevel
	}

	return s
}

// RegisterAntibody returns the antibody for (class, variant), creating it
// lazily with the given initial capacity on first use. CSP has a single
// variant-0 singleton; the other three classes look the variant up in a
// per-class map keyed by variant id and create the antibody on a miss. The
// returned reference is stable for the Susceptibility's lifetime.
func (s *Susceptibility) RegisterAntibody(class AntibodyClass, variant uint16, capacity float64) *Antibody {
	switch class {
	case CSP:
		if s.csp == nil {
			s.csp = newAntibody(CSP, 0, capacity)
		}
		return s.csp
	case MSP1:
		return registerInto(s.activeMSP, MSP1, variant, capacity)
	case PfEMP1Minor:
		return registerInto(s.activePfEMP1Minor, PfEMP1Minor, variant, capacity)
	case PfEMP1Major:
		return registerInto(s.activePfEMP1Major, PfEMP1Major, variant, capacity)
	default:
		panic(errors.Errorf(UnknownAntibodyClassError, int(class)))
	}
}

func registerInto(m map[uint16]*Antibody, class AntibodyClass, variant uint16, capacity float64) *Antibody {
	if ab, ok := m[variant]; ok {
		return ab
	}
	ab := newAntibody(class, variant, capacity)
	m[variant] = ab
	return ab
}

// UpdateActiveAntibody fills whichever slot of pair is still nil by
// registering the corresponding minor/major antibody; idempotent once
// both slots are populated.
func (s *Susceptibility) UpdateActiveAntibody(pair *PfEMP1AntibodyPair, minorVariant, majorVariant uint16) {
	if pair.Minor == nil {
		pair.Minor = s.RegisterAntibody(PfEMP1Minor, minorVariant, 0)
	}
	if pair.Major == nil {
		pair.Major = s.RegisterAntibody(PfEMP1Major, majorVariant, 0)
	}
}

// CSPAntibody returns the host's singleton CSP antibody, registering it
// with zero initial capacity if this is the host's first CSP exposure.
func (s *Susceptibility) CSPAntibody() *Antibody {
	return s.RegisterAntibody(CSP, 0, 0)
}

// SetAntigenPresent marks that some infection observed antigen this tick;
// the Susceptibility's own next Update reads the flag and clears it at the
// end of that Update (spec §5's one-tick-flag ordering contract).
func (s *Susceptibility) SetAntigenPresent() {
	s.antigenicFlag = true
}

// RemoveRBCs decrements the RBC stock for merozoite invasion and
// gametocyte maturation losses.
func (s *Susceptibility) RemoveRBCs(infectedAsexual, infectedGametocytes int64, destructionMultiplier float64) {
	s.rbcCount -= int64(math.Floor(float64(infectedAsexual)*destructionMultiplier)) + infectedGametocytes
}

// Age returns the host's age in days.
func (s *Susceptibility) Age() float64 { return s.age }

// RBCCount returns the current red blood cell stock.
func (s *Susceptibility) RBCCount() int64 { return s.rbcCount }

// RBCAvailability returns rbc_count / rbc_capacity, or 0 if capacity is 0.
func (s *Susceptibility) RBCAvailability() float64 {
	if s.rbcCapacity == 0 {
		return 0
	}
	return float64(s.rbcCount) / float64(s.rbcCapacity)
}

// InvMicrolitersBlood returns the reciprocal of the host's blood volume in
// microliters, used to convert raw antigen counts into a concentration.
func (s *Susceptibility) InvMicrolitersBlood() float64 { return s.invMicrolitersBlood }

// Fever returns the cytokine-driven fever magnitude (degrees above
// baseline); FeverCelsius adds the 37C baseline.
func (s *Susceptibility) Fever() float64         { return feverDegreesPerUnit * s.cytokines }
func (s *Susceptibility) FeverCelsius() float64  { return 37 + s.Fever() }
func (s *Susceptibility) ParasiteDensity() float64 { return s.parasiteDensity }
func (s *Susceptibility) Cytokines() float64       { return s.cytokines }
func (s *Susceptibility) MaternalAntibodyStrength() float64 { return s.maternalAntibodyStrength }
func (s *Susceptibility) PyrogenicThreshold() float64       { return s.indPyrogenicThreshold }
func (s *Susceptibility) FeverKillRate() float64            { return s.indFeverKillRate }

// recalculateBlood derives rbc_production, rbc_capacity and
// inv_microliters_blood from the host's current age, per spec §4.3's
// piecewise blood-capacity rule.
func (s *Susceptibility) recalculateBlood() {
	ageYears := s.age / daysPerYear
	if ageYears <= 20 {
		frac := ageYears / 20
		s.rbcProduction = int64(infantRBCProduction + frac*(adultRBCProduction-infantRBCProduction))
		bloodVolumeLiters := 0.225*ageYears + 0.5
		s.invMicrolitersBlood = 1.0 / (bloodVolumeLiters * 1e6)
	} else {
		s.rbcProduction = int64(adultRBCProduction)
		s.invMicrolitersBlood = adultInvMicroliters
	}
	s.rbcCapacity = s.rbcProduction * averageRBCLifespan
	if s.rbcCount == 0 && s.age == 0 {
		s.rbcCount = s.rbcCapacity
	}
}

// Update advances the host's immune, RBC, cytokine and fever state by dt
// days, in the strict order spec §4.3 requires.
func (s *Susceptibility) Update(dt float64) {
	p := s.params

	// 1. age and blood capacity
	s.age += dt
	s.recalculateBlood()

	// 2. RBC dynamics
	rbcAvailability := s.RBCAvailability()
	erythMultiplier := 1.0
	if p.ErythropoiesisAnemiaEffect > 0 {
		erythMultiplier = math.Exp(p.ErythropoiesisAnemiaEffect * (1 - rbcAvailability))
	}
	s.rbcCount -= int64((float64(s.rbcCount)/averageRBCLifespan - float64(s.rbcProduction)*erythMultiplier) * dt)

	// 3. cytokine decay
	s.cytokines -= s.cytokines * 2 * dt
	if s.cytokines < 0 {
		s.cytokines = 0
	}

	// 4. parasite density reset
	s.parasiteDensity = 0

	// 5. maternal antibody decay
	if p.MaternalAntibodies != MaternalAntibodiesOff {
		s.maternalAntibodyStrength *= math.Exp(-p.MaternalAntibodyDecayRate * dt)
	}

	// 6. CSP always updates
	csp := s.CSPAntibody()
	if !csp.AntigenPresent() {
		csp.Decay(dt, p)
	} else if csp.Capacity() > bCellProlifThreshold {
		csp.UpdateCapacityByRate(dt, bCellProlifRate)
		csp.UpdateConcentration(dt, p)
	}

	// 7. branch on antigenic flag
	if !s.antigenicFlag {
		for _, ab := range s.activeMSP {
			ab.Decay(dt, p)
		}
		for _, ab := range s.activePfEMP1Minor {
			ab.Decay(dt, p)
		}
		for _, ab := range s.activePfEMP1Major {
			ab.Decay(dt, p)
		}
		return
	}

	var tempCytokineStim float64
	for _, ab := range s.activeMSP {
		if ab.AntigenPresent() {
			tempCytokineStim += ab.StimulateCytokines(dt, s.invMicrolitersBlood)
			ab.UpdateCapacity(dt, s.invMicrolitersBlood, p)
			ab.UpdateConcentration(dt, p)
		} else {
			ab.Decay(dt, p)
		}
	}
	for _, ab := range s.activePfEMP1Minor {
		ab.UpdateCapacity(dt, s.invMicrolitersBlood, p)
		ab.UpdateConcentration(dt, p)
		s.parasiteDensity += float64(ab.AntigenCount()) * s.invMicrolitersBlood
	}
	for _, ab := range s.activePfEMP1Major {
		if ab.Capacity() <= bCellProlifThreshold {
			s.cytokineStimulationPending += ab.StimulateCytokines(dt, s.invMicrolitersBlood)
		}
		ab.UpdateCapacity(dt, s.invMicrolitersBlood, p)
		ab.UpdateConcentration(dt, p)
	}

	s.cytokines += cytokineScale * basicSigmoid(s.indPyrogenicThreshold, s.cytokineStimulationPending) * dt * 2
	s.cytokines += cytokineScale * basicSigmoid(s.indPyrogenicThreshold, tempCytokineStim)

	s.cytokineStimulationPending = 0
	s.antigenicFlag = false
	for _, ab := range s.activeMSP {
		ab.ResetCounters()
	}
	for _, ab := range s.activePfEMP1Minor {
		ab.ResetCounters()
	}
	for _, ab := range s.activePfEMP1Major {
		ab.ResetCounters()
	}
}
