package malaria

import (
	"log"
	"math"
)

const (
	clonalPfEMP1Variants   = 50
	minorEpitopeVarsPerSet = 5
	initialPfEMP1Variants  = 5
	switchingVariantCount  = 10
	merozoiteLimitingRBC   = 0.2
	minFeverDegreesKilling = 1.5
	matureGametocyteDecay  = 0.277
	irbcCycleLengthDays    = 2.0
)

// Infection is one clonal parasite population within a host: a liver-stage
// cohort that, once released, cycles through fifty co-resident IRBC
// variants, antigenically switches among them, and sheds gametocytes.
// It holds non-owning references into its Susceptibility's antibody
// registry (spec §9's stable-handle re-architecture: these are ordinary Go
// pointers into heap-allocated Antibody values, never invalidated by
// registry growth).
type Infection struct {
	suid   uint64
	s      *Susceptibility
	rng    *RNG
	params *Params

	liverStageTimer   float64
	irbcTimer         float64
	hepatocytes       int64
	asexualPhase      AsexualPhase
	asexualCycleCount int64

	mspType          uint16
	nonspecType      uint16
	minorEpitopeType [clonalPfEMP1Variants]uint16
	irbcType         [clonalPfEMP1Variants]uint16
	irbcCount        [clonalPfEMP1Variants]int64

	maleGametocytes   [gametocyteStageCount]int64
	femaleGametocytes [gametocyteStageCount]int64
	gametorate        float64
	gametosexratio    float64

	mspAntibody *Antibody
	pfemp1      [clonalPfEMP1Variants]PfEMP1AntibodyPair
}

// NewInfection draws a clonal parasite's surface-antigen identity (msp_type,
// nonspec_type, and each clonal variant's irbc_type/minor_epitope_type) from
// the host RNG, registers its MSP antibody immediately, and leaves its
// PfEMP1 antibody pairs unregistered until the liver stage releases (spec
// §4.4 Create).
func NewInfection(suid uint64, s *Susceptibility, rng *RNG, p *Params, initialHepatocytes int64) *Infection {
	inf := &Infection{
		suid:        suid,
		s:           s,
		rng:         rng,
		params:      p,
		hepatocytes: initialHepatocytes,
	}
	inf.mspType = rng.UniformBelow(uint16(p.FalciparumMSPVariants))
	inf.nonspecType = rng.UniformBelow(uint16(p.FalciparumNonspecificTypes))
	for i := 0; i < clonalPfEMP1Variants; i++ {
		inf.irbcType[i] = rng.UniformBelow(uint16(p.FalciparumPfEMP1Variants))
		inf.minorEpitopeType[i] = inf.nonspecType*5 + rng.UniformBelow(minorEpitopeVarsPerSet)
	}
	inf.mspAntibody = s.RegisterAntibody(MSP1, inf.mspType, 0)
	return inf
}

// SUID returns this infection's host-local monotonic identifier.
func (inf *Infection) SUID() uint64 { return inf.suid }

// IRBCTotal returns the sum of all fifty clonal IRBC counts.
func (inf *Infection) IRBCTotal() int64 {
	var total int64
	for _, c := range inf.irbcCount {
		total += c
	}
	return total
}

// IsCleared reports whether this infection has no remaining parasite
// biomass in any stage (spec §4.4 Clearance).
func (inf *Infection) IsCleared() bool {
	if inf.hepatocytes != 0 {
		return false
	}
	if inf.IRBCTotal() != 0 {
		return false
	}
	for i := 0; i < int(gametocyteStageCount); i++ {
		if inf.maleGametocytes[i] != 0 || inf.femaleGametocytes[i] != 0 {
			return false
		}
	}
	return true
}

// Update advances this infection one tick. A non-nil *HostDeathError return
// means the host's RBC stock has gone non-positive; the caller (Intrahost)
// must stop calling Update on any infection of that host.
func (inf *Infection) Update(dt float64) error {
	inf.liverStageTimer += dt

	if inf.hepatocytes > 0 {
		inf.hepatocytePhase()
	}

	if inf.asexualPhase > AsexualPhaseNone {
		if inf.asexualPhase == AsexualPhaseHepatocyteRelease {
			inf.asexualPhase = AsexualPhaseCycle
		} else {
			inf.irbcTimer -= dt
		}

		if inf.irbcTimer <= 0 {
			if err := inf.endOfAsexualCycle(); err != nil {
				return err
			}
		}

		if inf.s.RBCCount() < 1 {
			return &HostDeathError{HostAge: inf.s.Age(), RBCs: inf.s.RBCCount()}
		}

		inf.immuneStimulation()
		inf.irbcKilling(dt)
		inf.gametocyteKilling(dt)

		inf.mspAntibody.IncreaseAntigenCount(1)
		inf.s.SetAntigenPresent()
	}

	return nil
}

// hepatocytePhase releases the liver-stage cohort into the first asexual
// cycle once liver_stage_timer reaches the incubation period (spec §4.4).
func (inf *Infection) hepatocytePhase() {
	p := inf.params
	if inf.liverStageTimer < p.BaseIncubationPeriod || inf.asexualPhase != AsexualPhaseNone {
		return
	}

	for i := range inf.irbcCount {
		inf.irbcCount[i] = 0
	}
	seeded := int64(math.Floor(float64(inf.hepatocytes) * p.MerozoitesPerHepatocyte / initialPfEMP1Variants))
	for i := 0; i < initialPfEMP1Variants; i++ {
		inf.irbcCount[i] = seeded
		inf.s.UpdateActiveAntibody(&inf.pfemp1[i], inf.minorEpitopeType[i], inf.irbcType[i])
	}
	inf.hepatocytes = 0
	inf.irbcTimer = irbcCycleLengthDays
	inf.asexualPhase = AsexualPhaseHepatocyteRelease
}

// endOfAsexualCycle runs schizont rupture: merozoite survival, gametocyte
// cycling, antigenic switching, RBC removal, and cycle-counter advance
// (spec §4.4 "End of asexual cycle").
func (inf *Infection) endOfAsexualCycle() error {
	p := inf.params

	rbcAvail := inf.s.RBCAvailability()
	merozoiteSurvival := (1 - p.MSP1MerozoiteKillFraction*inf.mspAntibody.Concentration()) * expCDF(-rbcAvail/merozoiteLimitingRBC)
	if merozoiteSurvival < 0 {
		return &InvariantViolationError{Where: "endOfAsexualCycle.merozoiteSurvival", Value: merozoiteSurvival}
	}

	inf.mspAntibody.IncreaseAntigenCount(inf.IRBCTotal())

	inf.cycleGametocytes(merozoiteSurvival)
	inf.antigenicSwitching(merozoiteSurvival)

	totalNewIRBC := inf.IRBCTotal()
	for i := 0; i < clonalPfEMP1Variants; i++ {
		if inf.irbcCount[i] > 0 {
			inf.s.UpdateActiveAntibody(&inf.pfemp1[i], inf.minorEpitopeType[i], inf.irbcType[i])
		}
	}

	destructionFactor := p.RBCDestructionMultiplier * expCDF(-rbcAvail/merozoiteLimitingRBC)
	if destructionFactor < 1 {
		destructionFactor = 1
	}
	newGametocytes := inf.maleGametocytes[Stage0] + inf.femaleGametocytes[Stage0]
	inf.s.RemoveRBCs(totalNewIRBC, newGametocytes, destructionFactor)

	inf.irbcTimer = irbcCycleLengthDays
	inf.asexualCycleCount++
	return nil
}

// antigenicSwitching dispatches to the configured SwitchingModel (SPEC_FULL.md
// §3): the default reproduces spec §4.4's algorithm exactly, while
// ConstantRate2Vars plugs in the simplified legacy strategy.
func (inf *Infection) antigenicSwitching(merozoiteSurvival float64) {
	switch inf.params.Switching {
	case SwitchingConstantRate2Vars:
		inf.antigenicSwitchingConstantRate(merozoiteSurvival)
	default:
		inf.antigenicSwitchingRatePerParasite(merozoiteSurvival)
	}
}

// antigenicSwitchingRatePerParasite redistributes each variant's surviving
// merozoites across itself and up to ten neighboring clonal slots (spec §4.4
// "Antigenic switching"). Preserves the described RNG draw order: one
// Poisson draw per active switching slot (k<7) per variant.
func (inf *Infection) antigenicSwitchingRatePerParasite(merozoiteSurvival float64) {
	p := inf.params
	var tmp [clonalPfEMP1Variants]int64

	for j := 0; j < clonalPfEMP1Variants; j++ {
		if inf.irbcCount[j] <= 0 {
			continue
		}

		var switching [switchingVariantCount]float64
		for k := 0; k < switchingVariantCount; k++ {
			if k < 7 {
				switching[k] = float64(inf.rng.Poisson(p.AntigenSwitchRate * float64(inf.irbcCount[j])))
			}
		}

		var sumSwitch float64
		for _, v := range switching {
			sumSwitch += v
		}

		capVal := (1 - inf.gametorate) * float64(inf.irbcCount[j])
		if sumSwitch > capVal && sumSwitch > 0 {
			scale := capVal / sumSwitch
			for k := range switching {
				switching[k] *= scale
			}
			sumSwitch = capVal
		}

		tmp[j] += int64((capVal - sumSwitch) * p.MerozoitesPerSchizont * merozoiteSurvival)
		for k := 0; k < switchingVariantCount; k++ {
			dst := (j + k + 1) % clonalPfEMP1Variants
			tmp[dst] += int64(switching[k] * p.MerozoitesPerSchizont * merozoiteSurvival)
		}
	}

	inf.irbcCount = tmp
}

// antigenicSwitchingConstantRate is the simplified legacy switching
// strategy (SPEC_FULL.md §3, SwitchingModel=ConstantRate2Vars): each
// variant splits its surviving merozoites between itself and exactly one
// fixed neighbor, at a constant fraction of irbc_count[j] rather than a
// Poisson draw, so the switched fraction doesn't vary with density.
func (inf *Infection) antigenicSwitchingConstantRate(merozoiteSurvival float64) {
	p := inf.params
	var tmp [clonalPfEMP1Variants]int64

	for j := 0; j < clonalPfEMP1Variants; j++ {
		if inf.irbcCount[j] <= 0 {
			continue
		}

		capVal := (1 - inf.gametorate) * float64(inf.irbcCount[j])
		switched := capVal * p.AntigenSwitchRate
		if switched > capVal {
			switched = capVal
		}

		dst := (j + 1) % clonalPfEMP1Variants
		tmp[j] += int64((capVal - switched) * p.MerozoitesPerSchizont * merozoiteSurvival)
		tmp[dst] += int64(switched * p.MerozoitesPerSchizont * merozoiteSurvival)
	}

	inf.irbcCount = tmp
}

// cycleGametocytes advances the sexual-stage cohorts by one stage (iterating
// high-to-low to avoid overwriting values mid-pass) and seeds new Stage0
// gametocytes from this cycle's surviving merozoites, once the infection
// has run long enough to start producing them (spec §4.4 "Gametocyte
// cycling").
func (inf *Infection) cycleGametocytes(merozoiteSurvival float64) {
	p := inf.params

	if inf.asexualCycleCount >= int64(p.NumberOfAsexualCyclesWithoutGametocytes) {
		inf.gametorate = p.BaseGametocyteProductionRate
		inf.gametosexratio = p.BaseGametocyteFractionMale
	}

	for k := int(Mature); k >= 1; k-- {
		inf.maleGametocytes[k] += int64(float64(inf.maleGametocytes[k-1]) * p.GametocyteStageSurvivalRate)
		inf.maleGametocytes[k-1] = 0
		if inf.maleGametocytes[k] < 1 {
			inf.maleGametocytes[k] = 0
		}

		inf.femaleGametocytes[k] += int64(float64(inf.femaleGametocytes[k-1]) * p.GametocyteStageSurvivalRate)
		inf.femaleGametocytes[k-1] = 0
		if inf.femaleGametocytes[k] < 1 {
			inf.femaleGametocytes[k] = 0
		}
	}

	for j := 0; j < clonalPfEMP1Variants; j++ {
		if inf.irbcCount[j] <= 0 {
			continue
		}
		base := float64(inf.irbcCount[j]) * inf.gametorate * merozoiteSurvival * p.MerozoitesPerSchizont
		inf.maleGametocytes[Stage0] += int64(base * inf.gametosexratio)
		inf.femaleGametocytes[Stage0] += int64(base * (1 - inf.gametosexratio))
	}
}

// immuneStimulation feeds each variant's current IRBC count into its
// PfEMP1 major and minor antibodies' antigen counters, registering the
// pair lazily the first time a variant becomes positive (spec §4.4 Create
// note; spec §7 kind 4 for the defensive negative-count clamp).
func (inf *Infection) immuneStimulation() {
	for i := 0; i < clonalPfEMP1Variants; i++ {
		if inf.irbcCount[i] < 0 {
			log.Printf("infection %d: negative irbc_count[%d]=%d clamped to 0", inf.suid, i, inf.irbcCount[i])
			inf.irbcCount[i] = 0
		}
		if inf.irbcCount[i] == 0 {
			continue
		}
		inf.s.UpdateActiveAntibody(&inf.pfemp1[i], inf.minorEpitopeType[i], inf.irbcType[i])
		inf.pfemp1[i].Major.IncreaseAntigenCount(inf.irbcCount[i])
		inf.pfemp1[i].Minor.IncreaseAntigenCount(inf.irbcCount[i])
	}
}

// irbcKilling applies antibody- and fever-driven IRBC death to every
// positive variant, via a Gaussian approximation to the underlying
// binomial kill with continuity correction (spec §4.4 "IRBC killing").
func (inf *Infection) irbcKilling(dt float64) {
	p := inf.params

	var feverKillRate float64
	if inf.s.Fever() > minFeverDegreesKilling {
		feverKillRate = inf.s.FeverKillRate() * basicSigmoid(1, inf.s.Fever()-minFeverDegreesKilling)
	}

	for i := 0; i < clonalPfEMP1Variants; i++ {
		if inf.irbcCount[i] <= 0 {
			continue
		}
		var majorConc, minorConc float64
		if inf.pfemp1[i].Major != nil {
			majorConc = inf.pfemp1[i].Major.Concentration()
		}
		if inf.pfemp1[i].Minor != nil {
			minorConc = inf.pfemp1[i].Minor.Concentration()
		}

		k := (majorConc+p.NonspecificAntigenicityFactor*minorConc+inf.s.MaternalAntibodyStrength())*p.AntibodyIRBCKillRate + feverKillRate + p.DrugKillRate()
		pkill := expCDF(-dt * k)

		n := float64(inf.irbcCount[i])
		expected := n * pkill
		variance := n * pkill * (1 - pkill)
		killedFloat := inf.rng.Gaussian()*math.Sqrt(variance) + expected
		if killedFloat < 0.5 {
			killedFloat = 0
		}
		killed := int64(killedFloat + 0.5)

		inf.irbcCount[i] -= killed
		if inf.irbcCount[i] < 0 {
			inf.irbcCount[i] = 0
		}
	}
}

// gametocyteKilling applies the immature-stage deterministic kill and the
// mature-stage stochastic decay (spec §4.4 "Immature gametocyte killing",
// "Mature gametocyte decay"). Exactly two gaussian() draws are consumed
// here per tick, female then male, per the design notes' RNG-ordering
// contract.
func (inf *Infection) gametocyteKilling(dt float64) {
	p := inf.params

	pkillImmature := expCDF(-dt * p.DrugKillRate())
	for stage := 0; stage < int(Mature); stage++ {
		inf.maleGametocytes[stage] -= int64(float64(inf.maleGametocytes[stage])*pkillImmature + 0.5)
		inf.femaleGametocytes[stage] -= int64(float64(inf.femaleGametocytes[stage])*pkillImmature + 0.5)
		if inf.maleGametocytes[stage] < 0 {
			inf.maleGametocytes[stage] = 0
		}
		if inf.femaleGametocytes[stage] < 0 {
			inf.femaleGametocytes[stage] = 0
		}
	}

	pkillMature := expCDF(-dt * (matureGametocyteDecay + p.DrugKillRate()))

	femaleN := float64(inf.femaleGametocytes[Mature])
	femaleKilled := inf.rng.Gaussian()*math.Sqrt(femaleN*pkillMature*(1-pkillMature)) + femaleN*pkillMature
	if femaleKilled < 0.5 {
		femaleKilled = 0
	}
	inf.femaleGametocytes[Mature] -= int64(femaleKilled + 0.5)
	if inf.femaleGametocytes[Mature] < 0 {
		inf.femaleGametocytes[Mature] = 0
	}

	maleN := float64(inf.maleGametocytes[Mature])
	maleKilled := inf.rng.Gaussian()*math.Sqrt(maleN*pkillMature*(1-pkillMature)) + maleN*pkillMature
	if maleKilled < 0.5 {
		maleKilled = 0
	}
	inf.maleGametocytes[Mature] -= int64(maleKilled + 0.5)
	if inf.maleGametocytes[Mature] < 0 {
		inf.maleGametocytes[Mature] = 0
	}
}
