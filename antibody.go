package malaria

// AntibodyClass identifies which of the four surface-antigen classes an
// Antibody tracks. The four classes share the bulk of their update rule
// (Decay, ResetCounters, UpdateConcentration) and differ only in small,
// disjoint ways (see the class switches in Decay, UpdateConcentration and
// UpdateCapacity below) — a tagged-variant dispatch rather than a class
// hierarchy, per the design notes.
type AntibodyClass int

const (
	CSP AntibodyClass = iota
	MSP1
	PfEMP1Minor
	PfEMP1Major
)

func (c AntibodyClass) String() string {
	switch c {
	case CSP:
		return "CSP"
	case MSP1:
		return "MSP1"
	case PfEMP1Minor:
		return "PfEMP1_minor"
	case PfEMP1Major:
		return "PfEMP1_major"
	default:
		return "unknown"
	}
}

const (
	nonTrivialAntibody   = 1e-7
	twentyDayDecay       = 0.05
	bCellProlifThreshold = 0.4
	bCellProlifRate      = 0.33
	releaseThreshold     = 0.3
	releaseFactor        = 4.0
)

// Antibody is the boost/decay state for a single (class, variant) pair.
// It has value semantics; Susceptibility owns the storage and hands out
// stable handles (see Susceptibility.RegisterAntibody) rather than copies once an
// Antibody has been registered.
type Antibody struct {
	class   AntibodyClass
	variant uint16

	capacity      float64
	concentration float64

	antigenCount   uint64
	antigenPresent bool
}

// newAntibody constructs an antibody of the given class and variant with
// the supplied initial capacity; concentration always starts at 0.
func newAntibody(class AntibodyClass, variant uint16, capacity float64) *Antibody {
	return &Antibody{class: class, variant: variant, capacity: capacity}
}

func (a *Antibody) Class() AntibodyClass    { return a.class }
func (a *Antibody) Variant() uint16         { return a.variant }
func (a *Antibody) Capacity() float64       { return a.capacity }
func (a *Antibody) Concentration() float64  { return a.concentration }
func (a *Antibody) AntigenCount() uint64    { return a.antigenCount }
func (a *Antibody) AntigenPresent() bool    { return a.antigenPresent }
func (a *Antibody) SetCapacity(v float64)   { a.capacity = v }
func (a *Antibody) SetConcentration(v float64) { a.concentration = v }

// IncreaseAntigenCount accumulates antigen exposure for this tick. Negative
// counts are defensively clamped to a no-op per spec §7 kind 4.
func (a *Antibody) IncreaseAntigenCount(n int64) {
	if n > 0 {
		a.antigenCount += uint64(n)
		a.antigenPresent = true
	}
}

// SetAntigenPresent forces the presence flag directly, used where the
// caller has already established presence through other means (e.g. the
// CSP exposure path).
func (a *Antibody) SetAntigenPresent(present bool) {
	a.antigenPresent = present
}

// ResetCounters clears the per-tick antigen accumulator.
func (a *Antibody) ResetCounters() {
	a.antigenPresent = false
	a.antigenCount = 0
}

// StimulateCytokines returns the cytokine contribution of this antibody's
// antigen exposure, weighted down as circulating concentration rises.
func (a *Antibody) StimulateCytokines(dt, invMicrolitersBlood float64) float64 {
	return (1 - a.concentration) * float64(a.antigenCount) * invMicrolitersBlood
}

// Decay applies the generic twenty-day concentration decay and the
// hyperimmune capacity decay toward the configured memory level, except
// for CSP, which decays a boosted concentration on its own schedule.
func (a *Antibody) Decay(dt float64, p *Params) {
	if a.class == CSP && a.concentration > a.capacity {
		a.concentration -= a.concentration * dt / p.AntibodyCSPDecayDays
		return
	}
	if a.concentration > nonTrivialAntibody {
		a.concentration -= a.concentration * twentyDayDecay * dt
	}
	if a.capacity > p.AntibodyMemoryLevel {
		a.capacity -= (a.capacity - p.AntibodyMemoryLevel) * p.HyperimmuneDecayRate * dt
	}
}

// UpdateConcentration releases antibodies from capacity once capacity
// clears releaseThreshold, except for CSP, whose boosted (post-vaccine)
// concentration decays on its own schedule instead of being released.
func (a *Antibody) UpdateConcentration(dt float64, p *Params) {
	if a.class == CSP && a.concentration > a.capacity {
		a.concentration -= a.concentration * dt / p.AntibodyCSPDecayDays
		return
	}
	if a.capacity > releaseThreshold {
		a.concentration += (a.capacity - a.concentration) * releaseFactor * dt
	}
	if a.concentration > a.capacity {
		a.concentration = a.capacity
	}
}

// UpdateCapacityByRate grows capacity toward 1 at a caller-supplied rate,
// used for the CSP fast-path in Susceptibility.Update.
func (a *Antibody) UpdateCapacityByRate(dt, growthRate float64) {
	a.capacity += growthRate * dt * (1 - a.capacity)
	if a.capacity > 1 {
		a.capacity = 1
	}
}

// UpdateCapacity grows capacity according to the class-specific rule
// (MSP1's plain sigmoid-driven growth, or PfEMP1's minor/major variants
// with a minimum-adapted-response floor and branched proliferation).
func (a *Antibody) UpdateCapacity(dt, invMicrolitersBlood float64, p *Params) {
	switch a.class {
	case MSP1, CSP:
		a.updateCapacityMSP(dt, invMicrolitersBlood, p)
	case PfEMP1Minor:
		a.updateCapacityPfEMP1(dt, invMicrolitersBlood, p, p.AntibodyCapacityGrowthRate*p.NonspecificAntibodyGrowthRateFactor)
	case PfEMP1Major:
		a.updateCapacityPfEMP1(dt, invMicrolitersBlood, p, p.AntibodyCapacityGrowthRate)
	}
}

func (a *Antibody) updateCapacityMSP(dt, invMicrolitersBlood float64, p *Params) {
	stim := basicSigmoid(p.AntibodyStimulationC50, float64(a.antigenCount)*invMicrolitersBlood)
	a.capacity += p.MaxMSP1AntibodyGrowthrate * (1 - a.capacity) * stim
	if a.capacity > bCellProlifThreshold {
		a.capacity += (1 - a.capacity) * bCellProlifRate * dt
	}
	if a.capacity > 1 {
		a.capacity = 1
	}
}

func (a *Antibody) updateCapacityPfEMP1(dt, invMicrolitersBlood float64, p *Params, growthRate float64) {
	if a.capacity <= bCellProlifThreshold {
		minStimulation := p.AntibodyStimulationC50 * p.MinAdaptedResponse
		stim := basicSigmoid(p.AntibodyStimulationC50, float64(a.antigenCount)*invMicrolitersBlood+minStimulation)
		a.capacity += growthRate * dt * (1 - a.capacity) * stim
		if a.capacity > 1 {
			a.capacity = 1
		}
	} else {
		a.capacity += (1 - a.capacity) * bCellProlifRate * dt
	}
}
