package malaria

import "github.com/pkg/errors"

const microlitersPerBloodmeal = 2.0

// Intrahost is a single host's complete parasite-dynamics state: one owned
// Susceptibility plus an ordered collection of owned Infections, configured
// once from a Params value (spec §4.5).
type Intrahost struct {
	params *Params
	rng    *RNG

	susceptibility *Susceptibility
	infections     []*Infection
	suids          suidGenerator
}

// NewIntrahost builds an unconfigured host. Configure must be called before
// Challenge or Update.
func NewIntrahost() *Intrahost {
	return &Intrahost{}
}

// Configure installs p (already validated by NewParams), constructing this host's
// Susceptibility and RNG. It is the one entry point named in spec §6,
// recursively pushing p down into Susceptibility; Infection construction
// receives it later, from Challenge.
func (h *Intrahost) Configure(p *Params) error {
	h.params = p
	h.rng = NewRNG(uint64(p.RunNumber))
	h.susceptibility = NewSusceptibility(p, h.rng)
	h.infections = nil
	return nil
}

// Challenge creates a new Infection seeded with one hepatocyte, unless the
// host already carries max_ind_inf concurrent infections, in which case it
// is a no-op.
func (h *Intrahost) Challenge() {
	if len(h.infections) >= h.params.MaxIndividualInfections {
		return
	}
	suid := h.suids.Next()
	h.infections = append(h.infections, NewInfection(suid, h.susceptibility, h.rng, h.params, 1))
}

// Treat deletes every active infection. Drug-killing as a gradual
// refinement to this "wipe" semantics is a future collaborator (spec §4.5).
func (h *Intrahost) Treat() {
	h.infections = nil
}

// Update advances this host by dt days: Susceptibility first, establishing
// the antibody state this tick's infections observe, then each infection in
// insertion order, removing any that clear (spec §5's ordering contract). If
// an infection's Update returns an error (host death or an invariant
// violation), Update returns it at once, wrapped with that infection's suid;
// the remaining infections are not updated and nothing is removed for it.
func (h *Intrahost) Update(dt float64) error {
	h.susceptibility.Update(dt)

	live := h.infections[:0]
	for _, inf := range h.infections {
		if err := inf.Update(dt); err != nil {
			return errors.Wrapf(err, "infection %d", inf.SUID())
		}
		if !inf.IsCleared() {
			live = append(live, inf)
		}
	}
	h.infections = live
	return nil
}

// NumInfections returns the number of currently active infections.
func (h *Intrahost) NumInfections() int { return len(h.infections) }

// ParasiteDensity returns total asexual parasite density across all
// infections, in parasites per microliter of blood.
func (h *Intrahost) ParasiteDensity() float64 {
	inv := h.susceptibility.InvMicrolitersBlood()
	var total float64
	for _, inf := range h.infections {
		total += float64(inf.IRBCTotal()) * inv
	}
	return total
}

// GametocyteDensity returns total mature female gametocyte density, the
// transmissible fraction, in parasites per microliter of blood.
func (h *Intrahost) GametocyteDensity() float64 {
	inv := h.susceptibility.InvMicrolitersBlood()
	var total int64
	for _, inf := range h.infections {
		total += inf.femaleGametocytes[Mature]
	}
	return float64(total) * inv
}

// FeverCelsius returns the host's current body temperature.
func (h *Intrahost) FeverCelsius() float64 { return h.susceptibility.FeverCelsius() }

// Infectiousness returns the probability a feeding mosquito acquires
// infection from this host this tick (spec §4.5).
func (h *Intrahost) Infectiousness() float64 {
	p := h.params
	gametoDensity := h.GametocyteDensity()
	cytokines := h.susceptibility.Cytokines()
	suppression := 1 - basicSigmoid(p.CytokineGametocyteInactivation, cytokines)
	return expCDF(-gametoDensity * microlitersPerBloodmeal * p.BaseGametocyteMosquitoSurvivalRate * suppression)
}
