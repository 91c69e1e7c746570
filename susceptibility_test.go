package malaria

import "testing"

func TestSusceptibility_ZeroInfectionsOnlyAges(t *testing.T) {
	p := testParams()
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)

	startAge := s.Age()
	s.Update(1)
	if s.Age() != startAge+1 {
		t.Errorf(UnequalFloatParameterError, "age after one tick", startAge+1, s.Age())
	}
	if s.ParasiteDensity() != 0 {
		t.Errorf(UnequalFloatParameterError, "parasite density with no infections", 0.0, s.ParasiteDensity())
	}
}

func TestSusceptibility_DtZeroIsNoop(t *testing.T) {
	p := testParams()
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)

	before := s.Age()
	rbcBefore := s.RBCCount()
	s.Update(0)
	if s.Age() != before {
		t.Errorf(UnequalFloatParameterError, "age after dt=0", before, s.Age())
	}
	if s.RBCCount() != rbcBefore {
		t.Errorf(UnequalIntParameterError, "rbc_count after dt=0", rbcBefore, s.RBCCount())
	}
}

func TestSusceptibility_RegisterAntibodyIsStable(t *testing.T) {
	p := testParams()
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)

	first := s.RegisterAntibody(MSP1, 3, 0.5)
	for i := uint16(0); i < 200; i++ {
		s.RegisterAntibody(MSP1, i+10, 0)
	}
	second := s.RegisterAntibody(MSP1, 3, 0.9)

	if first != second {
		t.Fatalf("expected the same *Antibody handle to be returned for a repeated (class, variant) pair")
	}
	if second.Capacity() != 0.5 {
		t.Errorf(UnequalFloatParameterError, "capacity of already-registered antibody", 0.5, second.Capacity())
	}
}

func TestSusceptibility_RBCAvailabilityBounded(t *testing.T) {
	p := testParams()
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)

	for i := 0; i < 365 * 30; i++ {
		s.Update(1)
		if a := s.RBCAvailability(); a < 0 {
			t.Fatalf("rbc_availability went negative: %v", a)
		}
	}
}
