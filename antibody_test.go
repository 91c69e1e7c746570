package malaria

import "testing"

func TestAntibody_DecayInAbsenceOfAntigen(t *testing.T) {
	p := testParams()
	ab := newAntibody(MSP1, 0, 1)
	ab.SetConcentration(1)

	for i := 0; i < 120; i++ {
		ab.Decay(1, p)
	}

	if ab.Concentration() < 0 || ab.Concentration() > 1 {
		t.Fatalf("concentration left valid range: %v", ab.Concentration())
	}
	// (1-0.05)^120 ~= 0.00213
	if got := ab.Concentration(); got > 0.01 {
		t.Errorf("expected concentration decayed close to 0, got %v", got)
	}
	if ab.Capacity() <= p.AntibodyMemoryLevel-1e-9 {
		t.Errorf("capacity decayed below the memory level floor: %v", ab.Capacity())
	}
}

func TestAntibody_CapacityStaysInRange(t *testing.T) {
	p := testParams()
	ab := newAntibody(MSP1, 0, 0)
	for i := 0; i < 1000; i++ {
		ab.IncreaseAntigenCount(1000)
		ab.UpdateCapacity(1, 1e-6, p)
		ab.UpdateConcentration(1, p)
		if ab.Capacity() < 0 || ab.Capacity() > 1 {
			t.Fatalf("capacity out of [0,1]: %v", ab.Capacity())
		}
		if ab.Concentration() < 0 || ab.Concentration() > ab.Capacity() {
			t.Fatalf("concentration out of [0,capacity]: conc=%v cap=%v", ab.Concentration(), ab.Capacity())
		}
		ab.ResetCounters()
	}
}

func TestAntibody_IncreaseAntigenCountClampsNegative(t *testing.T) {
	ab := newAntibody(MSP1, 0, 0)
	ab.IncreaseAntigenCount(-5)
	if ab.AntigenCount() != 0 || ab.AntigenPresent() {
		t.Errorf("negative antigen count should be a no-op, got count=%d present=%v", ab.AntigenCount(), ab.AntigenPresent())
	}
}
