package malaria

import "testing"

func TestIntrahost_ChallengeRespectsMax(t *testing.T) {
	p := testParams()
	p.MaxIndividualInfections = 3

	h := NewIntrahost()
	if err := h.Configure(p); err != nil {
		t.Fatalf("configure: %v", err)
	}

	for i := 0; i < 3; i++ {
		h.Challenge()
	}
	if h.NumInfections() != 3 {
		t.Errorf(UnequalIntParameterError, "infections after 3 challenges", 3, h.NumInfections())
	}

	h.Challenge()
	if h.NumInfections() != 3 {
		t.Errorf("expected Challenge to be a no-op once max_ind_inf is reached, got %d infections", h.NumInfections())
	}
}

func TestIntrahost_TreatWipesAll(t *testing.T) {
	p := testParams()
	p.MaxIndividualInfections = 3

	h := NewIntrahost()
	if err := h.Configure(p); err != nil {
		t.Fatalf("configure: %v", err)
	}
	for i := 0; i < 3; i++ {
		h.Challenge()
	}
	if h.NumInfections() != 3 {
		t.Fatalf("setup failed: expected 3 infections, got %d", h.NumInfections())
	}

	h.Treat()
	if h.NumInfections() != 0 {
		t.Errorf(UnequalIntParameterError, "infections after Treat", 0, h.NumInfections())
	}

	if err := h.Update(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.ParasiteDensity() != 0 {
		t.Errorf(UnequalFloatParameterError, "parasite density after Treat", 0.0, h.ParasiteDensity())
	}
}

func TestIntrahost_ClearanceRemovesInfection(t *testing.T) {
	p := testParams()
	p.AntibodyIRBCKillRate = 20
	p.BaseGametocyteProductionRate = 0

	h := NewIntrahost()
	if err := h.Configure(p); err != nil {
		t.Fatalf("configure: %v", err)
	}
	h.Challenge()

	cleared := false
	for i := 0; i < 2000; i++ {
		if err := h.Update(1); err != nil {
			// host death ends the simulation without the infection
			// clearing, so the check below fails.
			break
		}
		if h.NumInfections() == 0 {
			cleared = true
			break
		}
	}

	if !cleared {
		t.Fatalf("expected the infection to clear within 2000 ticks under an elevated kill rate")
	}
	if h.ParasiteDensity() != 0 {
		t.Errorf(UnequalFloatParameterError, "parasite density after clearance", 0.0, h.ParasiteDensity())
	}
}

func TestIntrahost_Determinism(t *testing.T) {
	p1 := testParams()
	p2 := testParams()

	h1 := NewIntrahost()
	h2 := NewIntrahost()
	if err := h1.Configure(p1); err != nil {
		t.Fatalf("configure h1: %v", err)
	}
	if err := h2.Configure(p2); err != nil {
		t.Fatalf("configure h2: %v", err)
	}

	h1.Challenge()
	h2.Challenge()

	for i := 0; i < 200; i++ {
		err1 := h1.Update(1)
		err2 := h2.Update(1)
		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("hosts diverged on error at tick %d: %v vs %v", i, err1, err2)
		}
		if err1 != nil {
			break
		}
		if h1.ParasiteDensity() != h2.ParasiteDensity() {
			t.Fatalf("parasite density diverged at tick %d: %v vs %v", i, h1.ParasiteDensity(), h2.ParasiteDensity())
		}
		if h1.FeverCelsius() != h2.FeverCelsius() {
			t.Fatalf("fever diverged at tick %d: %v vs %v", i, h1.FeverCelsius(), h2.FeverCelsius())
		}
	}
}

func TestIntrahost_ZeroInfectionsBoundary(t *testing.T) {
	p := testParams()
	h := NewIntrahost()
	if err := h.Configure(p); err != nil {
		t.Fatalf("configure: %v", err)
	}

	if err := h.Update(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.ParasiteDensity() != 0 || h.GametocyteDensity() != 0 || h.Infectiousness() != 0 {
		t.Errorf("expected all density readouts to be zero with no infections")
	}
}
