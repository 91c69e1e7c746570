package malaria

import (
	"math"
	"testing"
)

func TestInfection_LiverStageLatency(t *testing.T) {
	p := testParams()
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)
	inf := NewInfection(1, s, rng, p, 1)

	for i := 0; i < 6; i++ {
		if err := inf.Update(1); err != nil {
			t.Fatalf("unexpected error before incubation completes: %v", err)
		}
		if inf.hepatocytes == 0 {
			t.Fatalf("hepatocytes released too early, at tick %d", i+1)
		}
	}

	if err := inf.Update(1); err != nil {
		t.Fatalf("unexpected error on release tick: %v", err)
	}

	if inf.hepatocytes != 0 {
		t.Errorf(UnequalIntParameterError, "hepatocytes after tick 7", 0, inf.hepatocytes)
	}
	if inf.asexualPhase != AsexualPhaseCycle {
		t.Errorf("expected asexual_phase == AsexualCycle after tick 7, got %v", inf.asexualPhase)
	}
	if inf.irbcTimer != 2 {
		t.Errorf(UnequalFloatParameterError, "irbc_timer after tick 7", 2.0, inf.irbcTimer)
	}

	total := inf.IRBCTotal()
	if math.Abs(float64(total)-15000) > 50 {
		t.Errorf(UnequalIntParameterError, "total IRBC after tick 7", 15000, total)
	}
	for i := 0; i < initialPfEMP1Variants; i++ {
		if inf.irbcCount[i] != 3000 {
			t.Errorf("expected variant %d seeded with 3000 IRBCs, got %d", i, inf.irbcCount[i])
		}
	}
}

func TestInfection_FirstAsexualCycleMultiplies(t *testing.T) {
	p := testParams()
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)
	inf := NewInfection(1, s, rng, p, 1)

	for i := 0; i < 9; i++ {
		if err := inf.Update(1); err != nil {
			t.Fatalf("unexpected error at tick %d: %v", i+1, err)
		}
	}

	total := float64(inf.IRBCTotal())
	expected := 15000 * p.MerozoitesPerSchizont // merozoite_survival ~= 1 at this early age
	if total < expected*0.5 || total > expected*1.5 {
		t.Errorf("expected total IRBC near %v after first asexual cycle, got %v", expected, total)
	}
}

func TestInfection_ClearanceDefinition(t *testing.T) {
	p := testParams()
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)
	inf := NewInfection(1, s, rng, p, 1)

	if inf.IsCleared() {
		t.Fatalf("freshly created infection with hepatocytes should not be cleared")
	}
	inf.hepatocytes = 0
	if !inf.IsCleared() {
		t.Fatalf("expected clearance once hepatocytes and all IRBC/gametocyte stages are zero")
	}
	inf.irbcCount[10] = 1
	if inf.IsCleared() {
		t.Fatalf("expected not cleared while any irbc_count is positive")
	}
}

func TestInfection_DtZeroNoop(t *testing.T) {
	p := testParams()
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)
	inf := NewInfection(1, s, rng, p, 1)

	before := inf.liverStageTimer
	if err := inf.Update(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inf.liverStageTimer != before {
		t.Errorf(UnequalFloatParameterError, "liver_stage_timer after dt=0", before, inf.liverStageTimer)
	}
}

func TestInfection_ConstantRateSwitchingStaysWithinNeighbor(t *testing.T) {
	p := testParams()
	p.Switching = SwitchingConstantRate2Vars
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)
	inf := NewInfection(1, s, rng, p, 1)

	for i := 0; i < 9; i++ {
		if err := inf.Update(1); err != nil {
			t.Fatalf("unexpected error at tick %d: %v", i+1, err)
		}
	}

	if inf.IRBCTotal() <= 0 {
		t.Fatalf("expected ConstantRate2Vars switching to still produce surviving IRBCs, got %d", inf.IRBCTotal())
	}
	for j, c := range inf.irbcCount {
		if c < 0 {
			t.Errorf("variant %d went negative under ConstantRate2Vars switching: %d", j, c)
		}
		if j > initialPfEMP1Variants && c != 0 {
			t.Errorf("variant %d lies beyond the single neighbor of the seeded variants but holds %d IRBCs", j, c)
		}
	}
}

func TestInfection_EndOfAsexualCycleRejectsNegativeMerozoiteSurvival(t *testing.T) {
	p := testParams()
	p.MSP1MerozoiteKillFraction = 10 // forces merozoite_survival < 0 at nonzero antibody concentration
	rng := NewRNG(uint64(p.RunNumber))
	s := NewSusceptibility(p, rng)
	inf := NewInfection(1, s, rng, p, 1)
	inf.mspAntibody.SetConcentration(1)

	// Ticks 1-8 cover incubation (release at tick 7) and the first
	// irbc_timer countdown; the first end-of-cycle rupture lands on tick 9.
	for i := 0; i < 8; i++ {
		if err := inf.Update(1); err != nil {
			t.Fatalf("unexpected error before the first end-of-cycle rupture: %v", err)
		}
	}

	err := inf.Update(1)
	if err == nil {
		t.Fatalf("expected an invariant violation once merozoite_survival goes negative")
	}
	if _, ok := err.(*InvariantViolationError); !ok {
		t.Errorf("expected *InvariantViolationError, got %T: %v", err, err)
	}
}
