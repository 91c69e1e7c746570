package malaria

// GametocyteStage is the ordered sexual-stage development sequence a
// gametocyte cohort passes through one stage per asexual cycle, with
// Mature being terminal until decay/killing removes it.
type GametocyteStage int

const (
	Stage0 GametocyteStage = iota
	Stage1
	Stage2
	Stage3
	Stage4
	Mature
	gametocyteStageCount
)

// AsexualPhase tracks where an Infection sits relative to the liver stage.
// HepatocyteRelease exists for exactly one tick: the tick on which
// hepatocytes release their merozoites into the first asexual cycle,
// during which the irbc_timer must not be decremented (spec §3/§4.4).
type AsexualPhase int

const (
	AsexualPhaseNone AsexualPhase = iota
	AsexualPhaseHepatocyteRelease
	AsexualPhaseCycle
)

// InnateImmuneVariationType selects how a host's individual heterogeneity
// in fever response (ind_pyrogenic_threshold, ind_fever_kill_rate) is
// drawn. SPEC_FULL.md §3 expansion; None is the default every spec.md
// scenario assumes.
type InnateImmuneVariationType int

const (
	InnateImmuneVariationNone InnateImmuneVariationType = iota
	InnateImmuneVariationPyrogenicThreshold
	InnateImmuneVariationCytokineKilling
	InnateImmuneVariationPyrogenicThresholdVsAge
)

// MaternalAntibodiesType selects how maternal_antibody_strength is seeded.
// SPEC_FULL.md §3 expansion; Off is the default every spec.md scenario
// assumes (maternal_antibody_strength stays 0 for the host's lifetime).
type MaternalAntibodiesType int

const (
	MaternalAntibodiesOff MaternalAntibodiesType = iota
	MaternalAntibodiesSimpleWaning
	MaternalAntibodiesConstantInitialImmunity
)

// SwitchingModel selects the antigenic switching strategy an Infection
// uses at the end of each asexual cycle. SPEC_FULL.md §3 expansion;
// RatePerParasite7Vars reproduces spec.md §4.4's switching algorithm
// exactly and is the default.
type SwitchingModel int

const (
	SwitchingRatePerParasite7Vars SwitchingModel = iota
	SwitchingConstantRate2Vars
)
