package malaria

import (
	"math"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Params holds every tuning parameter spec'd for the intrahost engine (spec
// §6), plus the small set of strategy choices added by this repository's
// expansion (§3 of SPEC_FULL.md) and the one derived quantity
// (HyperimmuneDecayRate) the upstream model computes from configuration
// rather than accepting directly. It is passed explicitly into Intrahost by
// Configure and threaded down into Susceptibility and Infection, never
// held as a package-level global (design note in spec §9).
type Params struct {
	RunNumber                int64
	MaxIndividualInfections  int

	FalciparumMSPVariants        int
	FalciparumNonspecificTypes   int
	FalciparumPfEMP1Variants     int

	BaseIncubationPeriod float64

	AntibodyIRBCKillRate                     float64
	NonspecificAntigenicityFactor             float64
	MSP1MerozoiteKillFraction                 float64
	GametocyteStageSurvivalRate               float64
	BaseGametocyteFractionMale                float64
	BaseGametocyteProductionRate              float64
	AntigenSwitchRate                         float64
	MerozoitesPerHepatocyte                   float64
	MerozoitesPerSchizont                     float64
	RBCDestructionMultiplier                  float64
	NumberOfAsexualCyclesWithoutGametocytes    int

	AntibodyMemoryLevel                    float64
	MaxMSP1AntibodyGrowthrate              float64
	AntibodyStimulationC50                 float64
	AntibodyCapacityGrowthRate              float64
	MinAdaptedResponse                     float64
	NonspecificAntibodyGrowthRateFactor     float64
	AntibodyCSPDecayDays                    float64

	MaternalAntibodyDecayRate   float64
	PyrogenicThreshold          float64
	FeverIRBCKillRate           float64
	ErythropoiesisAnemiaEffect  float64

	BaseGametocyteMosquitoSurvivalRate float64
	CytokineGametocyteInactivation     float64

	// HyperimmuneDecayRate is derived, not configured: see deriveRates.
	HyperimmuneDecayRate float64

	// InnateImmuneVariation, MaternalAntibodies and Switching select among
	// the strategy expansions documented in SPEC_FULL.md §3. Their zero
	// values (InnateImmuneVariationNone, MaternalAntibodiesOff,
	// SwitchingRatePerParasite7Vars) reproduce spec.md's behavior exactly.
	InnateImmuneVariation InnateImmuneVariationType
	MaternalAntibodies    MaternalAntibodiesType
	Switching             SwitchingModel

	// MaternalAntibodyInitialFraction/Level feed the two non-Off maternal
	// antibody models (SPEC_FULL.md §3); unused when MaternalAntibodies is
	// MaternalAntibodiesOff.
	MaternalAntibodyInitialFraction float64
	MaternalAntibodyInitialLevel    float64

	// DrugKillRate is the pluggable drug-killing collaborator named in
	// spec §1/§4.4. It defaults to always returning 0 (no drug effect).
	DrugKillRate func() float64
}

// requiredFloatKeys lists every spec §6 key with no engine-assigned
// default; NewParams rejects a raw map missing any of them.
var requiredFloatKeys = []string{
	"Run_Number",
	"Max_Individual_Infections",
	"Falciparum_MSP_Variants",
	"Falciparum_Nonspecific_Types",
	"Falciparum_PfEMP1_Variants",
	"Base_Incubation_Period",
	"Antibody_IRBC_Kill_Rate",
	"Nonspecific_Antigenicity_Factor",
	"MSP1_Merozoite_Kill_Fraction",
	"Gametocyte_Stage_Survival_Rate",
	"Base_Gametocyte_Fraction_Male",
	"Base_Gametocyte_Production_Rate",
	"Antigen_Switch_Rate",
	"Merozoites_Per_Hepatocyte",
	"Merozoites_Per_Schizont",
	"RBC_Destruction_Multiplier",
	"Number_Of_Asexual_Cycles_Without_Gametocytes",
	"Antibody_Memory_Level",
	"Max_MSP1_Antibody_Growthrate",
	"Antibody_Stimulation_C50",
	"Antibody_Capacity_Growth_Rate",
	"Min_Adapted_Response",
	"Nonspecific_Antibody_Growth_Rate_Factor",
	"Antibody_CSP_Decay_Days",
	"Maternal_Antibody_Decay_Rate",
	"Pyrogenic_Threshold",
	"Fever_IRBC_Kill_Rate",
	"Erythropoiesis_Anemia_Effect",
	"Base_Gametocyte_Mosquito_Survival_Rate",
	"Cytokine_Gametocyte_Inactivation",
}

// NewParams validates and converts the external parameter mapping (spec
// §1's "configuration ingestion from a parameter mapping" collaborator,
// already reduced to a decoded map by the time it reaches the core) into a
// Params value. A missing key is a configuration error (spec §7 kind 1);
// no partial Params is returned in that case.
func NewParams(raw map[string]float64) (*Params, error) {
	for _, key := range requiredFloatKeys {
		if _, ok := raw[key]; !ok {
			return nil, errors.Errorf(MissingConfigKeyError, key)
		}
	}

	p := &Params{
		RunNumber:                               int64(raw["Run_Number"]),
		MaxIndividualInfections:                 int(raw["Max_Individual_Infections"]),
		FalciparumMSPVariants:                    int(raw["Falciparum_MSP_Variants"]),
		FalciparumNonspecificTypes:               int(raw["Falciparum_Nonspecific_Types"]),
		FalciparumPfEMP1Variants:                 int(raw["Falciparum_PfEMP1_Variants"]),
		BaseIncubationPeriod:                     raw["Base_Incubation_Period"],
		AntibodyIRBCKillRate:                     raw["Antibody_IRBC_Kill_Rate"],
		NonspecificAntigenicityFactor:            raw["Nonspecific_Antigenicity_Factor"],
		MSP1MerozoiteKillFraction:                raw["MSP1_Merozoite_Kill_Fraction"],
		GametocyteStageSurvivalRate:              raw["Gametocyte_Stage_Survival_Rate"],
		BaseGametocyteFractionMale:               raw["Base_Gametocyte_Fraction_Male"],
		BaseGametocyteProductionRate:             raw["Base_Gametocyte_Production_Rate"],
		AntigenSwitchRate:                        raw["Antigen_Switch_Rate"],
		MerozoitesPerHepatocyte:                  raw["Merozoites_Per_Hepatocyte"],
		MerozoitesPerSchizont:                    raw["Merozoites_Per_Schizont"],
		RBCDestructionMultiplier:                 raw["RBC_Destruction_Multiplier"],
		NumberOfAsexualCyclesWithoutGametocytes:  int(raw["Number_Of_Asexual_Cycles_Without_Gametocytes"]),
		AntibodyMemoryLevel:                      raw["Antibody_Memory_Level"],
		MaxMSP1AntibodyGrowthrate:                raw["Max_MSP1_Antibody_Growthrate"],
		AntibodyStimulationC50:                   raw["Antibody_Stimulation_C50"],
		AntibodyCapacityGrowthRate:               raw["Antibody_Capacity_Growth_Rate"],
		MinAdaptedResponse:                       raw["Min_Adapted_Response"],
		NonspecificAntibodyGrowthRateFactor:      raw["Nonspecific_Antibody_Growth_Rate_Factor"],
		AntibodyCSPDecayDays:                     raw["Antibody_CSP_Decay_Days"],
		MaternalAntibodyDecayRate:                raw["Maternal_Antibody_Decay_Rate"],
		PyrogenicThreshold:                       raw["Pyrogenic_Threshold"],
		FeverIRBCKillRate:                        raw["Fever_IRBC_Kill_Rate"],
		ErythropoiesisAnemiaEffect:                raw["Erythropoiesis_Anemia_Effect"],
		BaseGametocyteMosquitoSurvivalRate:        raw["Base_Gametocyte_Mosquito_Survival_Rate"],
		CytokineGametocyteInactivation:            raw["Cytokine_Gametocyte_Inactivation"],
	}

	if p.AntibodyMemoryLevel <= 0 || p.AntibodyMemoryLevel >= 1 {
		return nil, errors.Errorf(InvalidConfigKeyError, "Antibody_Memory_Level", "must be in (0,1)")
	}
	p.deriveRates()
	p.DrugKillRate = func() float64 { return 0 }
	return p, nil
}

// deriveRates computes HyperimmuneDecayRate from AntibodyMemoryLevel, per
// spec §6: capacity decays toward the memory level, dropping below 0.4 in
// about 120 days starting from 1.0.
func (p *Params) deriveRates() {
	p.HyperimmuneDecayRate = -math.Log((0.4-p.AntibodyMemoryLevel)/(1-p.AntibodyMemoryLevel)) / 120
}

// LoadParams reads a TOML file into the raw parameter mapping NewParams
// expects. This is the CLI-facing half of spec §1's "configuration
// ingestion" collaborator — the core itself never touches a file, only the
// already-decoded map (see Intrahost.Configure).
func LoadParams(path string) (map[string]float64, error) {
	raw := make(map[string]float64)
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, errors.Wrapf(err, "loading parameters from %s", path)
	}
	return raw, nil
}
