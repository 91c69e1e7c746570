package malaria

// testParams returns a complete, valid Params value for use across the
// test suite, tuned to the defaults spec.md §8's scenarios assume.
func testParams() *Params {
	raw := map[string]float64{
		"Run_Number":                   1,
		"Max_Individual_Infections":    5,
		"Falciparum_MSP_Variants":      5,
		"Falciparum_Nonspecific_Types": 10,
		"Falciparum_PfEMP1_Variants":   1000,

		"Base_Incubation_Period": 7,

		"Antibody_IRBC_Kill_Rate":                       0.2,
		"Nonspecific_Antigenicity_Factor":               0.415,
		"MSP1_Merozoite_Kill_Fraction":                  0.511,
		"Gametocyte_Stage_Survival_Rate":                0.82,
		"Base_Gametocyte_Fraction_Male":                 0.2,
		"Base_Gametocyte_Production_Rate":               0.05,
		"Antigen_Switch_Rate":                           0.0005,
		"Merozoites_Per_Hepatocyte":                      15000,
		"Merozoites_Per_Schizont":                        16,
		"RBC_Destruction_Multiplier":                     3.5,
		"Number_Of_Asexual_Cycles_Without_Gametocytes":   2,

		"Antibody_Memory_Level":                    0.34,
		"Max_MSP1_Antibody_Growthrate":              0.032,
		"Antibody_Stimulation_C50":                  30,
		"Antibody_Capacity_Growth_Rate":              0.02,
		"Min_Adapted_Response":                       0.02,
		"Nonspecific_Antibody_Growth_Rate_Factor":     0.416,
		"Antibody_CSP_Decay_Days":                     90,

		"Maternal_Antibody_Decay_Rate":  0.01,
		"Pyrogenic_Threshold":           15000,
		"Fever_IRBC_Kill_Rate":          0.003,
		"Erythropoiesis_Anemia_Effect":  3.5,

		"Base_Gametocyte_Mosquito_Survival_Rate": 0.8,
		"Cytokine_Gametocyte_Inactivation":        0.02,
	}
	p, err := NewParams(raw)
	if err != nil {
		panic(err)
	}
	return p
}
