// Package geology holds the structured geological vocabulary shared by the
// identification pipeline: rock classes, denormalized formation records, and
// the keyword heuristics that infer rock attributes from lithology strings.
package geology

// RockClass is the top-level genetic classification of a rock.
type RockClass string

// Recognized rock classes.
const (
	Igneous     RockClass = "Igneous"
	Sedimentary RockClass = "Sedimentary"
	Metamorphic RockClass = "Metamorphic"
)

// Formation is a denormalized regional geology record, either mapped from a
// richer external geology dataset or synthesized from a lithology string.
type Formation struct {
	Name        string    `json:"name"`
	RockType    RockClass `json:"rock_type"`
	Lithology   string    `json:"lithology"`
	AgeRange    string    `json:"age_range"`
	Period      string    `json:"period"`
	Environment string    `json:"environment"`
	Description string    `json:"description"`
	VisualCues  []string  `json:"visual_cues"`
	Minerals    []string  `json:"minerals"`
	Hardness    string    `json:"hardness"`
	CommonUses  []string  `json:"common_uses"`
}

// Synthesize builds a Formation from a unit name and lithology string,
// inferring every secondary attribute from the lithology keyword tables.
func Synthesize(name, lithology, ageRange, period, environment string) Formation {
	return Formation{
		Name:        name,
		RockType:    InferRockType(lithology),
		Lithology:   lithology,
		AgeRange:    ageRange,
		Period:      period,
		Environment: environment,
		Description: describeLithology(lithology),
		VisualCues:  InferVisualCues(lithology),
		Minerals:    InferMinerals(lithology),
		Hardness:    InferHardness(lithology),
		CommonUses:  InferUses(lithology),
	}
}

func describeLithology(lithology string) string {
	if lithology == "" {
		return "Regional bedrock unit."
	}
	return "Bedrock unit composed primarily of " + lithology + "."
}
