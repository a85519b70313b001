package geology

import "strings"

// Rule pairs a lithology keyword with the value it implies. Tables of rules
// are consulted in order; the first keyword contained in the lithology wins.
type Rule[T any] struct {
	Keyword string
	Value   T
}

// FirstMatch scans rules in order and returns the value of the first rule
// whose keyword appears in text (case-insensitive), or fallback when none do.
func FirstMatch[T any](rules []Rule[T], text string, fallback T) T {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		if strings.Contains(lowered, rule.Keyword) {
			return rule.Value
		}
	}
	return fallback
}

var rockTypeRules = []Rule[RockClass]{
	{"granite", Igneous},
	{"basalt", Igneous},
	{"rhyolite", Igneous},
	{"andesite", Igneous},
	{"gabbro", Igneous},
	{"obsidian", Igneous},
	{"pumice", Igneous},
	{"volcanic", Igneous},
	{"lava", Igneous},
	{"igneous", Igneous},
	{"gneiss", Metamorphic},
	{"schist", Metamorphic},
	{"slate", Metamorphic},
	{"marble", Metamorphic},
	{"quartzite", Metamorphic},
	{"phyllite", Metamorphic},
	{"metamorphic", Metamorphic},
	{"limestone", Sedimentary},
	{"sandstone", Sedimentary},
	{"shale", Sedimentary},
	{"dolomite", Sedimentary},
	{"mudstone", Sedimentary},
	{"siltstone", Sedimentary},
	{"conglomerate", Sedimentary},
	{"chalk", Sedimentary},
}

var hardnessRules = []Rule[string]{
	{"quartzite", "7"},
	{"granite", "6-7"},
	{"basalt", "6"},
	{"gneiss", "6-7"},
	{"sandstone", "6-7"},
	{"marble", "3-5"},
	{"limestone", "3-4"},
	{"dolomite", "3.5-4"},
	{"slate", "3-4"},
	{"schist", "4-5"},
	{"shale", "2-3"},
	{"chalk", "1-2"},
	{"mudstone", "2-3"},
}

var mineralRules = []Rule[[]string]{
	{"granite", []string{"quartz", "feldspar", "mica"}},
	{"basalt", []string{"plagioclase", "pyroxene", "olivine"}},
	{"limestone", []string{"calcite", "aragonite"}},
	{"dolomite", []string{"dolomite", "calcite"}},
	{"sandstone", []string{"quartz", "feldspar"}},
	{"shale", []string{"clay minerals", "quartz"}},
	{"marble", []string{"calcite", "dolomite"}},
	{"gneiss", []string{"quartz", "feldspar", "biotite"}},
	{"schist", []string{"mica", "quartz", "garnet"}},
	{"slate", []string{"clay minerals", "mica", "chlorite"}},
	{"quartzite", []string{"quartz"}},
}

var usesRules = []Rule[[]string]{
	{"granite", []string{"countertops", "monuments", "building stone"}},
	{"basalt", []string{"road base", "construction aggregate"}},
	{"limestone", []string{"cement", "building stone", "soil conditioner"}},
	{"dolomite", []string{"construction aggregate", "steelmaking flux"}},
	{"sandstone", []string{"building stone", "paving"}},
	{"shale", []string{"brick", "cement"}},
	{"marble", []string{"sculpture", "flooring", "countertops"}},
	{"slate", []string{"roofing", "flooring"}},
	{"quartzite", []string{"countertops", "railroad ballast"}},
}

var visualCueRules = []Rule[[]string]{
	{"granite", []string{"speckled light and dark crystals", "coarse interlocking grains"}},
	{"basalt", []string{"dark gray to black color", "fine-grained, sometimes vesicular"}},
	{"limestone", []string{"light gray to tan color", "may contain visible fossils"}},
	{"sandstone", []string{"visible sand grains", "layered bedding"}},
	{"shale", []string{"thin flat layers", "splits into sheets"}},
	{"marble", []string{"sugary crystalline texture", "often veined"}},
	{"gneiss", []string{"alternating light and dark bands"}},
	{"schist", []string{"shiny mica-rich surface", "wavy foliation"}},
	{"slate", []string{"dull flat cleavage planes"}},
	{"quartzite", []string{"glassy appearance", "fused sand grains"}},
}

var (
	defaultMinerals   = []string{"quartz", "feldspar"}
	defaultUses       = []string{"construction", "aggregate"}
	defaultVisualCues = []string{"examine grain size and color"}
)

// InferRockType infers the rock class from a lithology string,
// defaulting to Sedimentary when nothing matches.
func InferRockType(lithology string) RockClass {
	return FirstMatch(rockTypeRules, lithology, Sedimentary)
}

// InferHardness infers a Mohs hardness range from a lithology string.
func InferHardness(lithology string) string {
	return FirstMatch(hardnessRules, lithology, "Variable")
}

// InferMinerals infers the dominant mineral list from a lithology string.
func InferMinerals(lithology string) []string {
	return FirstMatch(mineralRules, lithology, defaultMinerals)
}

// InferUses infers typical commercial uses from a lithology string.
func InferUses(lithology string) []string {
	return FirstMatch(usesRules, lithology, defaultUses)
}

// InferVisualCues infers identifying visual cues from a lithology string.
func InferVisualCues(lithology string) []string {
	return FirstMatch(visualCueRules, lithology, defaultVisualCues)
}
