package geology

import "strings"

// classLithologyKeywords maps each rock class to lithology keywords that
// indicate a geologically plausible setting for rocks of that class.
var classLithologyKeywords = map[RockClass][]string{
	Sedimentary: {"limestone", "sandstone", "shale", "dolomite"},
	Igneous:     {"granite", "basalt", "volcanic", "lava"},
	Metamorphic: {"gneiss", "schist", "slate", "marble", "quartzite"},
}

// Normalize lower-cases and trims a rock or formation name for comparison
// and cache keying.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NamesAgree reports whether two rock names refer to the same identification
// using bidirectional substring containment rather than exact equality, so
// "Granite" agrees with "pink granite".
func NamesAgree(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// ClassMatchesLithology reports whether any of the given lithologies contains
// a keyword associated with the rock class.
func ClassMatchesLithology(class RockClass, lithologies []string) bool {
	keywords, ok := classLithologyKeywords[class]
	if !ok {
		return false
	}

	for _, lith := range lithologies {
		lowered := strings.ToLower(lith)
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				return true
			}
		}
	}
	return false
}

// ParseRockClass maps a free-form rock type string onto a RockClass,
// tolerating case differences and descriptive suffixes.
func ParseRockClass(s string) (RockClass, bool) {
	lowered := strings.ToLower(s)
	switch {
	case strings.Contains(lowered, "igneous"):
		return Igneous, true
	case strings.Contains(lowered, "sedimentary"):
		return Sedimentary, true
	case strings.Contains(lowered, "metamorphic"):
		return Metamorphic, true
	default:
		return "", false
	}
}
