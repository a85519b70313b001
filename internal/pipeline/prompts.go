package pipeline

import (
	"fmt"
	"strings"

	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/internal/rockid"
)

const classifyInstructions = `You are a field geologist identifying a rock specimen from a photograph.

Respond with a single JSON object:
{
  "name": "most likely rock name",
  "rock_type": "Igneous | Sedimentary | Metamorphic",
  "confidence": 0.0,
  "description": "two or three sentences about the rock",
  "what_it_looks_like": ["visible characteristics"],
  "minerals": ["likely constituent minerals"],
  "hardness": "Mohs range, e.g. 3-4",
  "common_uses": ["typical uses"],
  "uncertainty_reason": "blur | texture | angle (only when confidence is low)",
  "retry_guidance": "how to take a better photo (only when confidence is low)"
}

Confidence is your honest probability that the name is correct, between 0 and 1.`

const verifyInstructions = `You are a second field geologist giving an independent opinion on a rock photograph. Another geologist identified this specimen as %q (%s). Do not assume they are right.

Respond with a single JSON object:
{
  "secondary_identification": "your own most likely rock name",
  "reasoning": "one or two sentences"
}`

func classifyPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(classifyInstructions)

	if hint := locationHint(req.Location); hint != "" {
		b.WriteString("\n\n")
		b.WriteString(hint)
	}

	return b.String()
}

func verifyPrompt(primaryName string, primaryType geology.RockClass, loc *rockid.LocationContext) string {
	prompt := fmt.Sprintf(verifyInstructions, primaryName, primaryType)

	if hint := locationHint(loc); hint != "" {
		prompt += "\n\n" + hint
	}

	return prompt
}

func locationHint(loc *rockid.LocationContext) string {
	if loc == nil {
		return ""
	}

	hint := fmt.Sprintf("The photo was taken near %.4f, %.4f.", loc.Latitude, loc.Longitude)
	if loc.Formation != "" {
		hint += fmt.Sprintf(" Local bedrock: %s.", loc.Formation)
	}

	return hint
}
