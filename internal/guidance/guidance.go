// Package guidance turns free-text "why this photo was inconclusive"
// feedback from the vision model into a structured retry prompt, including
// an optional camera zoom adjustment inferred from distance cues.
package guidance

import (
	"regexp"
	"strings"
)

// ZoomLevels is the discrete set of camera zoom positions, ordered from
// widest to tightest. The values map to the 1x/2x/4x/8x zoom labels.
var ZoomLevels = []float64{0, 0.25, 0.5, 0.75}

var zoomLabels = map[float64]string{
	0:    "1x",
	0.25: "2x",
	0.5:  "4x",
	0.75: "8x",
}

// ZoomLabel returns the camera UI label for a zoom level, or an empty
// string for a value outside the discrete set.
func ZoomLabel(zoom float64) string {
	return zoomLabels[zoom]
}

// RetryPrompt instructs the user how to re-photograph the specimen.
// SuggestedZoom, when set, always differs from the zoom active at the
// time of the attempt.
type RetryPrompt struct {
	Message       string   `json:"message"`
	Suggestion    string   `json:"suggestion"`
	AttemptNumber int      `json:"attempt_number"`
	SuggestedZoom *float64 `json:"suggested_zoom,omitempty"`
}

var (
	tooClosePattern = regexp.MustCompile(`(?i)too close|step back|zoom out|further away`)
	tooFarPattern   = regexp.MustCompile(`(?i)too far|get closer|zoom in|more detail`)
	sentenceEnd     = regexp.MustCompile(`[.!?]+\s+`)
)

// Extract builds a RetryPrompt from free-text model guidance. The first
// sentence becomes the message and the remainder the suggestion; distance
// cues anywhere in the text step the zoom one notch toward the implied
// direction, unless the current zoom is already at that boundary.
func Extract(text string, attemptNumber int, currentZoom float64) RetryPrompt {
	message, suggestion := splitGuidance(text)

	prompt := RetryPrompt{
		Message:       message,
		Suggestion:    suggestion,
		AttemptNumber: attemptNumber,
	}

	switch {
	case tooClosePattern.MatchString(text):
		if zoom, ok := stepDown(currentZoom); ok {
			prompt.SuggestedZoom = &zoom
			prompt.Suggestion = substituteLabel(prompt.Suggestion, tooClosePattern, zoom)
		}
	case tooFarPattern.MatchString(text):
		if zoom, ok := stepUp(currentZoom); ok {
			prompt.SuggestedZoom = &zoom
			prompt.Suggestion = substituteLabel(prompt.Suggestion, tooFarPattern, zoom)
		}
	}

	return prompt
}

func splitGuidance(text string) (message, suggestion string) {
	text = strings.TrimSpace(text)

	loc := sentenceEnd.FindStringIndex(text)
	if loc == nil {
		return text, text
	}

	message = strings.TrimSpace(text[:loc[1]])
	suggestion = strings.TrimSpace(text[loc[1]:])
	if suggestion == "" {
		suggestion = text
	}

	return message, suggestion
}

func stepDown(current float64) (float64, bool) {
	for i, level := range ZoomLevels {
		if level == current && i > 0 {
			return ZoomLevels[i-1], true
		}
	}
	return 0, false
}

func stepUp(current float64) (float64, bool) {
	for i, level := range ZoomLevels {
		if level == current && i < len(ZoomLevels)-1 {
			return ZoomLevels[i+1], true
		}
	}
	return 0, false
}

func substituteLabel(suggestion string, pattern *regexp.Regexp, zoom float64) string {
	label := ZoomLabel(zoom)
	if label == "" {
		return suggestion
	}
	return pattern.ReplaceAllString(suggestion, label)
}
