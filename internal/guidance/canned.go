package guidance

import "strings"

// Canned retry prompts keyed by attempt number, used when the vision model
// returned no usable free-text guidance.
var cannedPrompts = map[int]RetryPrompt{
	1: {
		Message:    "The image is unclear",
		Suggestion: "Hold the camera steady and make sure the rock fills most of the frame.",
	},
	2: {
		Message:    "More surface texture is needed",
		Suggestion: "Move closer so the grain and texture of the surface are visible.",
	},
	3: {
		Message:    "Try a different angle",
		Suggestion: "Photograph a freshly exposed or broken face in good light.",
	},
}

// Canned returns the retry prompt for an attempt number. An uncertainty
// reason hint overrides the attempt-based choice: blur selects the
// attempt-1 prompt and texture the attempt-2 prompt.
func Canned(attemptNumber int, uncertaintyReason string) RetryPrompt {
	key := min(max(attemptNumber, 1), 3)

	reason := strings.ToLower(uncertaintyReason)
	switch {
	case strings.Contains(reason, "blur"):
		key = 1
	case strings.Contains(reason, "texture"):
		key = 2
	}

	prompt := cannedPrompts[key]
	prompt.AttemptNumber = attemptNumber
	return prompt
}

// Fallback is the generic prompt used when an attempt failed for reasons
// unrelated to image quality, such as a network or parse error.
func Fallback(attemptNumber int) RetryPrompt {
	return RetryPrompt{
		Message:       "Something went wrong",
		Suggestion:    "Please try taking the photo again.",
		AttemptNumber: attemptNumber,
	}
}
