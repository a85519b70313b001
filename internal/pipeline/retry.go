package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/strataworks/lithos/internal/guidance"
)

// RetryNode returns a state node that builds the retry prompt for a
// low-confidence attempt: model-supplied guidance when present, a canned
// prompt keyed by attempt number otherwise, and a generic prompt when the
// vision call itself failed.
func RetryNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("retry: %w", err)
		}

		attemptNumber := extractAttemptNumber(s)
		prompt := retryPrompt(s, req, attemptNumber)

		rt.Logger.InfoContext(
			ctx, "retry node complete",
			"attempt", attemptNumber,
			"message", prompt.Message,
			"suggested_zoom", prompt.SuggestedZoom,
		)

		s = s.Set(KeyRetry, &prompt)
		return s, nil
	})
}

func retryPrompt(s state.State, req Request, attemptNumber int) guidance.RetryPrompt {
	obs, err := extractObservation(s)
	if err != nil {
		return guidance.Fallback(attemptNumber)
	}

	if obs.RetryGuidance != "" {
		return guidance.Extract(obs.RetryGuidance, attemptNumber, req.Zoom)
	}

	return guidance.Canned(attemptNumber, obs.UncertaintyReason)
}
