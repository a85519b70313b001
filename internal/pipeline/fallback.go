package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// FallbackNode returns a state node for exhausted sessions: the terminal
// location-fallback result replaces the low-confidence candidate and no
// further retries are offered.
func FallbackNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("fallback: %w", err)
		}

		result := rt.Fallback.Resolve(ctx, req.Location)

		rt.Logger.InfoContext(
			ctx, "fallback node complete",
			"name", result.Name,
			"method", result.Method,
			"confidence", result.ConfidenceScore,
		)

		s = s.Set(KeyResult, result)
		return s, nil
	})
}
