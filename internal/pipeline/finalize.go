package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/strataworks/lithos/internal/guidance"
	"github.com/strataworks/lithos/internal/rockid"
)

func resultFrom(val any) (*rockid.Result, error) {
	result, ok := val.(*rockid.Result)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not *rockid.Result", ErrBadState, KeyResult)
	}
	return result, nil
}

// FinalizeNode returns the exit node that folds whichever branch ran into a
// single tagged Attempt: a retry prompt, a terminal fallback result, or the
// (possibly cross-checked and verified) candidate.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		attempt := &Attempt{}

		if val, ok := s.Get(KeyRetry); ok {
			prompt, ok := val.(*guidance.RetryPrompt)
			if !ok {
				return s, fmt.Errorf("finalize: %w: %s is not *guidance.RetryPrompt", ErrBadState, KeyRetry)
			}
			attempt.Retry = prompt
			s = s.Set(KeyAttemptOut, attempt)
			return s, nil
		}

		if val, ok := s.Get(KeyResult); ok {
			result, err := resultFrom(val)
			if err != nil {
				return s, fmt.Errorf("finalize: %w", err)
			}
			attempt.Result = result
			s = s.Set(KeyAttemptOut, attempt)
			return s, nil
		}

		obs, err := extractObservation(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		attempt.Result = obs.Result

		rt.Logger.InfoContext(
			ctx, "finalize node complete",
			"name", obs.Result.Name,
			"method", obs.Result.Method,
			"confidence", obs.Result.ConfidenceScore,
		)

		s = s.Set(KeyAttemptOut, attempt)
		return s, nil
	})
}
