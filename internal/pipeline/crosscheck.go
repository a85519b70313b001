package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// CrossCheckNode returns a state node that adjusts the candidate against the
// stratigraphic column at the capture location. Without a location the
// candidate passes through untouched. The fetched column is attached to the
// result regardless of whether the cross-check agreed with it.
func CrossCheckNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("crosscheck: %w", err)
		}

		obs, err := extractObservation(s)
		if err != nil {
			return s, fmt.Errorf("crosscheck: %w", err)
		}

		if req.Location == nil {
			return s, nil
		}

		column := rt.Checker.Check(ctx, obs.Result, *req.Location)
		obs.Result.Column = column

		rt.Logger.InfoContext(
			ctx, "crosscheck node complete",
			"name", obs.Result.Name,
			"confidence", obs.Result.ConfidenceScore,
			"location_verified", obs.Result.LocationVerified,
		)

		s = s.Set(KeyCandidate, obs)
		return s, nil
	})
}

// VerifyNode returns a state node that requests a second opinion from the
// secondary classifier for privileged callers. The session-owned agreement
// cache short-circuits repeat verifications of the same rock name.
func VerifyNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("verify: %w", err)
		}

		sess, err := extractSession(s)
		if err != nil {
			return s, fmt.Errorf("verify: %w", err)
		}

		obs, err := extractObservation(s)
		if err != nil {
			return s, fmt.Errorf("verify: %w", err)
		}

		rt.Verifier.Verify(ctx, sess.VerifyCache(), obs.Result, req.Image, req.Location)

		rt.Logger.InfoContext(
			ctx, "verify node complete",
			"name", obs.Result.Name,
			"method", obs.Result.Method,
			"agreement", obs.Result.AIAgreement,
		)

		s = s.Set(KeyCandidate, obs)
		return s, nil
	})
}
