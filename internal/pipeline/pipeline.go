package pipeline

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/strataworks/lithos/internal/confidence"
	"github.com/strataworks/lithos/internal/guidance"
	"github.com/strataworks/lithos/internal/session"
)

// Execute runs one identification attempt through the state graph
// (classify → retry | fallback | crosscheck → verify? → finalize). It never
// returns an error: any internal failure degrades to a synthetic retry while
// attempts remain, and to the location fallback once they are exhausted.
func Execute(ctx context.Context, rt *Runtime, req Request) *Attempt {
	sess := rt.Sessions.Acquire(req.SessionID)
	attemptNumber := sess.NextAttempt()

	final, err := run(ctx, rt, req, sess, attemptNumber)
	if err != nil {
		rt.Logger.ErrorContext(
			ctx, "identification graph failed",
			"session_id", sess.ID(),
			"attempt", attemptNumber,
			"error", err,
		)
		return degrade(ctx, rt, req, sess, attemptNumber)
	}

	attempt, err := extractAttempt(final)
	if err != nil {
		rt.Logger.ErrorContext(
			ctx, "identification graph produced no outcome",
			"session_id", sess.ID(),
			"attempt", attemptNumber,
			"error", err,
		)
		return degrade(ctx, rt, req, sess, attemptNumber)
	}

	attempt.SessionID = sess.ID()
	attempt.Number = attemptNumber
	return attempt
}

// ExecuteOffline runs the explicit offline path: no vision call, no retries,
// a terminal result straight from the region cache. Like Execute, it never
// returns an error.
func ExecuteOffline(ctx context.Context, rt *Runtime, req Request) *Attempt {
	sess := rt.Sessions.Acquire(req.SessionID)
	attemptNumber := sess.NextAttempt()

	result := rt.Fallback.ResolveOffline(ctx, req.Location)
	return &Attempt{
		SessionID: sess.ID(),
		Number:    attemptNumber,
		Result:    result,
	}
}

func run(ctx context.Context, rt *Runtime, req Request, sess *session.Session, attemptNumber int) (state.State, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return state.State{}, fmt.Errorf("%w: build graph: %w", ErrGraphFailed, err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyRequest, req)
	initial = initial.Set(KeySession, sess)
	initial = initial.Set(KeyAttempt, attemptNumber)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return state.State{}, fmt.Errorf("%w: %w", ErrGraphFailed, err)
	}

	return final, nil
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("lithos-identify")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("classify", ClassifyNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("retry", RetryNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("fallback", FallbackNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("crosscheck", CrossCheckNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("verify", VerifyNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("finalize", FinalizeNode(rt)); err != nil {
		return nil, err
	}

	// classify → retry (low confidence with attempts remaining)
	if err := graph.AddEdge("classify", "retry", needsRetry(rt)); err != nil {
		return nil, err
	}

	// classify → fallback (low confidence with attempts exhausted)
	if err := graph.AddEdge("classify", "fallback", exhausted(rt)); err != nil {
		return nil, err
	}

	// classify → crosscheck (tier medium or better)
	if err := graph.AddEdge("classify", "crosscheck", acceptable); err != nil {
		return nil, err
	}

	// crosscheck → verify (privileged caller, adjusted tier high or better)
	if err := graph.AddEdge("crosscheck", "verify", verifyEligible); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("crosscheck", "finalize", state.Not(verifyEligible)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("retry", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("fallback", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("verify", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("classify"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

// lowOrFailed reports whether the current attempt produced no acceptable
// candidate: a failed vision call counts as a low-confidence attempt.
func lowOrFailed(s state.State) bool {
	if failed, ok := s.Get(KeyClassifyFailed); ok {
		if f, ok := failed.(bool); ok && f {
			return true
		}
	}

	obs, err := extractObservation(s)
	if err != nil {
		return true
	}
	return confidence.NeedsRetry(obs.Result.ConfidenceLevel)
}

func needsRetry(rt *Runtime) func(state.State) bool {
	return func(s state.State) bool {
		return lowOrFailed(s) && extractAttemptNumber(s) < rt.Config.MaxAttempts
	}
}

func exhausted(rt *Runtime) func(state.State) bool {
	return func(s state.State) bool {
		return lowOrFailed(s) && extractAttemptNumber(s) >= rt.Config.MaxAttempts
	}
}

func acceptable(s state.State) bool {
	return !lowOrFailed(s)
}

func verifyEligible(s state.State) bool {
	req, err := extractRequest(s)
	if err != nil || !req.Pro {
		return false
	}

	obs, err := extractObservation(s)
	if err != nil {
		return false
	}
	return confidence.AtLeastHigh(obs.Result.ConfidenceLevel)
}

func degrade(ctx context.Context, rt *Runtime, req Request, sess *session.Session, attemptNumber int) *Attempt {
	attempt := &Attempt{
		SessionID: sess.ID(),
		Number:    attemptNumber,
	}

	if attemptNumber < rt.Config.MaxAttempts {
		prompt := guidance.Fallback(attemptNumber)
		attempt.Retry = &prompt
		return attempt
	}

	attempt.Result = rt.Fallback.Resolve(ctx, req.Location)
	return attempt
}

func extractAttempt(s state.State) (*Attempt, error) {
	val, ok := s.Get(KeyAttemptOut)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in final state", ErrBadState, KeyAttemptOut)
	}

	attempt, ok := val.(*Attempt)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not *Attempt", ErrBadState, KeyAttemptOut)
	}

	return attempt, nil
}

func extractRequest(s state.State) (Request, error) {
	val, ok := s.Get(KeyRequest)
	if !ok {
		return Request{}, fmt.Errorf("%w: missing %s in state", ErrBadState, KeyRequest)
	}

	req, ok := val.(Request)
	if !ok {
		return Request{}, fmt.Errorf("%w: %s is not Request", ErrBadState, KeyRequest)
	}

	return req, nil
}

func extractSession(s state.State) (*session.Session, error) {
	val, ok := s.Get(KeySession)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in state", ErrBadState, KeySession)
	}

	sess, ok := val.(*session.Session)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not *session.Session", ErrBadState, KeySession)
	}

	return sess, nil
}

func extractObservation(s state.State) (Observation, error) {
	val, ok := s.Get(KeyCandidate)
	if !ok {
		return Observation{}, fmt.Errorf("%w: missing %s in state", ErrBadState, KeyCandidate)
	}

	obs, ok := val.(Observation)
	if !ok {
		return Observation{}, fmt.Errorf("%w: %s is not Observation", ErrBadState, KeyCandidate)
	}

	return obs, nil
}

func extractAttemptNumber(s state.State) int {
	val, ok := s.Get(KeyAttempt)
	if !ok {
		return 0
	}

	n, ok := val.(int)
	if !ok {
		return 0
	}

	return n
}
