package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/internal/rockid"
	"github.com/strataworks/lithos/pkg/formatting"
)

// Classifier produces the primary identification for a photograph.
type Classifier interface {
	Classify(ctx context.Context, req Request) (Observation, error)
}

type visionResponse struct {
	Name              string   `json:"name"`
	RockType          string   `json:"rock_type"`
	Confidence        float64  `json:"confidence"`
	Description       string   `json:"description"`
	WhatItLooksLike   []string `json:"what_it_looks_like"`
	Minerals          []string `json:"minerals"`
	Hardness          string   `json:"hardness"`
	CommonUses        []string `json:"common_uses"`
	UncertaintyReason string   `json:"uncertainty_reason,omitempty"`
	RetryGuidance     string   `json:"retry_guidance,omitempty"`
}

// AgentClassifier is the production Classifier backed by the primary vision
// model.
type AgentClassifier struct {
	agent gaconfig.AgentConfig
}

// NewAgentClassifier creates an AgentClassifier over the given agent
// configuration.
func NewAgentClassifier(cfg gaconfig.AgentConfig) *AgentClassifier {
	return &AgentClassifier{agent: cfg}
}

func (c *AgentClassifier) Classify(ctx context.Context, req Request) (Observation, error) {
	a, err := agent.New(&c.agent)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: create agent: %w", ErrClassifyFailed, err)
	}

	resp, err := a.Vision(ctx, classifyPrompt(req), []string{req.Image})
	if err != nil {
		return Observation{}, fmt.Errorf("%w: vision call: %w", ErrClassifyFailed, err)
	}

	parsed, err := formatting.Parse[visionResponse](resp.Content())
	if err != nil {
		return Observation{}, fmt.Errorf("%w: parse response: %w", ErrClassifyFailed, err)
	}

	return toObservation(parsed), nil
}

func toObservation(resp visionResponse) Observation {
	class, ok := geology.ParseRockClass(resp.RockType)
	if !ok {
		class = geology.InferRockType(resp.Name)
	}

	return Observation{
		Result: &rockid.Result{
			Name:            resp.Name,
			RockType:        class,
			ConfidenceScore: resp.Confidence,
			Method:          rockid.MethodAIVision,
			Description:     resp.Description,
			WhatItLooksLike: resp.WhatItLooksLike,
			Minerals:        resp.Minerals,
			Hardness:        resp.Hardness,
			CommonUses:      resp.CommonUses,
		},
		UncertaintyReason: resp.UncertaintyReason,
		RetryGuidance:     resp.RetryGuidance,
	}
}

// ClassifyNode returns a state node that obtains the primary identification
// and gates its score into a confidence tier. A failed call or unparseable
// payload is recorded in the state bag rather than returned as an error, so
// the graph can route it through the normal retry/exhaustion branches.
func ClassifyNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		obs, err := rt.Primary.Classify(ctx, req)
		if err != nil {
			rt.Logger.WarnContext(
				ctx, "vision classification failed",
				"attempt", extractAttemptNumber(s),
				"error", err,
			)
			s = s.Set(KeyClassifyFailed, true)
			return s, nil
		}

		obs.Result.ConfidenceScore = clampScore(obs.Result.ConfidenceScore)
		obs.Result.ConfidenceLevel = rt.Config.Thresholds.Classify(obs.Result.ConfidenceScore)

		rt.Logger.InfoContext(
			ctx, "classify node complete",
			"name", obs.Result.Name,
			"confidence", obs.Result.ConfidenceScore,
			"tier", obs.Result.ConfidenceLevel,
		)

		s = s.Set(KeyCandidate, obs)
		return s, nil
	})
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
