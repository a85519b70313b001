package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/internal/rockid"
	"github.com/strataworks/lithos/internal/verify"
	"github.com/strataworks/lithos/pkg/formatting"
)

// SecondaryClassifier obtains independent second opinions from a separately
// configured vision model. It implements verify.Classifier.
type SecondaryClassifier struct {
	agent gaconfig.AgentConfig
}

// NewSecondaryClassifier creates a SecondaryClassifier over the given agent
// configuration.
func NewSecondaryClassifier(cfg gaconfig.AgentConfig) *SecondaryClassifier {
	return &SecondaryClassifier{agent: cfg}
}

func (c *SecondaryClassifier) Verify(
	ctx context.Context,
	image string,
	primaryName string,
	primaryType geology.RockClass,
	loc *rockid.LocationContext,
) (*verify.Opinion, error) {
	a, err := agent.New(&c.agent)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Vision(ctx, verifyPrompt(primaryName, primaryType, loc), []string{image})
	if err != nil {
		return nil, fmt.Errorf("vision call: %w", err)
	}

	opinion, err := formatting.Parse[verify.Opinion](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &opinion, nil
}
