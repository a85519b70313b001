package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// AgentEnv maps agent config fields to environment variable names, so the
// primary and secondary vision agents can be configured independently.
type AgentEnv struct {
	ProviderName string
	BaseURL      string
	Token        string
	Deployment   string
	APIVersion   string
	AuthType     string
	ModelName    string
}

// PrimaryAgentEnv configures the primary vision classifier.
var PrimaryAgentEnv = &AgentEnv{
	ProviderName: "LITHOS_AGENT_PROVIDER_NAME",
	BaseURL:      "LITHOS_AGENT_BASE_URL",
	Token:        "LITHOS_AGENT_TOKEN",
	Deployment:   "LITHOS_AGENT_DEPLOYMENT",
	APIVersion:   "LITHOS_AGENT_API_VERSION",
	AuthType:     "LITHOS_AGENT_AUTH_TYPE",
	ModelName:    "LITHOS_AGENT_MODEL_NAME",
}

// SecondaryAgentEnv configures the independent dual-verification classifier.
var SecondaryAgentEnv = &AgentEnv{
	ProviderName: "LITHOS_VERIFIER_PROVIDER_NAME",
	BaseURL:      "LITHOS_VERIFIER_BASE_URL",
	Token:        "LITHOS_VERIFIER_TOKEN",
	Deployment:   "LITHOS_VERIFIER_DEPLOYMENT",
	APIVersion:   "LITHOS_VERIFIER_API_VERSION",
	AuthType:     "LITHOS_VERIFIER_AUTH_TYPE",
	ModelName:    "LITHOS_VERIFIER_MODEL_NAME",
}

// FinalizeAgent applies the three-phase finalize pattern to a go-agents
// AgentConfig: defaults from go-agents DefaultAgentConfig, environment
// variable overrides, and validation.
func FinalizeAgent(c *gaconfig.AgentConfig, env *AgentEnv) error {
	loadAgentDefaults(c)
	loadAgentEnv(c, env)
	return validateAgent(c)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults
}

func loadAgentEnv(c *gaconfig.AgentConfig, env *AgentEnv) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if v := os.Getenv(env.ProviderName); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(env.BaseURL); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv(env.ModelName); v != "" {
		c.Model.Name = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(env.Token, "token")
	setOption(env.Deployment, "deployment")
	setOption(env.APIVersion, "api_version")
	setOption(env.AuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider == nil {
		return fmt.Errorf("provider required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == nil {
		return fmt.Errorf("model required")
	}
	return nil
}
