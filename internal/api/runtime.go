package api

import (
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/strataworks/lithos/internal/config"
	"github.com/strataworks/lithos/internal/infrastructure"
	"github.com/strataworks/lithos/internal/pipeline"
	"github.com/strataworks/lithos/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Agent      gaconfig.AgentConfig
	Verifier   gaconfig.AgentConfig
	Pipeline   pipeline.Config
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Strata:    infra.Strata,
			Regions:   infra.Regions,
		},
		Agent:      cfg.Agent,
		Verifier:   cfg.Verifier,
		Pipeline:   cfg.Pipeline,
		Pagination: cfg.API.Pagination,
	}
}
