package api

import (
	"net/http"

	"github.com/strataworks/lithos/internal/config"
	"github.com/strataworks/lithos/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	regions := newRegionsHandler(runtime.Regions, runtime.Logger)

	routes.Register(
		mux,
		domain.Identifications.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		regions.routes(),
	)
}
