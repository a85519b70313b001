package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/strataworks/lithos/internal/regioncache"
	"github.com/strataworks/lithos/pkg/handlers"
	"github.com/strataworks/lithos/pkg/routes"
)

// regionsHandler exposes read-only inspection of the offline region cache:
// the bucket key index and individual cached buckets.
type regionsHandler struct {
	regions *regioncache.Cache
	logger  *slog.Logger
}

func newRegionsHandler(regions *regioncache.Cache, logger *slog.Logger) *regionsHandler {
	return &regionsHandler{
		regions: regions,
		logger:  logger.With("handler", "regions"),
	}
}

func (h *regionsHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/regions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/{key}", Handler: h.find},
		},
	}
}

func (h *regionsHandler) list(w http.ResponseWriter, r *http.Request) {
	keys, err := h.regions.Keys(r.Context())
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusInternalServerError, err,
		)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"count": len(keys),
		"keys":  keys,
	})
}

func (h *regionsHandler) find(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	region, err := h.regions.Find(r.Context(), key)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, regioncache.ErrMiss) {
			status = http.StatusNotFound
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, region)
}
