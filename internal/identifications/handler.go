package identifications

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/strataworks/lithos/pkg/handlers"
	"github.com/strataworks/lithos/pkg/pagination"
	"github.com/strataworks/lithos/pkg/routes"
)

// Handler provides HTTP endpoints for identification operations.
type Handler struct {
	sys          System
	logger       *slog.Logger
	pagination   pagination.Config
	maxBodyBytes int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination
// config. maxBodyBytes bounds the identify request body, which carries the
// photograph as a base64 data URI.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBodyBytes int64,
) *Handler {
	return &Handler{
		sys:          sys,
		logger:       logger.With("handler", "identifications"),
		pagination:   pagination,
		maxBodyBytes: maxBodyBytes,
	}
}

// Routes returns the route group definition for identification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/identifications",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/identify", Handler: h.Identify},
			{Method: "POST", Pattern: "/identify/offline", Handler: h.IdentifyOffline},
			{Method: "POST", Pattern: "/sessions/{id}/reset", Handler: h.ResetSession},
			{Method: "POST", Pattern: "/regions/cache", Handler: h.CacheRegion},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of stored identifications with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single stored identification by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	i, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, i)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching identifications.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Identify runs one identification attempt for a submitted photograph.
// The response is always 200 with a tagged attempt: either a retry prompt
// or a terminal result, never an error for pipeline-internal failures.
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	var cmd IdentifyCommand
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	attempt, err := h.sys.Identify(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, attempt)
}

// IdentifyOffline resolves an identification from the offline region cache
// without any vision call.
func (h *Handler) IdentifyOffline(w http.ResponseWriter, r *http.Request) {
	var cmd IdentifyCommand
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	attempt, err := h.sys.IdentifyOffline(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, attempt)
}

// ResetSession clears a session's attempt counter and dual-verify cache,
// returning the replacement session id.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrSessionUnknown)
		return
	}

	newID, err := h.sys.ResetSession(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{"session_id": newID.String()})
}

// CacheRegion seeds the offline region cache for a location by decoding a
// CacheRegionCommand JSON body. Returns 201 with the cached region.
func (h *Handler) CacheRegion(w http.ResponseWriter, r *http.Request) {
	var cmd CacheRegionCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	region, err := h.sys.CacheRegion(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, region)
}

// Delete removes a stored identification by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
