package identifications

import (
	"errors"
	"net/http"
)

// Domain errors for identification operations.
var (
	ErrNotFound       = errors.New("identification not found")
	ErrSessionUnknown = errors.New("session not found")
	ErrMissingImage   = errors.New("image is required")
	ErrMissingCoords  = errors.New("latitude and longitude are required")
	ErrNoRegionalData = errors.New("no regional geology for location")
)

// MapHTTPStatus maps identification domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSessionUnknown) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrMissingImage) || errors.Is(err, ErrMissingCoords) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNoRegionalData) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
