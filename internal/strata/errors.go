package strata

import "errors"

// Collaborator errors for stratigraphic lookups.
var (
	ErrNoColumn      = errors.New("no stratigraphic column for location")
	ErrLookupFailed  = errors.New("stratigraphic lookup failed")
	ErrInvalidCoords = errors.New("invalid coordinates")
)
