package api

import (
	"github.com/strataworks/lithos/internal/identifications"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Identifications identifications.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	identificationsSystem := identifications.New(
		runtime.Database.Connection(),
		runtime.Agent,
		runtime.Verifier,
		runtime.Logger,
		runtime.Pagination,
		runtime.Strata,
		runtime.Regions,
		runtime.Pipeline,
	)

	return &Domain{
		Identifications: identificationsSystem,
	}
}
