package identifications

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/strataworks/lithos/pkg/query"
	"github.com/strataworks/lithos/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "identifications", "i").
	Project("id", "ID").
	Project("session_id", "SessionID").
	Project("name", "Name").
	Project("rock_type", "RockType").
	Project("confidence_score", "ConfidenceScore").
	Project("confidence_level", "ConfidenceLevel").
	Project("identification_method", "Method").
	Project("description", "Description").
	Project("minerals", "Minerals").
	Project("hardness", "Hardness").
	Project("location_verified", "LocationVerified").
	Project("dual_ai_verified", "DualAIVerified").
	Project("latitude", "Latitude").
	Project("longitude", "Longitude").
	Project("identified_at", "IdentifiedAt").
	Project("model_name", "ModelName").
	Project("provider_name", "ProviderName")

var defaultSort = query.SortField{
	Field:      "IdentifiedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for identification queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	RockType        *string    `json:"rock_type,omitempty"`
	ConfidenceLevel *string    `json:"confidence_level,omitempty"`
	Method          *string    `json:"identification_method,omitempty"`
	SessionID       *uuid.UUID `json:"session_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("RockType", f.RockType).
		WhereEquals("ConfidenceLevel", f.ConfidenceLevel).
		WhereEquals("Method", f.Method).
		WhereEquals("SessionID", f.SessionID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("rock_type"); v != "" {
		f.RockType = &v
	}

	if v := values.Get("confidence_level"); v != "" {
		f.ConfidenceLevel = &v
	}

	if v := values.Get("identification_method"); v != "" {
		f.Method = &v
	}

	if v := values.Get("session_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.SessionID = &id
		}
	}

	return f
}

func scanIdentification(s repository.Scanner) (Identification, error) {
	var i Identification
	var mineralsRaw []byte

	err := s.Scan(
		&i.ID,
		&i.SessionID,
		&i.Name,
		&i.RockType,
		&i.ConfidenceScore,
		&i.ConfidenceLevel,
		&i.Method,
		&i.Description,
		&mineralsRaw,
		&i.Hardness,
		&i.LocationVerified,
		&i.DualAIVerified,
		&i.Latitude,
		&i.Longitude,
		&i.IdentifiedAt,
		&i.ModelName,
		&i.ProviderName,
	)

	if err != nil {
		return i, err
	}

	if len(mineralsRaw) > 0 {
		if err := json.Unmarshal(mineralsRaw, &i.Minerals); err != nil {
			return i, fmt.Errorf("unmarshal minerals: %w", err)
		}
	}

	if i.Minerals == nil {
		i.Minerals = []string{}
	}

	return i, nil
}
