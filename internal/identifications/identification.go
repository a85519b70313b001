// Package identifications implements the identification domain for Lithos.
// It provides types, data access, and business logic for running the
// identification pipeline, persisting finished results, and managing the
// offline region cache and identification sessions.
package identifications

import (
	"time"

	"github.com/google/uuid"
)

// Identification is a stored identification result. It mirrors the
// identifications table schema: one row per terminal pipeline outcome,
// retries are not recorded.
type Identification struct {
	ID               uuid.UUID `json:"id"`
	SessionID        uuid.UUID `json:"session_id"`
	Name             string    `json:"name"`
	RockType         string    `json:"rock_type"`
	ConfidenceScore  float64   `json:"confidence_score"`
	ConfidenceLevel  string    `json:"confidence_level"`
	Method           string    `json:"identification_method"`
	Description      string    `json:"description"`
	Minerals         []string  `json:"minerals"`
	Hardness         string    `json:"hardness"`
	LocationVerified bool      `json:"location_verified"`
	DualAIVerified   bool      `json:"dual_ai_verified"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	IdentifiedAt     time.Time `json:"identified_at"`
	ModelName        string    `json:"model_name"`
	ProviderName     string    `json:"provider_name"`
}

// IdentifyCommand carries one identification attempt submission. Image is a
// base64 data URI. SessionID is empty on the first attempt and echoed back
// on retries so the attempt counter carries over.
type IdentifyCommand struct {
	Image     string   `json:"image"`
	SessionID string   `json:"session_id,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Elevation *float64 `json:"elevation,omitempty"`
	Formation string   `json:"formation,omitempty"`
	Zoom      float64  `json:"zoom,omitempty"`
	IsPro     bool     `json:"is_pro"`
}

// CacheRegionCommand seeds the offline region cache for a location.
type CacheRegionCommand struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
