// Package rockid defines the identification result model shared by the
// pipeline components: the externally consumed result payload, the capture
// location context, and the identification method vocabulary.
package rockid

import (
	"errors"

	"github.com/strataworks/lithos/internal/confidence"
	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/internal/strata"
)

// ErrNoLocation indicates no capture location was supplied and none could be
// acquired from the device.
var ErrNoLocation = errors.New("no capture location available")

// Method records how the final identification value was produced.
type Method string

// Identification methods.
const (
	MethodAIVision         Method = "ai_vision"
	MethodAIVerified       Method = "ai_verified"
	MethodLocationFallback Method = "location_fallback"
	MethodOfflineCache     Method = "offline_cache"
)

// LocationContext is the immutable capture location supplied once per
// attempt. Formation, when known, summarizes the local bedrock.
type LocationContext struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
	Formation string   `json:"formation,omitempty"`
}

// Result is the externally consumed identification payload.
// Method "ai_verified" implies DualAIVerified and AIAgreement are true.
type Result struct {
	Name             string            `json:"name"`
	RockType         geology.RockClass `json:"rock_type"`
	ConfidenceScore  float64           `json:"confidence_score"`
	ConfidenceLevel  confidence.Tier   `json:"confidence_level"`
	Method           Method            `json:"identification_method"`
	Description      string            `json:"description"`
	WhatItLooksLike  []string          `json:"what_it_looks_like,omitempty"`
	WhatElse         []string          `json:"what_else,omitempty"`
	Minerals         []string          `json:"minerals,omitempty"`
	Hardness         string            `json:"hardness,omitempty"`
	CommonUses       []string          `json:"common_uses,omitempty"`
	LocationVerified bool              `json:"location_verified"`

	DualAIVerified    bool   `json:"dual_ai_verified,omitempty"`
	SecondaryAIResult string `json:"secondary_ai_result,omitempty"`
	AIAgreement       *bool  `json:"ai_agreement,omitempty"`

	Column *strata.Column `json:"stratigraphic_column,omitempty"`
}

// MarkVerified records a successful dual verification: confidence is bumped
// to at most cap, the tier is promoted, and the method switches to
// ai_verified with the agreement flags set.
func (r *Result) MarkVerified(secondary string, bump, cap float64) {
	agreement := true
	r.ConfidenceScore = min(cap, r.ConfidenceScore+bump)
	r.ConfidenceLevel = confidence.TierVeryHigh
	r.Method = MethodAIVerified
	r.DualAIVerified = true
	r.SecondaryAIResult = secondary
	r.AIAgreement = &agreement
}

// MarkDisputed records a dual verification disagreement. Confidence is not
// lowered and the result is not flagged as verified; the secondary opinion
// is surfaced for the caller.
func (r *Result) MarkDisputed(secondary string) {
	agreement := false
	r.SecondaryAIResult = secondary
	r.AIAgreement = &agreement
}
