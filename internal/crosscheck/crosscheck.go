// Package crosscheck compares a candidate identification against the known
// stratigraphic column for the capture location and adjusts its confidence.
package crosscheck

import (
	"context"
	"log/slog"

	"github.com/strataworks/lithos/internal/confidence"
	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/internal/rockid"
	"github.com/strataworks/lithos/internal/strata"
)

// Config holds the confidence adjustment tunables.
type Config struct {
	MatchBoost      float64 `toml:"match_boost"`
	MatchCap        float64 `toml:"match_cap"`
	SimilarBoost    float64 `toml:"similar_boost"`
	SimilarCap      float64 `toml:"similar_cap"`
	MismatchPenalty float64 `toml:"mismatch_penalty"`
	MismatchFloor   float64 `toml:"mismatch_floor"`
}

// DefaultConfig returns the product-tuned adjustment values.
func DefaultConfig() Config {
	return Config{
		MatchBoost:      0.15,
		MatchCap:        0.95,
		SimilarBoost:    0.05,
		SimilarCap:      0.75,
		MismatchPenalty: 0.10,
		MismatchFloor:   0.40,
	}
}

// Checker adjusts candidate confidence against regional stratigraphy.
type Checker struct {
	provider strata.Provider
	cfg      Config
	logger   *slog.Logger
}

// New creates a Checker over the given stratigraphy provider.
func New(provider strata.Provider, cfg Config, logger *slog.Logger) *Checker {
	return &Checker{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With("system", "crosscheck"),
	}
}

// Check fetches the stratigraphic column for the location and adjusts the
// candidate in place. It returns the fetched column for reuse by the caller.
// When the column cannot be fetched the candidate passes through unmodified
// and Check returns nil.
func (c *Checker) Check(ctx context.Context, result *rockid.Result, loc rockid.LocationContext) *strata.Column {
	column, err := c.provider.Column(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		c.logger.Warn("column fetch failed, skipping cross-check", "error", err)
		return nil
	}

	c.Adjust(result, column)
	return column
}

// Adjust applies the cross-check policy against an already fetched column.
func (c *Checker) Adjust(result *rockid.Result, column *strata.Column) {
	exact := exactMatch(result.Name, column)
	formation := formationMatch(result.Name, column)
	similar := geology.ClassMatchesLithology(result.RockType, column.Lithologies())

	switch {
	case exact || formation:
		result.ConfidenceScore = min(c.cfg.MatchCap, result.ConfidenceScore+c.cfg.MatchBoost)
		if result.ConfidenceScore >= 0.90 {
			result.ConfidenceLevel = confidence.TierVeryHigh
		} else {
			result.ConfidenceLevel = confidence.TierHigh
		}
		result.LocationVerified = true
	case similar:
		result.ConfidenceScore = min(c.cfg.SimilarCap, result.ConfidenceScore+c.cfg.SimilarBoost)
		result.ConfidenceLevel = confidence.TierMedium
		result.LocationVerified = true
	default:
		result.ConfidenceScore = max(c.cfg.MismatchFloor, result.ConfidenceScore-c.cfg.MismatchPenalty)
		if result.ConfidenceScore >= 0.50 {
			result.ConfidenceLevel = confidence.TierMedium
		} else {
			result.ConfidenceLevel = confidence.TierLow
		}
		result.LocationVerified = false
	}

	c.logger.Debug(
		"cross-check applied",
		"name", result.Name,
		"exact", exact,
		"formation", formation,
		"similar", similar,
		"confidence", result.ConfidenceScore,
		"tier", result.ConfidenceLevel,
	)
}

// exactMatch reports whether the candidate name and any unit lithology
// contain one another.
func exactMatch(name string, column *strata.Column) bool {
	for _, lith := range column.Lithologies() {
		if geology.NamesAgree(name, lith) {
			return true
		}
	}
	return false
}

// formationMatch reports whether the candidate name substring-matches any
// unit name.
func formationMatch(name string, column *strata.Column) bool {
	for _, unit := range column.UnitNames() {
		if geology.NamesAgree(name, unit) {
			return true
		}
	}
	return false
}
