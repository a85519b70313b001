// Package fallback produces degraded identifications without calling any
// vision classifier: from live stratigraphic data when retries are
// exhausted, or from the offline region cache when no network is available.
package fallback

import (
	"context"
	"log/slog"

	"github.com/strataworks/lithos/internal/confidence"
	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/internal/regioncache"
	"github.com/strataworks/lithos/internal/rockid"
	"github.com/strataworks/lithos/internal/strata"
)

// maxAlternatives bounds the what_else list taken from deeper units.
const maxAlternatives = 3

// Config holds the fixed fallback confidence values.
type Config struct {
	ColumnConfidence     float64 `toml:"column_confidence"`
	DegradedConfidence   float64 `toml:"degraded_confidence"`
	CacheHitConfidence   float64 `toml:"cache_hit_confidence"`
	CacheMissConfidence  float64 `toml:"cache_miss_confidence"`
	CacheErrorConfidence float64 `toml:"cache_error_confidence"`
}

// DefaultConfig returns the product-tuned fallback confidences.
func DefaultConfig() Config {
	return Config{
		ColumnConfidence:     0.45,
		DegradedConfidence:   0.30,
		CacheHitConfidence:   0.55,
		CacheMissConfidence:  0.20,
		CacheErrorConfidence: 0.15,
	}
}

// LocationProvider supplies the device location when the caller sent none.
type LocationProvider interface {
	Current(ctx context.Context) (*rockid.LocationContext, error)
}

// NoLocation is a LocationProvider for deployments without any device
// location source.
type NoLocation struct{}

func (NoLocation) Current(context.Context) (*rockid.LocationContext, error) {
	return nil, rockid.ErrNoLocation
}

// Resolver produces fallback identifications.
type Resolver struct {
	strata    strata.Provider
	regions   *regioncache.Cache
	locations LocationProvider
	thresh    confidence.Thresholds
	cfg       Config
	logger    *slog.Logger
}

// New creates a Resolver.
func New(
	strataProvider strata.Provider,
	regions *regioncache.Cache,
	locations LocationProvider,
	thresh confidence.Thresholds,
	cfg Config,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		strata:    strataProvider,
		regions:   regions,
		locations: locations,
		thresh:    thresh,
		cfg:       cfg,
		logger:    logger.With("system", "fallback"),
	}
}

// Resolve is the live-path fallback used when attempts are exhausted. It
// synthesizes a result from the shallowest stratigraphic unit at the capture
// location, or a degraded placeholder when no column or location is
// obtainable. It never returns an error.
func (r *Resolver) Resolve(ctx context.Context, loc *rockid.LocationContext) *rockid.Result {
	loc, ok := r.ensureLocation(ctx, loc)
	if !ok {
		return r.degraded()
	}

	column, err := r.strata.Column(ctx, loc.Latitude, loc.Longitude)
	if err != nil || len(column.Units) == 0 {
		r.logger.Warn("no stratigraphic column for fallback", "error", err)
		return r.degraded()
	}

	top := column.Units[0]
	formation := geology.Synthesize(top.Name, top.Lithology, top.AgeRange, top.Period, top.Environment)

	result := r.fromFormation(formation, r.cfg.ColumnConfidence, rockid.MethodLocationFallback)
	result.WhatElse = unitNames(column.Units[1:])
	result.Column = column

	r.logger.Info(
		"location fallback resolved",
		"name", result.Name,
		"confidence", result.ConfidenceScore,
	)
	return result
}

// ResolveOffline is the explicit offline path: it consults only the region
// cache and never calls an external classifier. It never returns an error.
func (r *Resolver) ResolveOffline(ctx context.Context, loc *rockid.LocationContext) *rockid.Result {
	loc, ok := r.ensureLocation(ctx, loc)
	if !ok {
		return r.offlineMiss(r.cfg.CacheErrorConfidence)
	}

	region, err := r.regions.Lookup(ctx, loc.Latitude, loc.Longitude)
	switch {
	case err == regioncache.ErrMiss:
		return r.offlineMiss(r.cfg.CacheMissConfidence)
	case err != nil:
		r.logger.Warn("region cache read failed", "error", err)
		return r.offlineMiss(r.cfg.CacheErrorConfidence)
	case len(region.Formations) == 0:
		return r.offlineMiss(r.cfg.CacheMissConfidence)
	}

	result := r.fromFormation(region.Formations[0], r.cfg.CacheHitConfidence, rockid.MethodOfflineCache)
	result.WhatElse = formationNames(region.Formations[1:])

	r.logger.Info(
		"offline cache hit",
		"geohash", region.Geohash,
		"name", result.Name,
	)
	return result
}

func (r *Resolver) ensureLocation(ctx context.Context, loc *rockid.LocationContext) (*rockid.LocationContext, bool) {
	if loc != nil {
		return loc, true
	}

	acquired, err := r.locations.Current(ctx)
	if err != nil {
		r.logger.Warn("device location unavailable", "error", err)
		return nil, false
	}
	return acquired, true
}

func (r *Resolver) fromFormation(f geology.Formation, score float64, method rockid.Method) *rockid.Result {
	return &rockid.Result{
		Name:             f.Name,
		RockType:         f.RockType,
		ConfidenceScore:  score,
		ConfidenceLevel:  r.thresh.Classify(score),
		Method:           method,
		Description:      f.Description,
		WhatItLooksLike:  f.VisualCues,
		Minerals:         f.Minerals,
		Hardness:         f.Hardness,
		CommonUses:       f.CommonUses,
		LocationVerified: true,
	}
}

// degraded is the terminal placeholder result when neither a location nor a
// column is obtainable. It is never retried.
func (r *Resolver) degraded() *rockid.Result {
	score := r.cfg.DegradedConfidence
	return &rockid.Result{
		Name:             "Unknown Rock",
		RockType:         geology.Sedimentary,
		ConfidenceScore:  score,
		ConfidenceLevel:  r.thresh.Classify(score),
		Method:           rockid.MethodLocationFallback,
		Description:      "The specimen could not be identified from the available photos, and no regional geology was available for the capture location.",
		LocationVerified: false,
	}
}

func (r *Resolver) offlineMiss(score float64) *rockid.Result {
	return &rockid.Result{
		Name:             "Unknown Rock",
		RockType:         geology.Sedimentary,
		ConfidenceScore:  score,
		ConfidenceLevel:  r.thresh.Classify(score),
		Method:           rockid.MethodOfflineCache,
		Description:      "No cached regional geology is available for this location. Connect to a network and retry for a full identification.",
		LocationVerified: false,
	}
}

func unitNames(units []strata.Unit) []string {
	names := make([]string, 0, maxAlternatives)
	for _, u := range units {
		if len(names) == maxAlternatives {
			break
		}
		if u.Name != "" {
			names = append(names, u.Name)
		}
	}
	return names
}

func formationNames(formations []geology.Formation) []string {
	names := make([]string, 0, maxAlternatives)
	for _, f := range formations {
		if len(names) == maxAlternatives {
			break
		}
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}
