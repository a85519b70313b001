package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvStrataBaseURL = "LITHOS_STRATA_BASE_URL"
	EnvStrataTimeout = "LITHOS_STRATA_TIMEOUT"

	EnvRegionCacheTTL        = "LITHOS_REGION_CACHE_TTL"
	EnvRegionCacheCapacity   = "LITHOS_REGION_CACHE_CAPACITY"
	EnvRegionCacheResolution = "LITHOS_REGION_CACHE_RESOLUTION"
)

// StrataConfig holds the stratigraphic lookup collaborator settings.
type StrataConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *StrataConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *StrataConfig) Finalize() error {
	if c.BaseURL == "" {
		c.BaseURL = "https://macrostrat.org/api/v2"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}

	if v := os.Getenv(EnvStrataBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvStrataTimeout); v != "" {
		c.Timeout = v
	}

	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *StrataConfig) Merge(overlay *StrataConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// RegionCacheConfig holds the offline region cache settings.
type RegionCacheConfig struct {
	TTL        string  `toml:"ttl"`
	Capacity   int     `toml:"capacity"`
	Resolution float64 `toml:"resolution"`
}

// TTLDuration returns TTL as a time.Duration.
func (c *RegionCacheConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RegionCacheConfig) Finalize() error {
	if c.TTL == "" {
		c.TTL = "168h"
	}
	if c.Capacity == 0 {
		c.Capacity = 20
	}
	if c.Resolution == 0 {
		c.Resolution = 0.1
	}

	if v := os.Getenv(EnvRegionCacheTTL); v != "" {
		c.TTL = v
	}
	if v := os.Getenv(EnvRegionCacheCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Capacity = n
		}
	}
	if v := os.Getenv(EnvRegionCacheResolution); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			c.Resolution = r
		}
	}

	if _, err := time.ParseDuration(c.TTL); err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if c.Capacity < 1 {
		return fmt.Errorf("invalid capacity: %d", c.Capacity)
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("invalid resolution: %v", c.Resolution)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *RegionCacheConfig) Merge(overlay *RegionCacheConfig) {
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.Capacity != 0 {
		c.Capacity = overlay.Capacity
	}
	if overlay.Resolution != 0 {
		c.Resolution = overlay.Resolution
	}
}
