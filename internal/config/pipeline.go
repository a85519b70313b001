package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/strataworks/lithos/internal/pipeline"
)

const EnvPipelineMaxAttempts = "LITHOS_PIPELINE_MAX_ATTEMPTS"

// FinalizePipeline applies defaults, environment variable overrides, and
// validation to the pipeline tunables. Confidence arithmetic values default
// to the product-tuned constants and are overridable only through TOML.
func FinalizePipeline(c *pipeline.Config) error {
	loadPipelineDefaults(c)
	loadPipelineEnv(c)
	return validatePipeline(c)
}

// MergePipeline overwrites non-zero fields from overlay.
func MergePipeline(c, overlay *pipeline.Config) {
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.Thresholds.VeryHigh != 0 {
		c.Thresholds.VeryHigh = overlay.Thresholds.VeryHigh
	}
	if overlay.Thresholds.High != 0 {
		c.Thresholds.High = overlay.Thresholds.High
	}
	if overlay.Thresholds.Medium != 0 {
		c.Thresholds.Medium = overlay.Thresholds.Medium
	}
	if overlay.CrossCheck.MatchBoost != 0 {
		c.CrossCheck = overlay.CrossCheck
	}
	if overlay.Verify.AgreementBoost != 0 {
		c.Verify = overlay.Verify
	} else if overlay.Verify.CacheTTL != "" {
		c.Verify.CacheTTL = overlay.Verify.CacheTTL
	}
	if overlay.Fallback.ColumnConfidence != 0 {
		c.Fallback = overlay.Fallback
	}
}

func loadPipelineDefaults(c *pipeline.Config) {
	defaults := pipeline.DefaultConfig()

	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.Thresholds.VeryHigh == 0 {
		c.Thresholds.VeryHigh = defaults.Thresholds.VeryHigh
	}
	if c.Thresholds.High == 0 {
		c.Thresholds.High = defaults.Thresholds.High
	}
	if c.Thresholds.Medium == 0 {
		c.Thresholds.Medium = defaults.Thresholds.Medium
	}
	if c.CrossCheck.MatchBoost == 0 {
		c.CrossCheck = defaults.CrossCheck
	}
	if c.Verify.AgreementBoost == 0 {
		ttl := c.Verify.CacheTTL
		c.Verify = defaults.Verify
		if ttl != "" {
			c.Verify.CacheTTL = ttl
		}
	}
	if c.Verify.CacheTTL == "" {
		c.Verify.CacheTTL = defaults.Verify.CacheTTL
	}
	if c.Fallback.ColumnConfidence == 0 {
		c.Fallback = defaults.Fallback
	}
}

func loadPipelineEnv(c *pipeline.Config) {
	if v := os.Getenv(EnvPipelineMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
}

func validatePipeline(c *pipeline.Config) error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("invalid max_attempts: %d", c.MaxAttempts)
	}

	t := c.Thresholds
	if !(t.VeryHigh > t.High && t.High > t.Medium && t.Medium > 0 && t.VeryHigh <= 1) {
		return fmt.Errorf("thresholds must satisfy 0 < medium < high < very_high <= 1")
	}

	if _, err := time.ParseDuration(c.Verify.CacheTTL); err != nil {
		return fmt.Errorf("invalid verify cache_ttl: %q", c.Verify.CacheTTL)
	}

	return nil
}
