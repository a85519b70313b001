package pipeline

import (
	"log/slog"

	"github.com/strataworks/lithos/internal/confidence"
	"github.com/strataworks/lithos/internal/crosscheck"
	"github.com/strataworks/lithos/internal/fallback"
	"github.com/strataworks/lithos/internal/session"
	"github.com/strataworks/lithos/internal/verify"
)

// Config holds the orchestration tunables, including the confidence values
// of the cross-check, verification, and fallback components.
type Config struct {
	MaxAttempts int                   `toml:"max_attempts"`
	Thresholds  confidence.Thresholds `toml:"thresholds"`
	CrossCheck  crosscheck.Config     `toml:"crosscheck"`
	Verify      verify.Config         `toml:"verify"`
	Fallback    fallback.Config       `toml:"fallback"`
}

// DefaultConfig returns the product-tuned orchestration values.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Thresholds:  confidence.DefaultThresholds(),
		CrossCheck:  crosscheck.DefaultConfig(),
		Verify:      verify.DefaultConfig(),
		Fallback:    fallback.DefaultConfig(),
	}
}

// Runtime bundles the dependencies that pipeline nodes require.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Primary  Classifier
	Checker  *crosscheck.Checker
	Verifier *verify.Verifier
	Fallback *fallback.Resolver
	Sessions *session.Manager
	Config   Config
	Logger   *slog.Logger
}
