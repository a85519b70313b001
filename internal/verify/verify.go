// Package verify implements dual verification: requesting a second,
// independent classifier opinion for high-confidence results, with a
// short-TTL per-session agreement cache keyed by primary rock name.
package verify

import (
	"context"
	"log/slog"
	"time"

	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/internal/rockid"
	"github.com/strataworks/lithos/pkg/cache"
)

// DefaultCacheTTL is the default lifetime of a cached second opinion.
const DefaultCacheTTL = 5 * time.Minute

// Opinion is the secondary classifier's response.
type Opinion struct {
	SecondaryIdentification string `json:"secondary_identification"`
	Reasoning               string `json:"reasoning,omitempty"`
}

// Classifier obtains an independent second opinion for an identification.
type Classifier interface {
	Verify(ctx context.Context, image string, primaryName string, primaryType geology.RockClass, loc *rockid.LocationContext) (*Opinion, error)
}

// Entry is one cached verification outcome, keyed by normalized primary
// rock name regardless of the image that produced it.
type Entry struct {
	SecondaryIdentification string    `json:"secondary_identification"`
	Agreement               bool      `json:"agreement"`
	VerifiedAt              time.Time `json:"verified_at"`
}

// Cache is the session-owned agreement cache.
type Cache = cache.Expiring[string, Entry]

// NewCache creates an agreement cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return cache.New[string, Entry](ttl, 0)
}

// Config holds the verification confidence tunables and the opinion cache
// lifetime.
type Config struct {
	AgreementBoost float64 `toml:"agreement_boost"`
	AgreementCap   float64 `toml:"agreement_cap"`
	CacheTTL       string  `toml:"cache_ttl"`
}

// DefaultConfig returns the product-tuned verification values.
func DefaultConfig() Config {
	return Config{
		AgreementBoost: 0.05,
		AgreementCap:   0.99,
		CacheTTL:       "5m",
	}
}

// CacheTTLDuration returns CacheTTL as a time.Duration, falling back to
// DefaultCacheTTL when unset or unparseable.
func (c Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return DefaultCacheTTL
	}
	return d
}

// Verifier requests and applies second opinions.
type Verifier struct {
	classifier Classifier
	cfg        Config
	logger     *slog.Logger
}

// New creates a Verifier over the given secondary classifier.
func New(classifier Classifier, cfg Config, logger *slog.Logger) *Verifier {
	return &Verifier{
		classifier: classifier,
		cfg:        cfg,
		logger:     logger.With("system", "verify"),
	}
}

// Verify obtains a second opinion for the result and applies the outcome in
// place. An unexpired cached entry for the same primary name is reused
// without a network call. A classifier failure leaves the result unmodified
// and unflagged.
func (v *Verifier) Verify(
	ctx context.Context,
	verifyCache *Cache,
	result *rockid.Result,
	image string,
	loc *rockid.LocationContext,
) {
	key := geology.Normalize(result.Name)

	if entry, ok := verifyCache.Get(key); ok {
		v.apply(result, entry)
		v.logger.Debug("verification cache hit", "name", key, "agreement", entry.Agreement)
		return
	}

	opinion, err := v.classifier.Verify(ctx, image, result.Name, result.RockType, loc)
	if err != nil {
		v.logger.Warn("secondary classification failed, skipping verification", "error", err)
		return
	}

	entry := Entry{
		SecondaryIdentification: opinion.SecondaryIdentification,
		Agreement:               geology.NamesAgree(result.Name, opinion.SecondaryIdentification),
		VerifiedAt:              time.Now(),
	}
	verifyCache.Put(key, entry)

	v.apply(result, entry)
	v.logger.Info(
		"dual verification complete",
		"primary", result.Name,
		"secondary", entry.SecondaryIdentification,
		"agreement", entry.Agreement,
	)
}

func (v *Verifier) apply(result *rockid.Result, entry Entry) {
	if entry.Agreement {
		result.MarkVerified(entry.SecondaryIdentification, v.cfg.AgreementBoost, v.cfg.AgreementCap)
		return
	}
	result.MarkDisputed(entry.SecondaryIdentification)
}
