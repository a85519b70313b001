// Package confidence maps raw vision-model scores onto discrete certainty
// tiers and decides whether an attempt warrants a retry.
package confidence

// Tier represents a categorical assessment of identification certainty.
type Tier string

// Confidence tiers, ordered from most to least certain.
const (
	TierVeryHigh Tier = "very_high"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
)

// Thresholds holds the lower inclusive score bound for each tier above low.
type Thresholds struct {
	VeryHigh float64 `toml:"very_high"`
	High     float64 `toml:"high"`
	Medium   float64 `toml:"medium"`
}

// DefaultThresholds returns the product-tuned tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		VeryHigh: 0.95,
		High:     0.75,
		Medium:   0.50,
	}
}

// Classify maps a raw score in [0,1] to a tier. Boundaries are inclusive on
// the lower end: a score equal to a threshold lands in that threshold's tier.
func (t Thresholds) Classify(score float64) Tier {
	switch {
	case score >= t.VeryHigh:
		return TierVeryHigh
	case score >= t.High:
		return TierHigh
	case score >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// NeedsRetry reports whether a tier is uncertain enough to warrant
// re-photographing the specimen.
func NeedsRetry(tier Tier) bool {
	return tier == TierLow
}

// AtLeastHigh reports whether a tier qualifies for dual verification.
func AtLeastHigh(tier Tier) bool {
	return tier == TierHigh || tier == TierVeryHigh
}
