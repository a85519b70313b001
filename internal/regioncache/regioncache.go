// Package regioncache implements the geo-bucketed, TTL-expiring,
// capacity-bounded store of previously retrieved regional geology. Buckets
// are keyed by coordinates rounded to one decimal degree (roughly 11 km);
// reads probe the four cardinal neighbor buckets before declaring a miss.
package regioncache

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/internal/strata"
)

// Defaults for the cache tunables; production values come from config.
const (
	DefaultTTL        = 7 * 24 * time.Hour
	DefaultCapacity   = 20
	DefaultResolution = 0.1
)

// Region is one cached bucket of regional geology. The formation order
// encodes dominance: the first formation is the best offline guess.
type Region struct {
	Geohash         string              `json:"geohash"`
	Latitude        float64             `json:"latitude"`
	Longitude       float64             `json:"longitude"`
	CachedAt        time.Time           `json:"cached_at"`
	Formations      []geology.Formation `json:"formations"`
	ColumnName      string              `json:"column_name"`
	RockTypes       []string            `json:"rock_types"`
	TotalFormations int                 `json:"total_formations"`
}

// Cache coordinates bucketing, expiry, and eviction over a Store. It assumes
// a single logical writer per bucket and performs no locking of its own.
type Cache struct {
	store      Store
	ttl        time.Duration
	capacity   int
	resolution float64
	decimals   int
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Cache over the given store with the given tunables.
func New(store Store, ttl time.Duration, capacity int, resolution float64, logger *slog.Logger) *Cache {
	return &Cache{
		store:      store,
		ttl:        ttl,
		capacity:   capacity,
		resolution: resolution,
		decimals:   keyDecimals(resolution),
		logger:     logger.With("system", "regioncache"),
		now:        time.Now,
	}
}

// keyDecimals returns the number of fractional digits a bucket key axis
// needs to distinguish adjacent buckets at the given resolution.
func keyDecimals(resolution float64) int {
	if resolution >= 1 {
		return 0
	}
	return int(math.Ceil(-math.Log10(resolution)))
}

// SetClock overrides the time source. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// BucketKey returns the spatial bucket key for coordinates: each axis
// rounded to the cache resolution and concatenated.
func (c *Cache) BucketKey(lat, lng float64) string {
	return fmt.Sprintf("%s,%s", c.roundAxis(lat), c.roundAxis(lng))
}

func (c *Cache) roundAxis(v float64) string {
	rounded := math.Round(v/c.resolution) * c.resolution
	if rounded == 0 {
		rounded = 0 // normalize -0.0
	}
	return fmt.Sprintf("%.*f", c.decimals, rounded)
}

// Put normalizes and stores regional geology under the bucket for the
// coordinates, updates the bucket key index, and prunes to capacity.
func (c *Cache) Put(ctx context.Context, lat, lng float64, columnName string, formations []geology.Formation) (*Region, error) {
	region := &Region{
		Geohash:         c.BucketKey(lat, lng),
		Latitude:        lat,
		Longitude:       lng,
		CachedAt:        c.now(),
		Formations:      formations,
		ColumnName:      columnName,
		RockTypes:       rockTypeSet(formations),
		TotalFormations: len(formations),
	}

	if err := c.store.PutBucket(ctx, region); err != nil {
		return nil, fmt.Errorf("put bucket %s: %w", region.Geohash, err)
	}

	if err := c.updateIndex(ctx, region.Geohash); err != nil {
		return nil, err
	}

	if err := c.evict(ctx); err != nil {
		return nil, err
	}

	c.logger.Info(
		"region cached",
		"geohash", region.Geohash,
		"formations", region.TotalFormations,
		"column", region.ColumnName,
	)

	return region, nil
}

// PutColumn caches a stratigraphic column, synthesizing one formation per
// unit from its lithology.
func (c *Cache) PutColumn(ctx context.Context, lat, lng float64, column *strata.Column) (*Region, error) {
	return c.Put(ctx, lat, lng, column.Name, FormationsFromColumn(column))
}

// Lookup returns the cached region for the coordinates. On an exact-bucket
// miss it probes the four cardinal neighbor buckets at one resolution step
// before returning ErrMiss. Expired entries are removed and treated as
// absent.
func (c *Cache) Lookup(ctx context.Context, lat, lng float64) (*Region, error) {
	keys := []string{c.BucketKey(lat, lng)}
	for _, offset := range [][2]float64{
		{c.resolution, 0},
		{-c.resolution, 0},
		{0, c.resolution},
		{0, -c.resolution},
	} {
		keys = append(keys, c.BucketKey(lat+offset[0], lng+offset[1]))
	}

	for _, key := range keys {
		region, err := c.lookupBucket(ctx, key)
		if err == ErrMiss {
			continue
		}
		if err != nil {
			return nil, err
		}
		return region, nil
	}

	return nil, ErrMiss
}

// Keys returns the bucket key index, most recently cached first.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	return c.store.Keys(ctx)
}

// Find returns the cached region for an exact bucket key. Expired entries
// are removed and reported as ErrMiss.
func (c *Cache) Find(ctx context.Context, key string) (*Region, error) {
	return c.lookupBucket(ctx, key)
}

func (c *Cache) lookupBucket(ctx context.Context, key string) (*Region, error) {
	region, err := c.store.Bucket(ctx, key)
	if err != nil {
		return nil, err
	}

	if c.expired(region) {
		if err := c.remove(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrMiss
	}

	return region, nil
}

func (c *Cache) expired(region *Region) bool {
	return c.ttl > 0 && c.now().Sub(region.CachedAt) > c.ttl
}

func (c *Cache) remove(ctx context.Context, key string) error {
	if err := c.store.DeleteBucket(ctx, key); err != nil {
		return fmt.Errorf("delete bucket %s: %w", key, err)
	}

	keys, err := c.store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("load key index: %w", err)
	}

	if i := slices.Index(keys, key); i >= 0 {
		keys = slices.Delete(keys, i, i+1)
		if err := c.store.PutKeys(ctx, keys); err != nil {
			return fmt.Errorf("rewrite key index: %w", err)
		}
	}

	return nil
}

func (c *Cache) updateIndex(ctx context.Context, key string) error {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("load key index: %w", err)
	}

	if i := slices.Index(keys, key); i >= 0 {
		keys = slices.Delete(keys, i, i+1)
	}
	keys = append([]string{key}, keys...)

	if err := c.store.PutKeys(ctx, keys); err != nil {
		return fmt.Errorf("rewrite key index: %w", err)
	}

	return nil
}

// evict sorts cached entries by recency and deletes all but the newest
// capacity entries, rewriting the key index.
func (c *Cache) evict(ctx context.Context) error {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("load key index: %w", err)
	}

	if c.capacity <= 0 || len(keys) <= c.capacity {
		return nil
	}

	type stamped struct {
		key string
		at  time.Time
	}

	stamps := make([]stamped, 0, len(keys))
	for _, key := range keys {
		region, err := c.store.Bucket(ctx, key)
		if err == ErrMiss {
			continue
		}
		if err != nil {
			return fmt.Errorf("load bucket %s: %w", key, err)
		}
		stamps = append(stamps, stamped{key: key, at: region.CachedAt})
	}

	slices.SortFunc(stamps, func(a, b stamped) int {
		return b.at.Compare(a.at)
	})

	kept := make([]string, 0, c.capacity)
	for i, s := range stamps {
		if i < c.capacity {
			kept = append(kept, s.key)
			continue
		}
		if err := c.store.DeleteBucket(ctx, s.key); err != nil {
			return fmt.Errorf("evict bucket %s: %w", s.key, err)
		}
	}

	if err := c.store.PutKeys(ctx, kept); err != nil {
		return fmt.Errorf("rewrite key index: %w", err)
	}

	c.logger.Info("region cache evicted", "kept", len(kept), "dropped", len(stamps)-len(kept))
	return nil
}

// FormationsFromColumn synthesizes one formation per column unit, preserving
// the column's shallowest-first dominance order.
func FormationsFromColumn(column *strata.Column) []geology.Formation {
	formations := make([]geology.Formation, len(column.Units))
	for i, u := range column.Units {
		formations[i] = geology.Synthesize(u.Name, u.Lithology, u.AgeRange, u.Period, u.Environment)
	}
	return formations
}

func rockTypeSet(formations []geology.Formation) []string {
	var types []string
	for _, f := range formations {
		t := string(f.RockType)
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	return types
}
