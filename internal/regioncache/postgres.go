package regioncache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/strataworks/lithos/internal/geology"
	"github.com/strataworks/lithos/pkg/repository"
)

// PostgresStore persists region buckets in the region_buckets table and the
// eviction key index as a single region_cache_index row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgresStore over the given connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanRegion(s repository.Scanner) (Region, error) {
	var r Region
	var formationsRaw, typesRaw []byte

	err := s.Scan(
		&r.Geohash,
		&r.Latitude,
		&r.Longitude,
		&r.CachedAt,
		&formationsRaw,
		&r.ColumnName,
		&typesRaw,
		&r.TotalFormations,
	)
	if err != nil {
		return r, err
	}

	if len(formationsRaw) > 0 {
		if err := json.Unmarshal(formationsRaw, &r.Formations); err != nil {
			return r, fmt.Errorf("unmarshal formations: %w", err)
		}
	}
	if r.Formations == nil {
		r.Formations = []geology.Formation{}
	}

	if len(typesRaw) > 0 {
		if err := json.Unmarshal(typesRaw, &r.RockTypes); err != nil {
			return r, fmt.Errorf("unmarshal rock_types: %w", err)
		}
	}

	return r, nil
}

func (s *PostgresStore) Bucket(ctx context.Context, key string) (*Region, error) {
	q := `
		SELECT geohash, latitude, longitude, cached_at, formations,
		       column_name, rock_types, total_formations
		FROM region_buckets
		WHERE geohash = $1`

	region, err := repository.QueryOne(ctx, s.db, q, []any{key}, scanRegion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return &region, nil
}

func (s *PostgresStore) PutBucket(ctx context.Context, region *Region) error {
	formationsJSON, err := json.Marshal(region.Formations)
	if err != nil {
		return fmt.Errorf("marshal formations: %w", err)
	}

	typesJSON, err := json.Marshal(region.RockTypes)
	if err != nil {
		return fmt.Errorf("marshal rock_types: %w", err)
	}

	q := `
		INSERT INTO region_buckets(
			geohash, latitude, longitude, cached_at, formations,
			column_name, rock_types, total_formations
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (geohash) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			cached_at = EXCLUDED.cached_at,
			formations = EXCLUDED.formations,
			column_name = EXCLUDED.column_name,
			rock_types = EXCLUDED.rock_types,
			total_formations = EXCLUDED.total_formations`

	_, err = s.db.ExecContext(ctx, q,
		region.Geohash,
		region.Latitude,
		region.Longitude,
		region.CachedAt,
		formationsJSON,
		region.ColumnName,
		typesJSON,
		region.TotalFormations,
	)
	return err
}

func (s *PostgresStore) DeleteBucket(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM region_buckets WHERE geohash = $1", key)
	return err
}

func (s *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	var raw []byte
	err := s.db.QueryRowContext(
		ctx,
		"SELECT keys FROM region_cache_index WHERE id = 1",
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("unmarshal key index: %w", err)
	}
	return keys, nil
}

func (s *PostgresStore) PutKeys(ctx context.Context, keys []string) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal key index: %w", err)
	}

	q := `
		INSERT INTO region_cache_index(id, keys)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET keys = EXCLUDED.keys`

	_, err = s.db.ExecContext(ctx, q, raw)
	return err
}
