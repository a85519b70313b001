// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, geology clients) that domain
// systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/strataworks/lithos/internal/config"
	"github.com/strataworks/lithos/internal/regioncache"
	"github.com/strataworks/lithos/internal/strata"
	"github.com/strataworks/lithos/pkg/database"
	"github.com/strataworks/lithos/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, the stratigraphy client, and the offline
// region cache.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Strata    strata.Provider
	Regions   *regioncache.Cache
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	provider := strata.NewClient(cfg.Strata.BaseURL, cfg.Strata.TimeoutDuration(), logger)

	store := regioncache.NewPostgresStore(db.Connection())
	regions := regioncache.New(
		store,
		cfg.RegionCache.TTLDuration(),
		cfg.RegionCache.Capacity,
		cfg.RegionCache.Resolution,
		logger,
	)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Strata:    provider,
		Regions:   regions,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	return nil
}
