package identifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/strataworks/lithos/internal/crosscheck"
	"github.com/strataworks/lithos/internal/fallback"
	"github.com/strataworks/lithos/internal/pipeline"
	"github.com/strataworks/lithos/internal/regioncache"
	"github.com/strataworks/lithos/internal/rockid"
	"github.com/strataworks/lithos/internal/session"
	"github.com/strataworks/lithos/internal/strata"
	"github.com/strataworks/lithos/internal/verify"
	"github.com/strataworks/lithos/pkg/pagination"
	"github.com/strataworks/lithos/pkg/query"
	"github.com/strataworks/lithos/pkg/repository"
)

type repo struct {
	db         *sql.DB
	rt         *pipeline.Runtime
	regions    *regioncache.Cache
	strata     strata.Provider
	sessions   *session.Manager
	agent      gaconfig.AgentConfig
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an identification repository implementing the System
// interface. It internally constructs the pipeline runtime from the
// provided dependencies.
func New(
	db *sql.DB,
	agent gaconfig.AgentConfig,
	secondary gaconfig.AgentConfig,
	logger *slog.Logger,
	pagination pagination.Config,
	strataProvider strata.Provider,
	regions *regioncache.Cache,
	cfg pipeline.Config,
) System {
	sessions := session.NewManager(cfg.Verify.CacheTTLDuration(), session.DefaultIdleTTL)

	rt := &pipeline.Runtime{
		Primary: pipeline.NewAgentClassifier(agent),
		Checker: crosscheck.New(strataProvider, cfg.CrossCheck, logger),
		Verifier: verify.New(
			pipeline.NewSecondaryClassifier(secondary),
			cfg.Verify,
			logger,
		),
		Fallback: fallback.New(
			strataProvider,
			regions,
			fallback.NoLocation{},
			cfg.Thresholds,
			cfg.Fallback,
			logger,
		),
		Sessions: sessions,
		Config:   cfg,
		Logger:   logger.With("pipeline", "identify"),
	}

	return &repo{
		db:         db,
		rt:         rt,
		regions:    regions,
		strata:     strataProvider,
		sessions:   sessions,
		agent:      agent,
		logger:     logger.With("system", "identifications"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxBodyBytes int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxBodyBytes)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Identification], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count identifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanIdentification)
	if err != nil {
		return nil, fmt.Errorf("query identifications: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Identification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	i, err := repository.QueryOne(ctx, r.db, q, args, scanIdentification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &i, nil
}

func (r *repo) Identify(ctx context.Context, cmd IdentifyCommand) (*pipeline.Attempt, error) {
	if cmd.Image == "" {
		return nil, ErrMissingImage
	}

	req := toRequest(cmd)
	attempt := pipeline.Execute(ctx, r.rt, req)

	if attempt.Result != nil {
		r.record(ctx, attempt, req.Location)
	}

	return attempt, nil
}

func (r *repo) IdentifyOffline(ctx context.Context, cmd IdentifyCommand) (*pipeline.Attempt, error) {
	req := toRequest(cmd)
	attempt := pipeline.ExecuteOffline(ctx, r.rt, req)

	r.record(ctx, attempt, req.Location)
	return attempt, nil
}

func (r *repo) ResetSession(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	sess := r.sessions.Reset(id)
	if sess == nil {
		return uuid.Nil, ErrSessionUnknown
	}

	r.logger.Info("session reset", "old_id", id, "new_id", sess.ID())
	return sess.ID(), nil
}

// CacheRegion seeds the offline cache for a location and warms the four
// cardinal neighbor buckets concurrently on a best-effort basis.
func (r *repo) CacheRegion(ctx context.Context, cmd CacheRegionCommand) (*regioncache.Region, error) {
	column, err := r.strata.Column(ctx, cmd.Latitude, cmd.Longitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoRegionalData, err)
	}

	region, err := r.regions.PutColumn(ctx, cmd.Latitude, cmd.Longitude, column)
	if err != nil {
		return nil, fmt.Errorf("cache region: %w", err)
	}

	r.warmNeighbors(ctx, cmd.Latitude, cmd.Longitude)

	r.logger.Info("region cached",
		"geohash", region.Geohash,
		"column", region.ColumnName,
		"formations", region.TotalFormations,
	)
	return region, nil
}

func (r *repo) warmNeighbors(ctx context.Context, lat, lng float64) {
	step := regioncache.DefaultResolution

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, offset := range [][2]float64{
		{step, 0}, {-step, 0}, {0, step}, {0, -step},
	} {
		nLat, nLng := lat+offset[0], lng+offset[1]
		g.Go(func() error {
			column, err := r.strata.Column(gctx, nLat, nLng)
			if err != nil {
				return nil
			}
			_, err = r.regions.PutColumn(gctx, nLat, nLng, column)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Warn("neighbor warm failed", "error", err)
	}
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM identifications WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	r.logger.Info("identification deleted", "id", id)
	return nil
}

func toRequest(cmd IdentifyCommand) pipeline.Request {
	req := pipeline.Request{
		Image: cmd.Image,
		Zoom:  cmd.Zoom,
		Pro:   cmd.IsPro,
	}

	if id, err := uuid.Parse(cmd.SessionID); err == nil {
		req.SessionID = id
	}

	if cmd.Latitude != nil && cmd.Longitude != nil {
		req.Location = &rockid.LocationContext{
			Latitude:  *cmd.Latitude,
			Longitude: *cmd.Longitude,
			Elevation: cmd.Elevation,
			Formation: cmd.Formation,
		}
	}

	return req
}

// record persists a terminal result. Persistence is a diagnostics log, not
// part of the identification contract: a write failure is logged and the
// attempt is still returned to the caller.
func (r *repo) record(ctx context.Context, attempt *pipeline.Attempt, loc *rockid.LocationContext) {
	result := attempt.Result

	mineralsJSON, err := json.Marshal(result.Minerals)
	if err != nil {
		r.logger.Warn("marshal minerals", "error", err)
		return
	}

	var lat, lng *float64
	if loc != nil {
		lat, lng = &loc.Latitude, &loc.Longitude
	}

	insertQ := `
		INSERT INTO identifications(
			session_id, name, rock_type, confidence_score, confidence_level,
			identification_method, description, minerals, hardness,
			location_verified, dual_ai_verified, latitude, longitude,
			model_name, provider_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = r.db.ExecContext(ctx, insertQ,
		attempt.SessionID,
		result.Name,
		string(result.RockType),
		result.ConfidenceScore,
		string(result.ConfidenceLevel),
		string(result.Method),
		result.Description,
		mineralsJSON,
		result.Hardness,
		result.LocationVerified,
		result.DualAIVerified,
		lat,
		lng,
		r.agent.Model.Name,
		r.agent.Provider.Name,
	)
	if err != nil {
		r.logger.Warn("record identification", "error", err)
		return
	}

	r.logger.Info("identification recorded",
		"session_id", attempt.SessionID,
		"name", result.Name,
		"method", result.Method,
	)
}
