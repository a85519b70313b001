package identifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/strataworks/lithos/internal/pipeline"
	"github.com/strataworks/lithos/internal/regioncache"
	"github.com/strataworks/lithos/pkg/pagination"
)

// System defines the public contract for identification domain operations.
type System interface {
	Handler(maxBodyBytes int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Identification], error)

	Find(ctx context.Context, id uuid.UUID) (*Identification, error)
	Identify(ctx context.Context, cmd IdentifyCommand) (*pipeline.Attempt, error)
	IdentifyOffline(ctx context.Context, cmd IdentifyCommand) (*pipeline.Attempt, error)
	ResetSession(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CacheRegion(ctx context.Context, cmd CacheRegionCommand) (*regioncache.Region, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
