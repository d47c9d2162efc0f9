package port

import (
	"context"
	"time"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// ScopeCache caches resolved access scopes keyed by user id. A miss returns
// (nil, nil). Implementations are best-effort: callers fall back to the
// authoritative store on any error.
type ScopeCache interface {
	Get(ctx context.Context, userID int64) (*domain.AccessScope, error)
	Set(ctx context.Context, userID int64, scope domain.AccessScope, ttl time.Duration) error
	// Invalidate drops cached scopes for the given users, e.g. after a grant or
	// revoke touches them.
	Invalidate(ctx context.Context, userIDs ...int64) error
}
