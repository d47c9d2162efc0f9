package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
)

// ScopeResolver computes the set of applications a user may see. Admins get an
// unrestricted scope; everyone else gets the applications with an active grant.
type ScopeResolver struct {
	users       port.UserRepository
	permissions port.PermissionRepository
	cache       port.ScopeCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewScopeResolver constructs a ScopeResolver without caching.
func NewScopeResolver(users port.UserRepository, permissions port.PermissionRepository, logger *zap.Logger) *ScopeResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeResolver{users: users, permissions: permissions, logger: logger}
}

// WithCache enables best-effort scope caching with the given TTL.
func (r *ScopeResolver) WithCache(cache port.ScopeCache, ttl time.Duration) *ScopeResolver {
	r.cache = cache
	r.cacheTTL = ttl
	return r
}

// Resolve returns the access scope for the given user. Cache failures degrade
// to the authoritative store and are logged, never surfaced.
func (r *ScopeResolver) Resolve(ctx context.Context, user domain.User) (domain.AccessScope, error) {
	if user.IsAdmin() {
		return domain.AdminScope(), nil
	}

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, user.ID)
		if err != nil {
			r.logger.Warn("scope cache read failed", zap.Int64("user_id", user.ID), zap.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	appIDs, err := r.permissions.ListActiveApplicationIDs(ctx, user.ID)
	if err != nil {
		return domain.AccessScope{}, fmt.Errorf("list active application ids: %w", err)
	}

	scope := domain.UserScope(appIDs)

	if r.cache != nil {
		if err := r.cache.Set(ctx, user.ID, scope, r.cacheTTL); err != nil {
			r.logger.Warn("scope cache write failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	return scope, nil
}

// Invalidate drops cached scopes for the given users after their grants change.
func (r *ScopeResolver) Invalidate(ctx context.Context, userIDs ...int64) {
	if r.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := r.cache.Invalidate(ctx, userIDs...); err != nil {
		r.logger.Warn("scope cache invalidation failed", zap.Int64s("user_ids", userIDs), zap.Error(err))
	}
}
