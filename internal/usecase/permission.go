package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
)

// BatchPermissionInput names the users and applications a bulk grant or revoke
// operates on. The operation applies to the full cartesian product.
type BatchPermissionInput struct {
	UserIDs        []int64
	ApplicationIDs []int64
}

// GrantResult reports the outcome of a bulk grant.
type GrantResult struct {
	Granted []domain.Permission
}

// RevokeResult reports the outcome of a bulk revoke.
type RevokeResult struct {
	Revoked int64
}

// PermissionBatchService applies bulk permission changes. Every referenced user
// and application is validated before any row is written, and the write itself
// is atomic: a batch either fully applies or not at all.
type PermissionBatchService struct {
	permissions  port.PermissionRepository
	users        port.UserRepository
	applications port.ApplicationRepository
	scopes       *ScopeResolver
	events       port.EventPublisher
	logger       *zap.Logger
}

// NewPermissionBatchService constructs a PermissionBatchService.
func NewPermissionBatchService(
	permissions port.PermissionRepository,
	users port.UserRepository,
	applications port.ApplicationRepository,
	scopes *ScopeResolver,
	events port.EventPublisher,
	logger *zap.Logger,
) *PermissionBatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionBatchService{
		permissions:  permissions,
		users:        users,
		applications: applications,
		scopes:       scopes,
		events:       events,
		logger:       logger,
	}
}

// Grant activates permissions for every (user, application) pair in the input.
// Pairs that are already active are left untouched; revoked pairs are
// reactivated rather than duplicated.
func (s *PermissionBatchService) Grant(ctx context.Context, actor domain.User, input BatchPermissionInput) (*GrantResult, error) {
	userIDs, appIDs, err := s.prepare(ctx, actor, input)
	if err != nil {
		return nil, err
	}

	granted, err := s.permissions.GrantAll(ctx, userIDs, appIDs)
	if err != nil {
		return nil, fmt.Errorf("grant permissions: %w", err)
	}

	s.scopes.Invalidate(ctx, userIDs...)

	if s.events != nil {
		event := domain.PermissionsGrantedEvent{
			UserIDs:        userIDs,
			ApplicationIDs: appIDs,
			GrantedCount:   len(granted),
			ActorID:        actor.ID,
		}
		if err := s.events.PublishPermissionsGranted(ctx, event); err != nil {
			s.logger.Warn("publish permissions granted event failed", zap.Error(err))
		}
	}

	return &GrantResult{Granted: granted}, nil
}

// Revoke deactivates permissions for every (user, application) pair in the
// input. Pairs without an active grant are left untouched.
func (s *PermissionBatchService) Revoke(ctx context.Context, actor domain.User, input BatchPermissionInput) (*RevokeResult, error) {
	userIDs, appIDs, err := s.prepare(ctx, actor, input)
	if err != nil {
		return nil, err
	}

	revoked, err := s.permissions.RevokeAll(ctx, userIDs, appIDs)
	if err != nil {
		return nil, fmt.Errorf("revoke permissions: %w", err)
	}

	s.scopes.Invalidate(ctx, userIDs...)

	if s.events != nil {
		event := domain.PermissionsRevokedEvent{
			UserIDs:        userIDs,
			ApplicationIDs: appIDs,
			RevokedCount:   revoked,
			ActorID:        actor.ID,
		}
		if err := s.events.PublishPermissionsRevoked(ctx, event); err != nil {
			s.logger.Warn("publish permissions revoked event failed", zap.Error(err))
		}
	}

	return &RevokeResult{Revoked: revoked}, nil
}

// prepare authorizes the actor, normalizes the input and verifies every
// referenced entity exists before any write happens.
func (s *PermissionBatchService) prepare(ctx context.Context, actor domain.User, input BatchPermissionInput) ([]int64, []int64, error) {
	if !actor.IsAdmin() {
		return nil, nil, ErrPermissionDenied
	}

	userIDs := dedupe(input.UserIDs)
	appIDs := dedupe(input.ApplicationIDs)
	if len(userIDs) == 0 || len(appIDs) == 0 {
		return nil, nil, fmt.Errorf("%w: user ids and application ids must not be empty", ErrInvalidArgument)
	}

	existingUsers, err := s.users.ListExistingIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("check user ids: %w", err)
	}
	existingApps, err := s.applications.ListExistingIDs(ctx, appIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("check application ids: %w", err)
	}

	missingUsers := missing(userIDs, existingUsers)
	missingApps := missing(appIDs, existingApps)
	if len(missingUsers) > 0 || len(missingApps) > 0 {
		return nil, nil, &MissingEntitiesError{
			MissingUserIDs:        missingUsers,
			MissingApplicationIDs: missingApps,
		}
	}

	return userIDs, appIDs, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missing(requested, existing []int64) []int64 {
	present := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		present[id] = struct{}{}
	}
	var out []int64
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
