package port

import (
	"context"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// PermissionRepository persists the user-to-application grant table.
//
// GrantAll and RevokeAll operate on the cartesian product of their inputs and
// must be atomic: either every pair is applied or none is. GrantAll reactivates
// revoked rows and skips pairs that are already active; it returns the
// permissions it created or reactivated. RevokeAll returns the number of rows
// it flipped from ACTIVE to REVOKED.
type PermissionRepository interface {
	ListActiveApplicationIDs(ctx context.Context, userID int64) ([]int64, error)
	ListActiveUserIDs(ctx context.Context, appID int64) ([]int64, error)
	GrantAll(ctx context.Context, userIDs, appIDs []int64) ([]domain.Permission, error)
	RevokeAll(ctx context.Context, userIDs, appIDs []int64) (int64, error)
}
