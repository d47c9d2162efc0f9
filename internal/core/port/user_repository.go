package port

import (
	"context"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// UserRepository persists and retrieves user accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error)
	// ListExistingIDs filters the given ids down to those that reference a user.
	ListExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}
