package port

import (
	"context"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// ApplicationRepository persists and retrieves registered applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app domain.Application) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	List(ctx context.Context) ([]domain.Application, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Application, error)
	// ListExistingIDs filters the given ids down to those that reference an application.
	ListExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	Update(ctx context.Context, app domain.Application) error
}
