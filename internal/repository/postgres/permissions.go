package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// PermissionRepository implements port.PermissionRepository using PostgreSQL.
//
// Both bulk mutations are single statements, so each batch commits or fails as
// a whole without an explicit transaction.
type PermissionRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPermissionRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewPermissionRepository(exec pgExecutor) *PermissionRepository {
	repo := &PermissionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance that executes statements within the supplied transaction.
func (r *PermissionRepository) WithTx(tx pgx.Tx) *PermissionRepository {
	if tx == nil {
		return r
	}
	return &PermissionRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// ListActiveApplicationIDs returns the applications the user holds an active grant for.
func (r *PermissionRepository) ListActiveApplicationIDs(ctx context.Context, userID int64) ([]int64, error) {
	stmt, args, err := r.builder.Select("application_id").
		From("logging.permissions").
		Where(squirrel.Eq{"user_id": userID, "status": domain.PermissionActive}).
		OrderBy("application_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select application ids sql: %w", err)
	}

	return r.queryIDs(ctx, stmt, args)
}

// ListActiveUserIDs returns the users holding an active grant for the application.
func (r *PermissionRepository) ListActiveUserIDs(ctx context.Context, appID int64) ([]int64, error) {
	stmt, args, err := r.builder.Select("user_id").
		From("logging.permissions").
		Where(squirrel.Eq{"application_id": appID, "status": domain.PermissionActive}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user ids sql: %w", err)
	}

	return r.queryIDs(ctx, stmt, args)
}

// GrantAll activates every (user, application) pair in one statement. Existing
// revoked rows are reactivated in place; already-active pairs produce no row in
// the result.
func (r *PermissionRepository) GrantAll(ctx context.Context, userIDs, appIDs []int64) ([]domain.Permission, error) {
	if len(userIDs) == 0 || len(appIDs) == 0 {
		return nil, nil
	}

	insert := r.builder.Insert("logging.permissions").
		Columns("user_id", "application_id", "status")
	for _, userID := range userIDs {
		for _, appID := range appIDs {
			insert = insert.Values(userID, appID, domain.PermissionActive)
		}
	}
	stmt, args, err := insert.Suffix(
		"ON CONFLICT (user_id, application_id) DO UPDATE SET status = ? WHERE logging.permissions.status = ? "+
			"RETURNING id, user_id, application_id, status",
		domain.PermissionActive, domain.PermissionRevoked,
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build grant sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("grant permissions: %w", classify(err))
	}
	defer rows.Close()

	var out []domain.Permission
	for rows.Next() {
		var perm domain.Permission
		if err := rows.Scan(&perm.ID, &perm.UserID, &perm.ApplicationID, &perm.Status); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		out = append(out, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", classify(err))
	}

	return out, nil
}

// RevokeAll flips every active (user, application) pair to revoked and reports
// how many rows changed.
func (r *PermissionRepository) RevokeAll(ctx context.Context, userIDs, appIDs []int64) (int64, error) {
	if len(userIDs) == 0 || len(appIDs) == 0 {
		return 0, nil
	}

	stmt, args, err := r.builder.Update("logging.permissions").
		Set("status", domain.PermissionRevoked).
		Where(squirrel.Eq{
			"user_id":        userIDs,
			"application_id": appIDs,
			"status":         domain.PermissionActive,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build revoke sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("revoke permissions: %w", classify(err))
	}

	return tag.RowsAffected(), nil
}

func (r *PermissionRepository) queryIDs(ctx context.Context, stmt string, args []any) ([]int64, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select ids: %w", classify(err))
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", classify(err))
	}

	return out, nil
}
