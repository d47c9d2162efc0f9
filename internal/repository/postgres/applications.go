package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/repository"
)

// ApplicationRepository implements port.ApplicationRepository using PostgreSQL.
type ApplicationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewApplicationRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewApplicationRepository(exec pgExecutor) *ApplicationRepository {
	repo := &ApplicationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance that executes statements within the supplied transaction.
func (r *ApplicationRepository) WithTx(tx pgx.Tx) *ApplicationRepository {
	if tx == nil {
		return r
	}
	return &ApplicationRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

var applicationColumns = []string{"id", "name", "description", "is_active", "updated_at"}

// Create inserts a new application row.
func (r *ApplicationRepository) Create(ctx context.Context, app domain.Application) (int64, error) {
	stmt, args, err := r.builder.Insert("logging.applications").
		Columns("name", "description", "is_active").
		Values(app.Name, app.Description, app.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert application sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert application: %w", classify(err))
	}

	return id, nil
}

// GetByID retrieves an application by identifier.
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	stmt, args, err := r.builder.Select(applicationColumns...).
		From("logging.applications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select application sql: %w", err)
	}

	var app domain.Application
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&app.ID, &app.Name, &app.Description, &app.IsActive, &app.UpdatedAt); err != nil {
		return nil, fmt.Errorf("select application: %w", classify(err))
	}

	return &app, nil
}

// List returns every application ordered by id.
func (r *ApplicationRepository) List(ctx context.Context) ([]domain.Application, error) {
	stmt, args, err := r.builder.Select(applicationColumns...).
		From("logging.applications").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list applications sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", classify(err))
	}
	defer rows.Close()

	return scanApplications(rows)
}

// ListByIDs returns the applications matching the given ids.
func (r *ApplicationRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Application, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	stmt, args, err := r.builder.Select(applicationColumns...).
		From("logging.applications").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list applications sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications by ids: %w", classify(err))
	}
	defer rows.Close()

	return scanApplications(rows)
}

// ListExistingIDs filters the given ids down to those that reference an application.
func (r *ApplicationRepository) ListExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	stmt, args, err := r.builder.Select("id").
		From("logging.applications").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select application ids sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select application ids: %w", classify(err))
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan application id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application ids: %w", classify(err))
	}

	return out, nil
}

// Update rewrites the mutable columns of an application row.
func (r *ApplicationRepository) Update(ctx context.Context, app domain.Application) error {
	stmt, args, err := r.builder.Update("logging.applications").
		Set("name", app.Name).
		Set("description", app.Description).
		Set("is_active", app.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": app.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update application sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update application: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanApplications(rows pgx.Rows) ([]domain.Application, error) {
	var out []domain.Application
	for rows.Next() {
		var app domain.Application
		if err := rows.Scan(&app.ID, &app.Name, &app.Description, &app.IsActive, &app.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", classify(err))
	}
	return out, nil
}
