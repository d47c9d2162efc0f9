package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/repository"
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AlertRepository implements port.AlertRepository using PostgreSQL. Windows are
// stored as whole seconds.
type AlertRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAlertRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewAlertRepository(exec pgExecutor) *AlertRepository {
	repo := &AlertRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance that executes statements within the supplied transaction.
func (r *AlertRepository) WithTx(tx pgx.Tx) *AlertRepository {
	if tx == nil {
		return r
	}
	return &AlertRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

var alertColumns = []string{"id", "application_id", "level", "threshold", "window_seconds", "is_active", "updated_at", "created_by"}

// Create inserts a new alert row.
func (r *AlertRepository) Create(ctx context.Context, alert domain.Alert) (int64, error) {
	stmt, args, err := r.builder.Insert("logging.alerts").
		Columns("application_id", "level", "threshold", "window_seconds", "is_active", "created_by").
		Values(alert.ApplicationID, alert.Level, alert.Count, int64(alert.TimeWindow/time.Second), alert.IsActive, alert.CreatedByID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert alert sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert alert: %w", classify(err))
	}

	return id, nil
}

// GetByID retrieves an alert by identifier.
func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*domain.Alert, error) {
	stmt, args, err := r.builder.Select(alertColumns...).
		From("logging.alerts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select alert sql: %w", err)
	}

	alert, err := scanAlert(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, fmt.Errorf("select alert: %w", classify(err))
	}

	return alert, nil
}

// List returns a page of alerts plus the total count.
func (r *AlertRepository) List(ctx context.Context, offset, limit int) ([]domain.Alert, int64, error) {
	countStmt, countArgs, err := r.builder.Select("count(*)").
		From("logging.alerts").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count alerts sql: %w", err)
	}

	var total int64
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alerts: %w", classify(err))
	}

	stmt, args, err := r.builder.Select(alertColumns...).
		From("logging.alerts").
		OrderBy("id").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list alerts sql: %w", err)
	}

	alerts, err := r.queryAlerts(ctx, stmt, args)
	if err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

// ListByCreator returns every alert created by the given user.
func (r *AlertRepository) ListByCreator(ctx context.Context, userID int64) ([]domain.Alert, error) {
	stmt, args, err := r.builder.Select(alertColumns...).
		From("logging.alerts").
		Where(squirrel.Eq{"created_by": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list alerts sql: %w", err)
	}

	return r.queryAlerts(ctx, stmt, args)
}

// ListActive returns every enabled alert.
func (r *AlertRepository) ListActive(ctx context.Context) ([]domain.Alert, error) {
	stmt, args, err := r.builder.Select(alertColumns...).
		From("logging.alerts").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active alerts sql: %w", err)
	}

	return r.queryAlerts(ctx, stmt, args)
}

// ExistsWithConfig reports whether another alert carries the same configuration.
func (r *AlertRepository) ExistsWithConfig(ctx context.Context, appID int64, level domain.Level, count int, window time.Duration, excludeID int64) (bool, error) {
	query := r.builder.Select("1").
		From("logging.alerts").
		Where(squirrel.Eq{
			"application_id": appID,
			"level":          level,
			"threshold":      count,
			"window_seconds": int64(window / time.Second),
		}).
		Limit(1)
	if excludeID != 0 {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build alert config sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(classify(err), repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check alert config: %w", classify(err))
	}

	return true, nil
}

// Update rewrites the mutable columns of an alert row.
func (r *AlertRepository) Update(ctx context.Context, alert domain.Alert) error {
	stmt, args, err := r.builder.Update("logging.alerts").
		Set("level", alert.Level).
		Set("threshold", alert.Count).
		Set("window_seconds", int64(alert.TimeWindow/time.Second)).
		Set("is_active", alert.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": alert.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update alert sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update alert: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes an alert row. The schema cascades the delete to the alert's
// notifications.
func (r *AlertRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("logging.alerts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete alert sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete alert: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// RecordTrigger inserts the notification and bumps the alert's updated_at in
// one transaction.
func (r *AlertRepository) RecordTrigger(ctx context.Context, alertID int64, notification domain.Notification, at time.Time) (int64, error) {
	beginner, ok := r.exec.(txBeginner)
	if !ok {
		return 0, fmt.Errorf("record trigger: executor does not support transactions")
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin trigger tx: %w", classify(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insertStmt, insertArgs, err := r.builder.Insert("logging.notifications").
		Columns("recipient_id", "message", "is_read", "created_at", "alert_id").
		Values(notification.RecipientID, notification.Message, false, at, alertID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert notification sql: %w", err)
	}

	var notificationID int64
	if err := tx.QueryRow(ctx, insertStmt, insertArgs...).Scan(&notificationID); err != nil {
		return 0, fmt.Errorf("insert notification: %w", classify(err))
	}

	updateStmt, updateArgs, err := r.builder.Update("logging.alerts").
		Set("updated_at", at).
		Where(squirrel.Eq{"id": alertID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build touch alert sql: %w", err)
	}

	tag, err := tx.Exec(ctx, updateStmt, updateArgs...)
	if err != nil {
		return 0, fmt.Errorf("touch alert: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return 0, repository.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit trigger tx: %w", classify(err))
	}

	return notificationID, nil
}

func (r *AlertRepository) queryAlerts(ctx context.Context, stmt string, args []any) ([]domain.Alert, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select alerts: %w", classify(err))
	}
	defer rows.Close()

	var out []domain.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", classify(err))
	}

	return out, nil
}

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var (
		alert         domain.Alert
		windowSeconds int64
	)
	if err := row.Scan(
		&alert.ID,
		&alert.ApplicationID,
		&alert.Level,
		&alert.Count,
		&windowSeconds,
		&alert.IsActive,
		&alert.UpdatedAt,
		&alert.CreatedByID,
	); err != nil {
		return nil, err
	}
	alert.TimeWindow = time.Duration(windowSeconds) * time.Second
	return &alert, nil
}
