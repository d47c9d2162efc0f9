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

// NotificationRepository implements port.NotificationRepository using PostgreSQL.
type NotificationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewNotificationRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewNotificationRepository(exec pgExecutor) *NotificationRepository {
	repo := &NotificationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance that executes statements within the supplied transaction.
func (r *NotificationRepository) WithTx(tx pgx.Tx) *NotificationRepository {
	if tx == nil {
		return r
	}
	return &NotificationRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

var notificationColumns = []string{"id", "recipient_id", "message", "is_read", "created_at", "alert_id"}

// GetByID retrieves a notification by identifier.
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	stmt, args, err := r.builder.Select(notificationColumns...).
		From("logging.notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select notification sql: %w", err)
	}

	var n domain.Notification
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&n.ID, &n.RecipientID, &n.Message, &n.IsRead, &n.CreatedAt, &n.TriggeringAlertID,
	); err != nil {
		return nil, fmt.Errorf("select notification: %w", classify(err))
	}

	return &n, nil
}

// ListByRecipient returns a page of the user's notifications, newest first,
// plus the total count.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID int64, offset, limit int) ([]domain.Notification, int64, error) {
	countStmt, countArgs, err := r.builder.Select("count(*)").
		From("logging.notifications").
		Where(squirrel.Eq{"recipient_id": userID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count notifications sql: %w", err)
	}

	var total int64
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", classify(err))
	}

	stmt, args, err := r.builder.Select(notificationColumns...).
		From("logging.notifications").
		Where(squirrel.Eq{"recipient_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list notifications sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", classify(err))
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Message, &n.IsRead, &n.CreatedAt, &n.TriggeringAlertID); err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notifications: %w", classify(err))
	}

	return out, total, nil
}

// MarkRead flips the read flag on a notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Update("logging.notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark read sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
