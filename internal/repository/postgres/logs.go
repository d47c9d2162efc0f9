package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
)

// LogRepository implements port.LogStore using PostgreSQL. The logs table is
// written by the ingestion pipeline; this repository only reads it.
type LogRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewLogRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewLogRepository(exec pgExecutor) *LogRepository {
	repo := &LogRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

var logColumns = []string{"id", "timestamp", "level", "message", "application_id"}

func (r *LogRepository) whereClauses(base squirrel.SelectBuilder, query port.LogQuery) squirrel.SelectBuilder {
	if len(query.ApplicationIDs) > 0 {
		base = base.Where(squirrel.Eq{"application_id": query.ApplicationIDs})
	}
	if len(query.Levels) > 0 {
		base = base.Where(squirrel.Eq{"level": query.Levels})
	}
	if query.From != nil {
		base = base.Where(squirrel.GtOrEq{"timestamp": *query.From})
	}
	if query.To != nil {
		base = base.Where(squirrel.Lt{"timestamp": *query.To})
	}
	if query.MessageContains != "" {
		base = base.Where(squirrel.ILike{"message": "%" + escapeLike(query.MessageContains) + "%"})
	}
	return base
}

// Search returns the matching page of records plus the total match count.
func (r *LogRepository) Search(ctx context.Context, query port.LogQuery) ([]domain.LogRecord, int64, error) {
	countStmt, countArgs, err := r.whereClauses(
		r.builder.Select("count(*)").From("logging.logs"), query,
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count logs sql: %w", err)
	}

	var total int64
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count logs: %w", classify(err))
	}

	direction := "ASC"
	if query.Sort.Descending {
		direction = "DESC"
	}
	orderBy := []string{fmt.Sprintf("%s %s", sortColumn(query.Sort.Key), direction), "id DESC"}
	if query.Sort.Key == port.LogSortID {
		orderBy = orderBy[:1]
	}

	selectStmt, selectArgs, err := r.whereClauses(
		r.builder.Select(logColumns...).From("logging.logs"), query,
	).
		OrderBy(orderBy...).
		Offset(uint64(query.Offset)).
		Limit(uint64(query.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build select logs sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, selectStmt, selectArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("select logs: %w", classify(err))
	}
	defer rows.Close()

	var out []domain.LogRecord
	for rows.Next() {
		var record domain.LogRecord
		if err := rows.Scan(&record.ID, &record.Timestamp, &record.Level, &record.Message, &record.ApplicationID); err != nil {
			return nil, 0, fmt.Errorf("scan log record: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate log records: %w", classify(err))
	}

	return out, total, nil
}

// CountInWindow counts records for one application and level inside [from, to).
func (r *LogRepository) CountInWindow(ctx context.Context, appID int64, level domain.Level, from, to time.Time) (int64, error) {
	stmt, args, err := r.builder.Select("count(*)").
		From("logging.logs").
		Where(squirrel.Eq{"application_id": appID, "level": level}).
		Where(squirrel.GtOrEq{"timestamp": from}).
		Where(squirrel.Lt{"timestamp": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count window sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count logs in window: %w", classify(err))
	}

	return count, nil
}

// CountByBucket aggregates per-level counts into fixed-width buckets spanning [from, to).
func (r *LogRepository) CountByBucket(ctx context.Context, appIDs []int64, from, to time.Time, width time.Duration) ([]port.BucketLevelCount, error) {
	base := r.builder.Select().
		Column(squirrel.Expr(
			"floor(extract(epoch from (timestamp - ?::timestamptz)) / ?)::int AS bucket",
			from, width.Seconds(),
		)).
		Columns("level", "count(*)").
		From("logging.logs").
		Where(squirrel.GtOrEq{"timestamp": from}).
		Where(squirrel.Lt{"timestamp": to})
	if len(appIDs) > 0 {
		base = base.Where(squirrel.Eq{"application_id": appIDs})
	}

	stmt, args, err := base.
		GroupBy("bucket", "level").
		OrderBy("bucket", "level").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bucket counts sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("count logs by bucket: %w", classify(err))
	}
	defer rows.Close()

	var out []port.BucketLevelCount
	for rows.Next() {
		var row port.BucketLevelCount
		if err := rows.Scan(&row.Bucket, &row.Level, &row.Count); err != nil {
			return nil, fmt.Errorf("scan bucket count: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bucket counts: %w", classify(err))
	}

	return out, nil
}

// CountByLevel aggregates per-level counts over [from, to).
func (r *LogRepository) CountByLevel(ctx context.Context, appIDs []int64, from, to time.Time) ([]port.LevelCount, error) {
	base := r.builder.Select("level", "count(*)").
		From("logging.logs").
		Where(squirrel.GtOrEq{"timestamp": from}).
		Where(squirrel.Lt{"timestamp": to})
	if len(appIDs) > 0 {
		base = base.Where(squirrel.Eq{"application_id": appIDs})
	}

	stmt, args, err := base.
		GroupBy("level").
		OrderBy("level").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build level counts sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("count logs by level: %w", classify(err))
	}
	defer rows.Close()

	var out []port.LevelCount
	for rows.Next() {
		var row port.LevelCount
		if err := rows.Scan(&row.Level, &row.Count); err != nil {
			return nil, fmt.Errorf("scan level count: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate level counts: %w", classify(err))
	}

	return out, nil
}

func sortColumn(key port.LogSortKey) string {
	switch key {
	case port.LogSortLevel:
		return "level"
	case port.LogSortID:
		return "id"
	default:
		return "timestamp"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
