package port

import (
	"context"
	"time"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

// LogSortKey names a column a log search may be ordered by.
type LogSortKey string

const (
	LogSortTimestamp LogSortKey = "timestamp"
	LogSortLevel     LogSortKey = "level"
	LogSortID        LogSortKey = "id"
)

// LogSort describes the requested result ordering. Ties are always broken by id
// descending so pagination is deterministic regardless of the chosen key.
type LogSort struct {
	Key        LogSortKey
	Descending bool
}

// LogQuery is the storage-level filter for a log search. Criteria combine with
// AND across fields and OR within a field's value set. An empty ApplicationIDs
// slice means unrestricted; callers enforce permission scoping before the query
// reaches the store. From is inclusive, To exclusive.
type LogQuery struct {
	ApplicationIDs  []int64
	Levels          []domain.Level
	From            *time.Time
	To              *time.Time
	MessageContains string
	Sort            LogSort
	Offset          int
	Limit           int
}

// LevelCount pairs a severity with the number of matching records.
type LevelCount struct {
	Level domain.Level
	Count int64
}

// BucketLevelCount is one aggregation row: the count of records of a level whose
// timestamp falls into the given zero-based bucket index.
type BucketLevelCount struct {
	Bucket int
	Level  domain.Level
	Count  int64
}

// LogStore exposes the read operations of the queryable log store. All windows
// are half-open: [from, to).
type LogStore interface {
	// Search returns the matching page of records plus the total match count.
	Search(ctx context.Context, query LogQuery) ([]domain.LogRecord, int64, error)
	// CountInWindow counts records for one application and level inside [from, to).
	CountInWindow(ctx context.Context, appID int64, level domain.Level, from, to time.Time) (int64, error)
	// CountByBucket aggregates per-level counts into fixed-width buckets spanning
	// [from, to). A nil appIDs slice means unrestricted.
	CountByBucket(ctx context.Context, appIDs []int64, from, to time.Time, width time.Duration) ([]BucketLevelCount, error)
	// CountByLevel aggregates per-level counts over [from, to). A nil appIDs
	// slice means unrestricted.
	CountByLevel(ctx context.Context, appIDs []int64, from, to time.Time) ([]LevelCount, error)
}
