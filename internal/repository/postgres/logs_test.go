package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
)

func TestLogRepository_Search(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewLogRepository(mock)

	from := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM logging\.logs`).
		WithArgs(int64(10), domain.LevelError, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	rows := pgxmock.NewRows([]string{"id", "timestamp", "level", "message", "application_id"}).
		AddRow(int64(2), from.Add(time.Minute), domain.LevelError, "db timeout", int64(10)).
		AddRow(int64(1), from, domain.LevelError, "db timeout", int64(10))
	mock.ExpectQuery(`SELECT id, timestamp, level, message, application_id FROM logging\.logs`).
		WithArgs(int64(10), domain.LevelError, from, to).
		WillReturnRows(rows)

	records, total, err := repo.Search(context.Background(), port.LogQuery{
		ApplicationIDs: []int64{10},
		Levels:         []domain.Level{domain.LevelError},
		From:           &from,
		To:             &to,
		Sort:           port.LogSort{Key: port.LogSortTimestamp, Descending: true},
		Limit:          50,
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if total != 2 || len(records) != 2 {
		t.Fatalf("expected 2 records, got total=%d len=%d", total, len(records))
	}
	if records[0].ID != 2 {
		t.Fatalf("expected newest record first, got %d", records[0].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLogRepository_CountInWindow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewLogRepository(mock)

	from := time.Date(2026, 8, 1, 11, 55, 0, 0, time.UTC)
	to := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM logging\.logs`).
		WithArgs(int64(10), domain.LevelError, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.CountInWindow(context.Background(), 10, domain.LevelError, from, to)
	if err != nil {
		t.Fatalf("CountInWindow returned error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLogRepository_CountByBucket(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewLogRepository(mock)

	from := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	rows := pgxmock.NewRows([]string{"bucket", "level", "count"}).
		AddRow(0, domain.LevelError, int64(3)).
		AddRow(5, domain.LevelInfo, int64(1))
	mock.ExpectQuery(`floor\(extract\(epoch from \(timestamp - \$1::timestamptz\)\) / \$2\)::int AS bucket`).
		WithArgs(from, float64(60), from, to, int64(10)).
		WillReturnRows(rows)

	counts, err := repo.CountByBucket(context.Background(), []int64{10}, from, to, time.Minute)
	if err != nil {
		t.Fatalf("CountByBucket returned error: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(counts))
	}
	if counts[0].Bucket != 0 || counts[0].Level != domain.LevelError || counts[0].Count != 3 {
		t.Fatalf("unexpected first row: %+v", counts[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
