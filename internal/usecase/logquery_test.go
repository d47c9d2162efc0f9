package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
)

var queryBase = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func queryFixture(t *testing.T) (*LogQueryService, *logStoreFake) {
	t.Helper()
	store := &logStoreFake{records: []domain.LogRecord{
		{ID: 1, Timestamp: queryBase, Level: domain.LevelError, Message: "db timeout", ApplicationID: 10},
		{ID: 2, Timestamp: queryBase.Add(time.Minute), Level: domain.LevelInfo, Message: "started", ApplicationID: 10},
		{ID: 3, Timestamp: queryBase.Add(2 * time.Minute), Level: domain.LevelError, Message: "db timeout", ApplicationID: 20},
		{ID: 4, Timestamp: queryBase.Add(3 * time.Minute), Level: domain.LevelWarning, Message: "slow query", ApplicationID: 30},
	}}
	perms := &permRepoMock{}
	perms.grant(7, 10)
	perms.grant(7, 20)
	scopes := NewScopeResolver(&userRepoMock{}, perms, zaptest.NewLogger(t))
	svc := NewLogQueryService(store, scopes, PageBounds{DefaultSize: 50, MaxSize: 100}, zaptest.NewLogger(t))
	return svc, store
}

func regularUser() domain.User {
	return domain.User{ID: 7, Role: domain.RoleUser}
}

func adminUser() domain.User {
	return domain.User{ID: 1, Role: domain.RoleAdmin}
}

func TestSearchScopedToGrantedApplications(t *testing.T) {
	svc, _ := queryFixture(t)

	page, err := svc.Search(context.Background(), regularUser(), LogFilter{}, PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 scoped records, got %d", page.Total)
	}
	for _, record := range page.Records {
		if record.ApplicationID == 30 {
			t.Fatal("record outside scope leaked into results")
		}
	}
}

func TestSearchRequestedIDsIntersectScope(t *testing.T) {
	svc, _ := queryFixture(t)

	page, err := svc.Search(context.Background(), regularUser(),
		LogFilter{ApplicationIDs: []int64{20, 30}}, PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 1 || page.Records[0].ApplicationID != 20 {
		t.Fatalf("expected only application 20 records, got %+v", page.Records)
	}
}

func TestSearchAdminUnrestricted(t *testing.T) {
	svc, _ := queryFixture(t)

	page, err := svc.Search(context.Background(), adminUser(), LogFilter{}, PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("expected all 4 records for admin, got %d", page.Total)
	}
}

func TestSearchUpperBoundExclusive(t *testing.T) {
	svc, _ := queryFixture(t)

	from := queryBase
	to := queryBase.Add(2 * time.Minute)
	page, err := svc.Search(context.Background(), adminUser(),
		LogFilter{From: &from, To: &to}, PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// Record 3 sits exactly on the upper bound and must be excluded.
	if page.Total != 2 {
		t.Fatalf("expected 2 records in half-open window, got %d", page.Total)
	}
	for _, record := range page.Records {
		if record.ID == 3 {
			t.Fatal("record at exclusive upper bound must not match")
		}
	}
}

func TestSearchInvertedWindowIsEmpty(t *testing.T) {
	svc, _ := queryFixture(t)

	from := queryBase.Add(time.Hour)
	to := queryBase
	page, err := svc.Search(context.Background(), adminUser(),
		LogFilter{From: &from, To: &to}, PageRequest{})
	if err != nil {
		t.Fatalf("inverted window should not error: %v", err)
	}
	if page.Total != 0 || len(page.Records) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestSearchLevelFilter(t *testing.T) {
	svc, _ := queryFixture(t)

	page, err := svc.Search(context.Background(), adminUser(),
		LogFilter{Levels: []string{"error"}}, PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 error records, got %d", page.Total)
	}
}

func TestSearchUnknownLevelRejected(t *testing.T) {
	svc, _ := queryFixture(t)

	_, err := svc.Search(context.Background(), adminUser(),
		LogFilter{Levels: []string{"FATAL"}}, PageRequest{})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSearchUnknownSortKeyRejected(t *testing.T) {
	svc, _ := queryFixture(t)

	_, err := svc.Search(context.Background(), adminUser(), LogFilter{}, PageRequest{SortBy: "message"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSearchPageSizeBounds(t *testing.T) {
	svc, _ := queryFixture(t)

	if _, err := svc.Search(context.Background(), adminUser(), LogFilter{}, PageRequest{Size: 101}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for oversized page, got %v", err)
	}
	if _, err := svc.Search(context.Background(), adminUser(), LogFilter{}, PageRequest{Page: -1}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for negative page, got %v", err)
	}

	page, err := svc.Search(context.Background(), adminUser(), LogFilter{}, PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Size != 50 {
		t.Fatalf("expected default page size 50, got %d", page.Size)
	}
}

func TestSearchPagination(t *testing.T) {
	svc, _ := queryFixture(t)

	page, err := svc.Search(context.Background(), adminUser(), LogFilter{},
		PageRequest{Page: 1, Size: 3, SortBy: "id"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 4 || page.TotalPages != 2 {
		t.Fatalf("expected total=4 pages=2, got total=%d pages=%d", page.Total, page.TotalPages)
	}
	if len(page.Records) != 1 || page.Records[0].ID != 4 {
		t.Fatalf("expected last record on second page, got %+v", page.Records)
	}
}

func TestSearchMessageSubstring(t *testing.T) {
	svc, _ := queryFixture(t)

	page, err := svc.Search(context.Background(), adminUser(),
		LogFilter{MessageContains: "db timeout"}, PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 matching records, got %d", page.Total)
	}
}

func TestSearchEmptyScopeSkipsStore(t *testing.T) {
	store := &logStoreFake{searchErr: errors.New("store must not be called")}
	scopes := NewScopeResolver(&userRepoMock{}, &permRepoMock{}, zaptest.NewLogger(t))
	svc := NewLogQueryService(store, scopes, PageBounds{}, zaptest.NewLogger(t))

	page, err := svc.Search(context.Background(), regularUser(), LogFilter{}, PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 0 || len(page.Records) != 0 {
		t.Fatalf("expected empty page for user without grants, got %+v", page)
	}
}
