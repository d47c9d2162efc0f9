package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/repository"
)

func batchFixture(t *testing.T) (*PermissionBatchService, *permRepoMock, *scopeCacheMock, *publishedEvents) {
	t.Helper()
	users := &userRepoMock{users: map[int64]domain.User{
		1: {ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin},
		7: {ID: 7, Email: "dev@example.com", Role: domain.RoleUser},
		8: {ID: 8, Email: "ops@example.com", Role: domain.RoleUser},
	}}
	apps := &appRepoMock{apps: map[int64]domain.Application{
		10: {ID: 10, Name: "checkout", IsActive: true},
		20: {ID: 20, Name: "billing", IsActive: true},
	}}
	perms := &permRepoMock{}
	cache := &scopeCacheMock{}
	events := &publishedEvents{}
	scopes := NewScopeResolver(users, perms, zaptest.NewLogger(t)).WithCache(cache, 0)
	svc := NewPermissionBatchService(perms, users, apps, scopes, events, zaptest.NewLogger(t))
	return svc, perms, cache, events
}

func TestGrantCartesianProduct(t *testing.T) {
	svc, perms, cache, events := batchFixture(t)

	result, err := svc.Grant(context.Background(), adminUser(), BatchPermissionInput{
		UserIDs:        []int64{7, 8},
		ApplicationIDs: []int64{10, 20},
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if len(result.Granted) != 4 {
		t.Fatalf("expected 4 grants, got %d", len(result.Granted))
	}
	for _, userID := range []int64{7, 8} {
		ids, _ := perms.ListActiveApplicationIDs(context.Background(), userID)
		if len(ids) != 2 {
			t.Fatalf("user %d expected 2 active grants, got %v", userID, ids)
		}
	}
	if len(cache.invalidated) != 2 {
		t.Fatalf("expected scope invalidation for both users, got %v", cache.invalidated)
	}
	if len(events.granted) != 1 || events.granted[0].GrantedCount != 4 {
		t.Fatalf("expected one granted event with count 4, got %+v", events.granted)
	}
}

func TestGrantSkipsAlreadyActive(t *testing.T) {
	svc, perms, _, _ := batchFixture(t)
	perms.grant(7, 10)

	result, err := svc.Grant(context.Background(), adminUser(), BatchPermissionInput{
		UserIDs:        []int64{7},
		ApplicationIDs: []int64{10, 20},
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if len(result.Granted) != 1 || result.Granted[0].ApplicationID != 20 {
		t.Fatalf("expected only the missing pair granted, got %+v", result.Granted)
	}
}

func TestGrantReactivatesRevoked(t *testing.T) {
	svc, perms, _, _ := batchFixture(t)
	perms.grant(7, 10)
	if _, err := perms.RevokeAll(context.Background(), []int64{7}, []int64{10}); err != nil {
		t.Fatalf("seed revoke: %v", err)
	}

	result, err := svc.Grant(context.Background(), adminUser(), BatchPermissionInput{
		UserIDs:        []int64{7},
		ApplicationIDs: []int64{10},
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if len(result.Granted) != 1 {
		t.Fatalf("revoked pair should be reactivated, got %+v", result.Granted)
	}
	ids, _ := perms.ListActiveApplicationIDs(context.Background(), 7)
	if len(ids) != 1 || ids[0] != 10 {
		t.Fatalf("expected grant active again, got %v", ids)
	}
}

func TestGrantRejectsNonAdmin(t *testing.T) {
	svc, _, _, _ := batchFixture(t)

	_, err := svc.Grant(context.Background(), regularUser(), BatchPermissionInput{
		UserIDs:        []int64{7},
		ApplicationIDs: []int64{10},
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestGrantRejectsEmptyInput(t *testing.T) {
	svc, _, _, _ := batchFixture(t)

	_, err := svc.Grant(context.Background(), adminUser(), BatchPermissionInput{UserIDs: []int64{7}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestGrantValidatesBeforeApplying(t *testing.T) {
	svc, perms, _, _ := batchFixture(t)

	_, err := svc.Grant(context.Background(), adminUser(), BatchPermissionInput{
		UserIDs:        []int64{7, 99},
		ApplicationIDs: []int64{10, 55},
	})

	var missingErr *MissingEntitiesError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingEntitiesError, got %v", err)
	}
	if len(missingErr.MissingUserIDs) != 1 || missingErr.MissingUserIDs[0] != 99 {
		t.Fatalf("expected missing user 99, got %v", missingErr.MissingUserIDs)
	}
	if len(missingErr.MissingApplicationIDs) != 1 || missingErr.MissingApplicationIDs[0] != 55 {
		t.Fatalf("expected missing application 55, got %v", missingErr.MissingApplicationIDs)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("missing entities must map to not found")
	}
	if len(perms.grants) != 0 {
		t.Fatal("no rows may be written when validation fails")
	}
}

func TestGrantDeduplicatesInput(t *testing.T) {
	svc, _, _, events := batchFixture(t)

	result, err := svc.Grant(context.Background(), adminUser(), BatchPermissionInput{
		UserIDs:        []int64{7, 7, 7},
		ApplicationIDs: []int64{10, 10},
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if len(result.Granted) != 1 {
		t.Fatalf("expected a single grant for duplicated input, got %d", len(result.Granted))
	}
	if len(events.granted[0].UserIDs) != 1 || len(events.granted[0].ApplicationIDs) != 1 {
		t.Fatalf("event must carry deduplicated ids, got %+v", events.granted[0])
	}
}

func TestRevokeFlipsActiveRows(t *testing.T) {
	svc, perms, cache, events := batchFixture(t)
	perms.grant(7, 10)
	perms.grant(7, 20)
	perms.grant(8, 10)

	result, err := svc.Revoke(context.Background(), adminUser(), BatchPermissionInput{
		UserIDs:        []int64{7},
		ApplicationIDs: []int64{10, 20},
	})
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if result.Revoked != 2 {
		t.Fatalf("expected 2 revocations, got %d", result.Revoked)
	}
	ids, _ := perms.ListActiveApplicationIDs(context.Background(), 7)
	if len(ids) != 0 {
		t.Fatalf("user 7 should have no active grants, got %v", ids)
	}
	ids, _ = perms.ListActiveApplicationIDs(context.Background(), 8)
	if len(ids) != 1 {
		t.Fatalf("user 8 grants must be untouched, got %v", ids)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != 7 {
		t.Fatalf("expected invalidation for user 7, got %v", cache.invalidated)
	}
	if len(events.revoked) != 1 || events.revoked[0].RevokedCount != 2 {
		t.Fatalf("expected one revoked event with count 2, got %+v", events.revoked)
	}
}

func TestRevokeWithoutActiveGrantsIsNoop(t *testing.T) {
	svc, _, _, _ := batchFixture(t)

	result, err := svc.Revoke(context.Background(), adminUser(), BatchPermissionInput{
		UserIDs:        []int64{7},
		ApplicationIDs: []int64{10},
	})
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if result.Revoked != 0 {
		t.Fatalf("expected 0 revocations, got %d", result.Revoked)
	}
}

func TestGrantEventFailureDoesNotFailBatch(t *testing.T) {
	svc, perms, _, events := batchFixture(t)
	events.err = errors.New("broker down")

	_, err := svc.Grant(context.Background(), adminUser(), BatchPermissionInput{
		UserIDs:        []int64{7},
		ApplicationIDs: []int64{10},
	})
	if err != nil {
		t.Fatalf("event publish failure must not fail the grant: %v", err)
	}
	ids, _ := perms.ListActiveApplicationIDs(context.Background(), 7)
	if len(ids) != 1 {
		t.Fatalf("grant must still apply, got %v", ids)
	}
}
