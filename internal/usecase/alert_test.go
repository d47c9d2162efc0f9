package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/repository"
)

func alertServiceFixture(t *testing.T) (*AlertService, *alertRepoMock) {
	t.Helper()
	alerts := &alertRepoMock{}
	apps := &appRepoMock{apps: map[int64]domain.Application{
		10: {ID: 10, Name: "checkout", IsActive: true},
	}}
	perms := &permRepoMock{}
	perms.grant(7, 10)
	scopes := NewScopeResolver(&userRepoMock{}, perms, zaptest.NewLogger(t))
	return NewAlertService(alerts, apps, scopes), alerts
}

func TestCreateAlert(t *testing.T) {
	svc, _ := alertServiceFixture(t)

	alert, err := svc.CreateAlert(context.Background(), regularUser(), CreateAlertInput{
		ApplicationID: 10,
		Level:         "error",
		Count:         5,
		TimeWindow:    10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("create alert: %v", err)
	}
	if alert.ID == 0 || !alert.IsActive || alert.CreatedByID != 7 {
		t.Fatalf("unexpected alert: %+v", alert)
	}
	if alert.Level != domain.LevelError {
		t.Fatalf("expected parsed level, got %s", alert.Level)
	}
}

func TestCreateAlertRejectsDuplicateConfig(t *testing.T) {
	svc, _ := alertServiceFixture(t)

	input := CreateAlertInput{ApplicationID: 10, Level: "ERROR", Count: 5, TimeWindow: 10 * time.Minute}
	if _, err := svc.CreateAlert(context.Background(), regularUser(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateAlert(context.Background(), regularUser(), input)
	if !errors.Is(err, ErrAlertConfigExists) {
		t.Fatalf("expected ErrAlertConfigExists, got %v", err)
	}
}

func TestCreateAlertValidation(t *testing.T) {
	svc, _ := alertServiceFixture(t)
	user := regularUser()

	cases := []CreateAlertInput{
		{ApplicationID: 10, Level: "FATAL", Count: 5, TimeWindow: time.Minute},
		{ApplicationID: 10, Level: "ERROR", Count: 0, TimeWindow: time.Minute},
		{ApplicationID: 10, Level: "ERROR", Count: 5, TimeWindow: 0},
	}
	for _, input := range cases {
		if _, err := svc.CreateAlert(context.Background(), user, input); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("input %+v: expected ErrInvalidArgument, got %v", input, err)
		}
	}
}

func TestCreateAlertUnknownApplication(t *testing.T) {
	svc, _ := alertServiceFixture(t)

	_, err := svc.CreateAlert(context.Background(), regularUser(), CreateAlertInput{
		ApplicationID: 99, Level: "ERROR", Count: 5, TimeWindow: time.Minute,
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAlertOutsideScopeDenied(t *testing.T) {
	alerts := &alertRepoMock{}
	apps := &appRepoMock{apps: map[int64]domain.Application{
		10: {ID: 10, Name: "checkout", IsActive: true},
	}}
	scopes := NewScopeResolver(&userRepoMock{}, &permRepoMock{}, zaptest.NewLogger(t))
	svc := NewAlertService(alerts, apps, scopes)

	_, err := svc.CreateAlert(context.Background(), regularUser(), CreateAlertInput{
		ApplicationID: 10, Level: "ERROR", Count: 5, TimeWindow: time.Minute,
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestUpdateAlertOwnerOnly(t *testing.T) {
	svc, _ := alertServiceFixture(t)

	alert, err := svc.CreateAlert(context.Background(), regularUser(), CreateAlertInput{
		ApplicationID: 10, Level: "ERROR", Count: 5, TimeWindow: time.Minute,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := domain.User{ID: 55, Role: domain.RoleUser}
	newCount := 10
	if _, err := svc.UpdateAlert(context.Background(), stranger, UpdateAlertInput{ID: alert.ID, Count: &newCount}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	updated, err := svc.UpdateAlert(context.Background(), regularUser(), UpdateAlertInput{ID: alert.ID, Count: &newCount})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Count != 10 {
		t.Fatalf("expected count 10, got %d", updated.Count)
	}

	disabled := false
	updated, err = svc.UpdateAlert(context.Background(), adminUser(), UpdateAlertInput{ID: alert.ID, IsActive: &disabled})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected alert disabled")
	}
}

func TestDeleteAlert(t *testing.T) {
	svc, alerts := alertServiceFixture(t)

	alert, err := svc.CreateAlert(context.Background(), regularUser(), CreateAlertInput{
		ApplicationID: 10, Level: "ERROR", Count: 5, TimeWindow: time.Minute,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteAlert(context.Background(), regularUser(), alert.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := alerts.alerts[alert.ID]; ok {
		t.Fatal("alert should be gone")
	}
	if err := svc.DeleteAlert(context.Background(), regularUser(), alert.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAlertsAdminOnly(t *testing.T) {
	svc, _ := alertServiceFixture(t)

	if _, err := svc.ListAlerts(context.Background(), regularUser(), 0, 10); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if _, err := svc.ListAlerts(context.Background(), adminUser(), 0, 10); err != nil {
		t.Fatalf("admin list: %v", err)
	}
}
