package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
	"github.com/mtaha2509/logging-platform/internal/repository"
)

// Shared in-memory fakes for service tests.

type userRepoMock struct {
	users     map[int64]domain.User
	nextID    int64
	createErr error
	listErr   error
}

func (m *userRepoMock) Create(_ context.Context, user domain.User) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	if m.users == nil {
		m.users = make(map[int64]domain.User)
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *userRepoMock) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) List(_ context.Context) ([]domain.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *userRepoMock) ListByIDs(_ context.Context, ids []int64) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (m *userRepoMock) ListExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []int64
	for _, id := range ids {
		if _, ok := m.users[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type appRepoMock struct {
	apps      map[int64]domain.Application
	nextID    int64
	createErr error
	updateErr error
	getErr    error
}

func (m *appRepoMock) Create(_ context.Context, app domain.Application) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	if m.apps == nil {
		m.apps = make(map[int64]domain.Application)
	}
	m.nextID++
	app.ID = m.nextID
	m.apps[app.ID] = app
	return app.ID, nil
}

func (m *appRepoMock) GetByID(_ context.Context, id int64) (*domain.Application, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if app, ok := m.apps[id]; ok {
		return &app, nil
	}
	return nil, repository.ErrNotFound
}

func (m *appRepoMock) List(_ context.Context) ([]domain.Application, error) {
	out := make([]domain.Application, 0, len(m.apps))
	for _, app := range m.apps {
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *appRepoMock) ListByIDs(_ context.Context, ids []int64) ([]domain.Application, error) {
	var out []domain.Application
	for _, id := range ids {
		if app, ok := m.apps[id]; ok {
			out = append(out, app)
		}
	}
	return out, nil
}

func (m *appRepoMock) ListExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if _, ok := m.apps[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *appRepoMock) Update(_ context.Context, app domain.Application) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.apps[app.ID]; !ok {
		return repository.ErrNotFound
	}
	m.apps[app.ID] = app
	return nil
}

type permissionKey struct {
	userID int64
	appID  int64
}

type permRepoMock struct {
	grants    map[permissionKey]domain.PermissionStatus
	nextID    int64
	listErr   error
	grantErr  error
	revokeErr error
}

func (m *permRepoMock) grant(userID, appID int64) {
	if m.grants == nil {
		m.grants = make(map[permissionKey]domain.PermissionStatus)
	}
	m.grants[permissionKey{userID: userID, appID: appID}] = domain.PermissionActive
}

func (m *permRepoMock) ListActiveApplicationIDs(_ context.Context, userID int64) ([]int64, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []int64
	for key, status := range m.grants {
		if key.userID == userID && status == domain.PermissionActive {
			out = append(out, key.appID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *permRepoMock) ListActiveUserIDs(_ context.Context, appID int64) ([]int64, error) {
	var out []int64
	for key, status := range m.grants {
		if key.appID == appID && status == domain.PermissionActive {
			out = append(out, key.userID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *permRepoMock) GrantAll(_ context.Context, userIDs, appIDs []int64) ([]domain.Permission, error) {
	if m.grantErr != nil {
		return nil, m.grantErr
	}
	if m.grants == nil {
		m.grants = make(map[permissionKey]domain.PermissionStatus)
	}
	var out []domain.Permission
	for _, userID := range userIDs {
		for _, appID := range appIDs {
			key := permissionKey{userID: userID, appID: appID}
			if m.grants[key] == domain.PermissionActive {
				continue
			}
			m.grants[key] = domain.PermissionActive
			m.nextID++
			out = append(out, domain.Permission{
				ID:            m.nextID,
				UserID:        userID,
				ApplicationID: appID,
				Status:        domain.PermissionActive,
			})
		}
	}
	return out, nil
}

func (m *permRepoMock) RevokeAll(_ context.Context, userIDs, appIDs []int64) (int64, error) {
	if m.revokeErr != nil {
		return 0, m.revokeErr
	}
	var revoked int64
	for _, userID := range userIDs {
		for _, appID := range appIDs {
			key := permissionKey{userID: userID, appID: appID}
			if m.grants[key] == domain.PermissionActive {
				m.grants[key] = domain.PermissionRevoked
				revoked++
			}
		}
	}
	return revoked, nil
}

type alertRepoMock struct {
	alerts     map[int64]domain.Alert
	triggered  []domain.Notification
	nextID     int64
	listErr    error
	triggerErr error
}

func (m *alertRepoMock) Create(_ context.Context, alert domain.Alert) (int64, error) {
	if m.alerts == nil {
		m.alerts = make(map[int64]domain.Alert)
	}
	m.nextID++
	alert.ID = m.nextID
	m.alerts[alert.ID] = alert
	return alert.ID, nil
}

func (m *alertRepoMock) GetByID(_ context.Context, id int64) (*domain.Alert, error) {
	if alert, ok := m.alerts[id]; ok {
		return &alert, nil
	}
	return nil, repository.ErrNotFound
}

func (m *alertRepoMock) List(_ context.Context, offset, limit int) ([]domain.Alert, int64, error) {
	all := m.sorted()
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Alert{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *alertRepoMock) ListByCreator(_ context.Context, userID int64) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, alert := range m.sorted() {
		if alert.CreatedByID == userID {
			out = append(out, alert)
		}
	}
	return out, nil
}

func (m *alertRepoMock) ListActive(_ context.Context) ([]domain.Alert, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Alert
	for _, alert := range m.sorted() {
		if alert.IsActive {
			out = append(out, alert)
		}
	}
	return out, nil
}

func (m *alertRepoMock) ExistsWithConfig(_ context.Context, appID int64, level domain.Level, count int, window time.Duration, excludeID int64) (bool, error) {
	for _, alert := range m.alerts {
		if alert.ID == excludeID {
			continue
		}
		if alert.ApplicationID == appID && alert.Level == level && alert.Count == count && alert.TimeWindow == window {
			return true, nil
		}
	}
	return false, nil
}

func (m *alertRepoMock) Update(_ context.Context, alert domain.Alert) error {
	if _, ok := m.alerts[alert.ID]; !ok {
		return repository.ErrNotFound
	}
	m.alerts[alert.ID] = alert
	return nil
}

func (m *alertRepoMock) Delete(_ context.Context, id int64) error {
	if _, ok := m.alerts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.alerts, id)
	return nil
}

func (m *alertRepoMock) RecordTrigger(_ context.Context, alertID int64, notification domain.Notification, at time.Time) (int64, error) {
	if m.triggerErr != nil {
		return 0, m.triggerErr
	}
	alert, ok := m.alerts[alertID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	alert.UpdatedAt = at
	m.alerts[alertID] = alert
	notification.ID = int64(len(m.triggered) + 1)
	notification.CreatedAt = at
	m.triggered = append(m.triggered, notification)
	return notification.ID, nil
}

func (m *alertRepoMock) sorted() []domain.Alert {
	out := make([]domain.Alert, 0, len(m.alerts))
	for _, alert := range m.alerts {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type notificationRepoMock struct {
	notifications map[int64]domain.Notification
	markErr       error
}

func (m *notificationRepoMock) GetByID(_ context.Context, id int64) (*domain.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return &n, nil
	}
	return nil, repository.ErrNotFound
}

func (m *notificationRepoMock) ListByRecipient(_ context.Context, userID int64, offset, limit int) ([]domain.Notification, int64, error) {
	var all []domain.Notification
	for _, n := range m.notifications {
		if n.RecipientID == userID {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Notification{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *notificationRepoMock) MarkRead(_ context.Context, id int64) error {
	if m.markErr != nil {
		return m.markErr
	}
	n, ok := m.notifications[id]
	if !ok {
		return repository.ErrNotFound
	}
	n.IsRead = true
	m.notifications[id] = n
	return nil
}

type scopeCacheMock struct {
	scopes      map[int64]domain.AccessScope
	getErr      error
	setErr      error
	gets        int
	sets        int
	invalidated []int64
}

func (m *scopeCacheMock) Get(_ context.Context, userID int64) (*domain.AccessScope, error) {
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	if scope, ok := m.scopes[userID]; ok {
		return &scope, nil
	}
	return nil, nil
}

func (m *scopeCacheMock) Set(_ context.Context, userID int64, scope domain.AccessScope, _ time.Duration) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	if m.scopes == nil {
		m.scopes = make(map[int64]domain.AccessScope)
	}
	m.scopes[userID] = scope
	return nil
}

func (m *scopeCacheMock) Invalidate(_ context.Context, userIDs ...int64) error {
	m.invalidated = append(m.invalidated, userIDs...)
	for _, id := range userIDs {
		delete(m.scopes, id)
	}
	return nil
}

type publishedEvents struct {
	triggered []domain.AlertTriggeredEvent
	granted   []domain.PermissionsGrantedEvent
	revoked   []domain.PermissionsRevokedEvent
	err       error
}

func (m *publishedEvents) PublishAlertTriggered(_ context.Context, event domain.AlertTriggeredEvent) error {
	if m.err != nil {
		return m.err
	}
	m.triggered = append(m.triggered, event)
	return nil
}

func (m *publishedEvents) PublishPermissionsGranted(_ context.Context, event domain.PermissionsGrantedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.granted = append(m.granted, event)
	return nil
}

func (m *publishedEvents) PublishPermissionsRevoked(_ context.Context, event domain.PermissionsRevokedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, event)
	return nil
}

// logStoreFake filters an in-memory record set so query semantics, not SQL, are
// what the tests exercise.
type logStoreFake struct {
	mu        sync.Mutex
	records   []domain.LogRecord
	searchErr error
	countErrs []error
	counts    int
}

func (m *logStoreFake) matches(record domain.LogRecord, query port.LogQuery) bool {
	if len(query.ApplicationIDs) > 0 {
		found := false
		for _, id := range query.ApplicationIDs {
			if record.ApplicationID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(query.Levels) > 0 {
		found := false
		for _, level := range query.Levels {
			if record.Level == level {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if query.From != nil && record.Timestamp.Before(*query.From) {
		return false
	}
	if query.To != nil && !record.Timestamp.Before(*query.To) {
		return false
	}
	if query.MessageContains != "" && !strings.Contains(record.Message, query.MessageContains) {
		return false
	}
	return true
}

func (m *logStoreFake) Search(_ context.Context, query port.LogQuery) ([]domain.LogRecord, int64, error) {
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}
	var all []domain.LogRecord
	for _, record := range m.records {
		if m.matches(record, query) {
			all = append(all, record)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		var less bool
		switch query.Sort.Key {
		case port.LogSortLevel:
			if a.Level != b.Level {
				less = a.Level < b.Level
			} else {
				less = a.ID < b.ID
			}
		case port.LogSortID:
			less = a.ID < b.ID
		default:
			if !a.Timestamp.Equal(b.Timestamp) {
				less = a.Timestamp.Before(b.Timestamp)
			} else {
				less = a.ID < b.ID
			}
		}
		if query.Sort.Descending {
			return !less
		}
		return less
	})
	total := int64(len(all))
	if query.Offset >= len(all) {
		return []domain.LogRecord{}, total, nil
	}
	end := query.Offset + query.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[query.Offset:end], total, nil
}

func (m *logStoreFake) CountInWindow(_ context.Context, appID int64, level domain.Level, from, to time.Time) (int64, error) {
	m.mu.Lock()
	m.counts++
	var injected error
	if len(m.countErrs) > 0 {
		injected = m.countErrs[0]
		m.countErrs = m.countErrs[1:]
	}
	m.mu.Unlock()
	if injected != nil {
		return 0, injected
	}
	var count int64
	for _, record := range m.records {
		if record.ApplicationID != appID || record.Level != level {
			continue
		}
		if record.Timestamp.Before(from) || !record.Timestamp.Before(to) {
			continue
		}
		count++
	}
	return count, nil
}

func (m *logStoreFake) CountByBucket(_ context.Context, appIDs []int64, from, to time.Time, width time.Duration) ([]port.BucketLevelCount, error) {
	byKey := make(map[[2]interface{}]int64)
	for _, record := range m.records {
		if len(appIDs) > 0 {
			found := false
			for _, id := range appIDs {
				if record.ApplicationID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if record.Timestamp.Before(from) || !record.Timestamp.Before(to) {
			continue
		}
		bucket := int(record.Timestamp.Sub(from) / width)
		byKey[[2]interface{}{bucket, record.Level}]++
	}
	var out []port.BucketLevelCount
	for key, count := range byKey {
		out = append(out, port.BucketLevelCount{
			Bucket: key[0].(int),
			Level:  key[1].(domain.Level),
			Count:  count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		return out[i].Level < out[j].Level
	})
	return out, nil
}

func (m *logStoreFake) CountByLevel(_ context.Context, appIDs []int64, from, to time.Time) ([]port.LevelCount, error) {
	byLevel := make(map[domain.Level]int64)
	for _, record := range m.records {
		if len(appIDs) > 0 {
			found := false
			for _, id := range appIDs {
				if record.ApplicationID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if record.Timestamp.Before(from) || !record.Timestamp.Before(to) {
			continue
		}
		byLevel[record.Level]++
	}
	var out []port.LevelCount
	for level, count := range byLevel {
		out = append(out, port.LevelCount{Level: level, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}
