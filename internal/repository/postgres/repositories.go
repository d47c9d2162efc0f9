package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users         *UserRepository
	Applications  *ApplicationRepository
	Permissions   *PermissionRepository
	Logs          *LogRepository
	Alerts        *AlertRepository
	Notifications *NotificationRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(pool),
		Applications:  NewApplicationRepository(pool),
		Permissions:   NewPermissionRepository(pool),
		Logs:          NewLogRepository(pool),
		Alerts:        NewAlertRepository(pool),
		Notifications: NewNotificationRepository(pool),
	}
}
