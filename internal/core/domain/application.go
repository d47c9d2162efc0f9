package domain

import "time"

// Application is a registered log producer. Log records and alerts reference it by id.
type Application struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	UpdatedAt   time.Time
}
