package domain

import "time"

// Alert is a threshold rule: trigger when at least Count records of Level arrive
// for the application within the trailing TimeWindow.
type Alert struct {
	ID            int64
	ApplicationID int64
	Level         Level
	Count         int
	TimeWindow    time.Duration
	IsActive      bool
	UpdatedAt     time.Time
	CreatedByID   int64
}
