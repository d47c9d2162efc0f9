package domain

import "time"

// Notification records a triggered alert for its recipient. Rows are written once
// by the alert evaluator; only the IsRead flag ever changes afterwards.
type Notification struct {
	ID                int64
	RecipientID       int64
	Message           string
	IsRead            bool
	CreatedAt         time.Time
	TriggeringAlertID int64
}
