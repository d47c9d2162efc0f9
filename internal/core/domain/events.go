package domain

import "time"

// AlertTriggeredEvent is published when an alert crosses its threshold.
type AlertTriggeredEvent struct {
	AlertID        int64     `json:"alert_id"`
	ApplicationID  int64     `json:"application_id"`
	Level          Level     `json:"level"`
	ObservedCount  int64     `json:"observed_count"`
	Threshold      int       `json:"threshold"`
	WindowSeconds  int64     `json:"window_seconds"`
	NotificationID int64     `json:"notification_id"`
	RecipientID    int64     `json:"recipient_id"`
	TriggeredAt    time.Time `json:"triggered_at"`
}

// PermissionsGrantedEvent is published after a bulk grant commits.
type PermissionsGrantedEvent struct {
	UserIDs        []int64 `json:"user_ids"`
	ApplicationIDs []int64 `json:"application_ids"`
	GrantedCount   int     `json:"granted_count"`
	ActorID        int64   `json:"actor_id"`
}

// PermissionsRevokedEvent is published after a bulk revoke commits.
type PermissionsRevokedEvent struct {
	UserIDs        []int64 `json:"user_ids"`
	ApplicationIDs []int64 `json:"application_ids"`
	RevokedCount   int64   `json:"revoked_count"`
	ActorID        int64   `json:"actor_id"`
}
