package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// LogRecordPayload is the API view of a stored log record.
type LogRecordPayload struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Level         string    `json:"level"`
	Message       string    `json:"message"`
	ApplicationID int64     `json:"application_id"`
}

// LogSearchResponse is one page of log search results.
type LogSearchResponse struct {
	Records    []LogRecordPayload `json:"records"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
	TotalPages int                `json:"total_pages"`
}

func newLogRecordPayload(record domain.LogRecord) LogRecordPayload {
	return LogRecordPayload{
		ID:            record.ID,
		Timestamp:     record.Timestamp,
		Level:         string(record.Level),
		Message:       record.Message,
		ApplicationID: record.ApplicationID,
	}
}

// TrendBucketPayload is one time slice of a trend report.
type TrendBucketPayload struct {
	Start  time.Time        `json:"start"`
	End    time.Time        `json:"end"`
	Counts map[string]int64 `json:"counts"`
}

// TrendResponse is a bucketed per-level log volume report.
type TrendResponse struct {
	Period  string               `json:"period"`
	From    time.Time            `json:"from"`
	To      time.Time            `json:"to"`
	Buckets []TrendBucketPayload `json:"buckets"`
	Totals  map[string]int64     `json:"totals"`
}

// SummaryResponse is a per-level count over a reporting window with no time
// dimension. Levels absent from the data are omitted.
type SummaryResponse struct {
	Period string           `json:"period"`
	From   time.Time        `json:"from"`
	To     time.Time        `json:"to"`
	Counts map[string]int64 `json:"counts"`
}

func levelCountsPayload(counts map[domain.Level]int64) map[string]int64 {
	out := make(map[string]int64, len(counts))
	for level, count := range counts {
		out[string(level)] = count
	}
	return out
}

// AlertCreateRequest defines the payload for registering an alert rule.
type AlertCreateRequest struct {
	ApplicationID int64  `json:"application_id" binding:"required"`
	Level         string `json:"level" binding:"required"`
	Count         int    `json:"count" binding:"required"`
	WindowSeconds int64  `json:"window_seconds" binding:"required"`
}

// AlertUpdateRequest defines the payload for updating an alert rule. Omitted
// fields are left unchanged.
type AlertUpdateRequest struct {
	Level         *string `json:"level"`
	Count         *int    `json:"count"`
	WindowSeconds *int64  `json:"window_seconds"`
	IsActive      *bool   `json:"is_active"`
}

// AlertPayload is the API view of an alert rule.
type AlertPayload struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	Level         string    `json:"level"`
	Count         int       `json:"count"`
	WindowSeconds int64     `json:"window_seconds"`
	IsActive      bool      `json:"is_active"`
	UpdatedAt     time.Time `json:"updated_at"`
	CreatedByID   int64     `json:"created_by_id"`
}

// AlertListResponse is a page of alert rules.
type AlertListResponse struct {
	Alerts []AlertPayload `json:"alerts"`
	Total  int64          `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

func newAlertPayload(alert domain.Alert) AlertPayload {
	return AlertPayload{
		ID:            alert.ID,
		ApplicationID: alert.ApplicationID,
		Level:         string(alert.Level),
		Count:         alert.Count,
		WindowSeconds: int64(alert.TimeWindow / time.Second),
		IsActive:      alert.IsActive,
		UpdatedAt:     alert.UpdatedAt,
		CreatedByID:   alert.CreatedByID,
	}
}

// PermissionBatchRequest names the users and applications a bulk grant or
// revoke operates on.
type PermissionBatchRequest struct {
	UserIDs        []int64 `json:"user_ids" binding:"required"`
	ApplicationIDs []int64 `json:"application_ids" binding:"required"`
}

// PermissionPayload is the API view of a single permission row.
type PermissionPayload struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	ApplicationID int64  `json:"application_id"`
	Status        string `json:"status"`
}

// PermissionGrantResponse reports the permissions activated by a bulk grant.
type PermissionGrantResponse struct {
	Granted []PermissionPayload `json:"granted"`
}

// PermissionRevokeResponse reports how many permissions a bulk revoke deactivated.
type PermissionRevokeResponse struct {
	Revoked int64 `json:"revoked"`
}

// MissingEntitiesResponse lists referenced ids that do not exist.
type MissingEntitiesResponse struct {
	Error                 string  `json:"error"`
	MissingUserIDs        []int64 `json:"missing_user_ids,omitempty"`
	MissingApplicationIDs []int64 `json:"missing_application_ids,omitempty"`
	TraceID               string  `json:"trace_id,omitempty"`
}

// NotificationPayload is the API view of an alert notification.
type NotificationPayload struct {
	ID                int64     `json:"id"`
	Message           string    `json:"message"`
	IsRead            bool      `json:"is_read"`
	CreatedAt         time.Time `json:"created_at"`
	TriggeringAlertID int64     `json:"triggering_alert_id"`
}

// NotificationListResponse is a page of the caller's notifications.
type NotificationListResponse struct {
	Notifications []NotificationPayload `json:"notifications"`
	Total         int64                 `json:"total"`
	Offset        int                   `json:"offset"`
	Limit         int                   `json:"limit"`
}

func newNotificationPayload(notification domain.Notification) NotificationPayload {
	return NotificationPayload{
		ID:                notification.ID,
		Message:           notification.Message,
		IsRead:            notification.IsRead,
		CreatedAt:         notification.CreatedAt,
		TriggeringAlertID: notification.TriggeringAlertID,
	}
}

// ApplicationCreateRequest defines the payload for registering an application.
type ApplicationCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ApplicationUpdateRequest defines the payload for updating an application.
// Omitted fields are left unchanged.
type ApplicationUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// ApplicationPayload is the API view of a registered application.
type ApplicationPayload struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newApplicationPayload(app domain.Application) ApplicationPayload {
	return ApplicationPayload{
		ID:          app.ID,
		Name:        app.Name,
		Description: app.Description,
		IsActive:    app.IsActive,
		UpdatedAt:   app.UpdatedAt,
	}
}

// UserCreateRequest defines the payload for registering a user account.
type UserCreateRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// UserPayload is the API view of a user account.
type UserPayload struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserPayload(user domain.User) UserPayload {
	return UserPayload{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

func newMissingEntitiesResponse(c *gin.Context, missing *usecase.MissingEntitiesError) MissingEntitiesResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return MissingEntitiesResponse{
		Error:                 "referenced entities do not exist",
		MissingUserIDs:        missing.MissingUserIDs,
		MissingApplicationIDs: missing.MissingApplicationIDs,
		TraceID:               traceIDStr,
	}
}
