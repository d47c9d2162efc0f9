package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtaha2509/logging-platform/internal/repository"
	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// NotificationHandler serves the caller's alert notifications.
type NotificationHandler struct {
	notifications *usecase.NotificationService
}

// NewNotificationHandler builds a new notification handler instance.
func NewNotificationHandler(notifications *usecase.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes wires the notification endpoints into the provided router group.
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.List)
	r.POST("/:id/read", h.MarkRead)
}

var notificationErrorCases = []ErrorCase{
	{Err: usecase.ErrInvalidArgument, Status: http.StatusBadRequest, Message: "invalid notification parameters"},
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "notification not found"},
}

// List handles GET /notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	offset, ok := parseIntParam(c, "offset", 0)
	if !ok {
		return
	}
	limit, ok := parseIntParam(c, "limit", 50)
	if !ok {
		return
	}

	result, err := h.notifications.ListOwn(c.Request.Context(), *user, offset, limit)
	if err != nil {
		RespondWithMappedError(c, err, notificationErrorCases, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	notifications := make([]NotificationPayload, 0, len(result.Notifications))
	for _, notification := range result.Notifications {
		notifications = append(notifications, newNotificationPayload(notification))
	}

	c.JSON(http.StatusOK, NotificationListResponse{
		Notifications: notifications,
		Total:         result.Total,
		Offset:        result.Offset,
		Limit:         result.Limit,
	})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), *user, id); err != nil {
		RespondWithMappedError(c, err, notificationErrorCases, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "notification marked read"})
}
