package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mtaha2509/logging-platform/internal/repository"
	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// AlertHandler manages alert rule endpoints.
type AlertHandler struct {
	alerts *usecase.AlertService
}

// NewAlertHandler builds a new alert handler instance.
func NewAlertHandler(alerts *usecase.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// RegisterRoutes wires the alert endpoints into the provided router group.
func (h *AlertHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/mine", h.ListOwn)
	r.GET("/:id", h.Get)
	r.PATCH("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

var alertErrorCases = []ErrorCase{
	{Err: usecase.ErrInvalidArgument, Status: http.StatusBadRequest, Message: "invalid alert payload"},
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: usecase.ErrAlertConfigExists, Status: http.StatusConflict, Message: "alert with the same configuration already exists"},
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "alert or application not found"},
}

// Create handles POST /alerts.
func (h *AlertHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req AlertCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid alert payload"))
		return
	}

	alert, err := h.alerts.CreateAlert(c.Request.Context(), *user, usecase.CreateAlertInput{
		ApplicationID: req.ApplicationID,
		Level:         req.Level,
		Count:         req.Count,
		TimeWindow:    time.Duration(req.WindowSeconds) * time.Second,
	})
	if err != nil {
		RespondWithMappedError(c, err, alertErrorCases, http.StatusInternalServerError, "failed to create alert")
		return
	}

	c.JSON(http.StatusCreated, newAlertPayload(*alert))
}

// List handles GET /alerts. Admin only.
func (h *AlertHandler) List(c *gin.Context) {
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

	result, err := h.alerts.ListAlerts(c.Request.Context(), *user, offset, limit)
	if err != nil {
		RespondWithMappedError(c, err, alertErrorCases, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	alerts := make([]AlertPayload, 0, len(result.Alerts))
	for _, alert := range result.Alerts {
		alerts = append(alerts, newAlertPayload(alert))
	}

	c.JSON(http.StatusOK, AlertListResponse{
		Alerts: alerts,
		Total:  result.Total,
		Offset: result.Offset,
		Limit:  result.Limit,
	})
}

// ListOwn handles GET /alerts/mine.
func (h *AlertHandler) ListOwn(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	alerts, err := h.alerts.ListOwnAlerts(c.Request.Context(), *user)
	if err != nil {
		RespondWithMappedError(c, err, alertErrorCases, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	payloads := make([]AlertPayload, 0, len(alerts))
	for _, alert := range alerts {
		payloads = append(payloads, newAlertPayload(alert))
	}

	c.JSON(http.StatusOK, gin.H{"alerts": payloads})
}

// Get handles GET /alerts/:id.
func (h *AlertHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	alert, err := h.alerts.GetAlert(c.Request.Context(), *user, id)
	if err != nil {
		RespondWithMappedError(c, err, alertErrorCases, http.StatusInternalServerError, "failed to get alert")
		return
	}

	c.JSON(http.StatusOK, newAlertPayload(*alert))
}

// Update handles PATCH /alerts/:id.
func (h *AlertHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AlertUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid alert payload"))
		return
	}

	input := usecase.UpdateAlertInput{
		ID:       id,
		Level:    req.Level,
		Count:    req.Count,
		IsActive: req.IsActive,
	}
	if req.WindowSeconds != nil {
		window := time.Duration(*req.WindowSeconds) * time.Second
		input.TimeWindow = &window
	}

	alert, err := h.alerts.UpdateAlert(c.Request.Context(), *user, input)
	if err != nil {
		RespondWithMappedError(c, err, alertErrorCases, http.StatusInternalServerError, "failed to update alert")
		return
	}

	c.JSON(http.StatusOK, newAlertPayload(*alert))
}

// Delete handles DELETE /alerts/:id.
func (h *AlertHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.alerts.DeleteAlert(c.Request.Context(), *user, id); err != nil {
		RespondWithMappedError(c, err, alertErrorCases, http.StatusInternalServerError, "failed to delete alert")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "alert deleted"})
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid id parameter"))
		return 0, false
	}
	return id, true
}
