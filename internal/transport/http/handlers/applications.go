package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtaha2509/logging-platform/internal/repository"
	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// ApplicationHandler manages registered application endpoints.
type ApplicationHandler struct {
	applications *usecase.ApplicationService
}

// NewApplicationHandler builds a new application handler instance.
func NewApplicationHandler(applications *usecase.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// RegisterRoutes wires the application endpoints into the provided router group.
func (h *ApplicationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.GET("/:id/users", h.ListUsers)
	r.PATCH("/:id", h.Update)
}

var applicationErrorCases = []ErrorCase{
	{Err: usecase.ErrInvalidArgument, Status: http.StatusBadRequest, Message: "invalid application payload"},
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "application not found"},
	{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "application name already taken"},
}

// Create handles POST /applications. Admin only.
func (h *ApplicationHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ApplicationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid application payload"))
		return
	}

	app, err := h.applications.CreateApplication(c.Request.Context(), *user, usecase.CreateApplicationInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		RespondWithMappedError(c, err, applicationErrorCases, http.StatusInternalServerError, "failed to create application")
		return
	}

	c.JSON(http.StatusCreated, newApplicationPayload(*app))
}

// List handles GET /applications, returning the caller's visible applications.
func (h *ApplicationHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	apps, err := h.applications.ListApplications(c.Request.Context(), *user)
	if err != nil {
		RespondWithMappedError(c, err, applicationErrorCases, http.StatusInternalServerError, "failed to list applications")
		return
	}

	payloads := make([]ApplicationPayload, 0, len(apps))
	for _, app := range apps {
		payloads = append(payloads, newApplicationPayload(app))
	}

	c.JSON(http.StatusOK, gin.H{"applications": payloads})
}

// Get handles GET /applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	app, err := h.applications.GetApplication(c.Request.Context(), *user, id)
	if err != nil {
		RespondWithMappedError(c, err, applicationErrorCases, http.StatusInternalServerError, "failed to get application")
		return
	}

	c.JSON(http.StatusOK, newApplicationPayload(*app))
}

// ListUsers handles GET /applications/:id/users, returning the users holding
// an active grant on the application. Admin only.
func (h *ApplicationHandler) ListUsers(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	users, err := h.applications.ListUsersWithAccess(c.Request.Context(), *user, id)
	if err != nil {
		RespondWithMappedError(c, err, applicationErrorCases, http.StatusInternalServerError, "failed to list application users")
		return
	}

	payloads := make([]UserPayload, 0, len(users))
	for _, u := range users {
		payloads = append(payloads, newUserPayload(u))
	}

	c.JSON(http.StatusOK, gin.H{"users": payloads})
}

// Update handles PATCH /applications/:id. Admin only.
func (h *ApplicationHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ApplicationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid application payload"))
		return
	}

	app, err := h.applications.UpdateApplication(c.Request.Context(), *user, usecase.UpdateApplicationInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		RespondWithMappedError(c, err, applicationErrorCases, http.StatusInternalServerError, "failed to update application")
		return
	}

	c.JSON(http.StatusOK, newApplicationPayload(*app))
}
