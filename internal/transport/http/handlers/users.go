package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtaha2509/logging-platform/internal/repository"
	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// UserHandler manages user account endpoints.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler builds a new user handler instance.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes wires the user endpoints into the provided router group.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/:id", h.Get)
}

var userErrorCases = []ErrorCase{
	{Err: usecase.ErrInvalidArgument, Status: http.StatusBadRequest, Message: "invalid user payload"},
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
	{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "email already registered"},
}

// Create handles POST /users. Admin only.
func (h *UserHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	created, err := h.users.CreateUser(c.Request.Context(), *user, usecase.CreateUserInput{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, newUserPayload(*created))
}

// List handles GET /users. Admin only.
func (h *UserHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	users, err := h.users.ListUsers(c.Request.Context(), *user)
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to list users")
		return
	}

	payloads := make([]UserPayload, 0, len(users))
	for _, u := range users {
		payloads = append(payloads, newUserPayload(u))
	}

	c.JSON(http.StatusOK, gin.H{"users": payloads})
}

// Get handles GET /users/:id. Users may read themselves; everything else
// requires admin.
func (h *UserHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	found, err := h.users.GetUser(c.Request.Context(), *user, id)
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to get user")
		return
	}

	c.JSON(http.StatusOK, newUserPayload(*found))
}
