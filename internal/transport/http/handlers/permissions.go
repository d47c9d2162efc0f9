package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// PermissionHandler manages bulk permission endpoints.
type PermissionHandler struct {
	permissions *usecase.PermissionBatchService
}

// NewPermissionHandler builds a new permission handler instance.
func NewPermissionHandler(permissions *usecase.PermissionBatchService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

// RegisterRoutes wires the permission endpoints into the provided router group.
func (h *PermissionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/grant", h.Grant)
	r.POST("/revoke", h.Revoke)
}

// Grant handles POST /permissions/grant. The grant applies to the full
// cartesian product of the referenced users and applications.
func (h *PermissionHandler) Grant(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PermissionBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid permission payload"))
		return
	}

	result, err := h.permissions.Grant(c.Request.Context(), *user, usecase.BatchPermissionInput{
		UserIDs:        req.UserIDs,
		ApplicationIDs: req.ApplicationIDs,
	})
	if err != nil {
		h.respondError(c, err, "failed to grant permissions")
		return
	}

	granted := make([]PermissionPayload, 0, len(result.Granted))
	for _, permission := range result.Granted {
		granted = append(granted, PermissionPayload{
			ID:            permission.ID,
			UserID:        permission.UserID,
			ApplicationID: permission.ApplicationID,
			Status:        string(permission.Status),
		})
	}

	c.JSON(http.StatusOK, PermissionGrantResponse{Granted: granted})
}

// Revoke handles POST /permissions/revoke.
func (h *PermissionHandler) Revoke(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PermissionBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid permission payload"))
		return
	}

	result, err := h.permissions.Revoke(c.Request.Context(), *user, usecase.BatchPermissionInput{
		UserIDs:        req.UserIDs,
		ApplicationIDs: req.ApplicationIDs,
	})
	if err != nil {
		h.respondError(c, err, "failed to revoke permissions")
		return
	}

	c.JSON(http.StatusOK, PermissionRevokeResponse{Revoked: result.Revoked})
}

// respondError surfaces missing entity details before falling back to the
// shared sentinel mapping.
func (h *PermissionHandler) respondError(c *gin.Context, err error, fallback string) {
	var missing *usecase.MissingEntitiesError
	if errors.As(err, &missing) {
		c.JSON(http.StatusUnprocessableEntity, newMissingEntitiesResponse(c, missing))
		return
	}

	RespondWithMappedError(c, err, []ErrorCase{
		{Err: usecase.ErrInvalidArgument, Status: http.StatusBadRequest, Message: "invalid permission payload"},
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	}, http.StatusInternalServerError, fallback)
}
