package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
)

// AuthHandler exposes identity endpoints for authenticated callers.
type AuthHandler struct{}

// NewAuthHandler builds a new auth handler instance.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// RegisterRoutes wires the auth endpoints into the provided router group.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Me)
}

// Me handles GET /auth/me, returning the account resolved from the bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, newUserPayload(*user))
}
