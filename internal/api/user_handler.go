package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifenotes-backend-go/internal/core"
	"lifenotes-backend-go/internal/models"
)

// UserHandler handles user profile related API endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

// UpsertUser handles POST /users
func (h *UserHandler) UpsertUser(c *gin.Context) {
	var req models.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	created, err := h.userService.UpsertUser(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, UpsertUserResponse{Acknowledged: true, Created: created})
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:email
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetRole handles GET /users/role/:email. Unknown users get an empty role, never 404.
func (h *UserHandler) GetRole(c *gin.Context) {
	role, err := h.userService.GetRole(c.Request.Context(), c.Param("email"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, RoleResponse{Role: role})
}

// UpdateUser handles PATCH /users/:email
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	if err := h.userService.UpdateUser(c.Request.Context(), c.Param("email"), patch); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, UpdateAck{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1})
}
