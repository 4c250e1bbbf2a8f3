package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatloop/chat-backend/internal/dto"
	"github.com/chatloop/chat-backend/internal/service"
)

// UserHandler handles profile management requests
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
	production  bool
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService, logger *zap.Logger, production bool) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
		production:  production,
	}
}

// UpdateUserName changes the caller's username
func (h *UserHandler) UpdateUserName(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		respondError(c, h.logger, h.production, errMissingContextUser)
		return
	}

	var req dto.UpdateUserNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.userService.UpdateUserName(c.Request.Context(), user.ID, req.UserName); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Username updated"})
}
