package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatloop/chat-backend/internal/apperror"
	"github.com/chatloop/chat-backend/internal/dto"
)

// respondError maps a service error to its HTTP status and {message}
// body. Unexpected errors are logged and, in production, collapsed to
// the generic internal message so internals never leak.
func respondError(c *gin.Context, logger *zap.Logger, production bool, err error) {
	apiErr := apperror.From(err)

	if apiErr.Kind == apperror.KindInternal {
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		if production {
			apiErr = apperror.Internal("")
		}
	}

	c.AbortWithStatusJSON(apiErr.StatusCode, dto.ErrorResponse{Message: apiErr.Message})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
}
