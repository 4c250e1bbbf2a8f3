package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatloop/chat-backend/internal/apperror"
	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/internal/service"
)

const contextUserKey = "auth_user"

// sanitizeAuthHeader extracts the bearer token from the Authorization
// header. A missing or malformed header is an authorization failure,
// not a bad request.
func sanitizeAuthHeader(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", apperror.Forbidden("Authorization Failure")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", apperror.Forbidden("Authorization Failure")
	}
	return parts[1], nil
}

// AuthMiddleware verifies the access token (claim shape, signature,
// expiry, live key pair) and attaches the user to the request context.
func AuthMiddleware(authService service.AuthService, logger *zap.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := sanitizeAuthHeader(c)
		if err != nil {
			respondError(c, logger, production, err)
			return
		}

		user, _, err := authService.VerifyAccessToken(c.Request.Context(), token)
		if err != nil {
			respondError(c, logger, production, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// userFromContext returns the user attached by AuthMiddleware.
func userFromContext(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}
