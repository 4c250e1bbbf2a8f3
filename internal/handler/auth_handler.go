package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chatloop/chat-backend/internal/dto"
	"github.com/chatloop/chat-backend/internal/service"
)

// errMissingContextUser means a protected handler ran without the auth
// middleware having attached a user. That is a wiring bug, not a
// client error.
var errMissingContextUser = errors.New("authenticated user missing from request context")

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService  service.AuthService
	emailService service.EmailService
	logger       *zap.Logger
	production   bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, emailService service.EmailService, logger *zap.Logger, production bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		emailService: emailService,
		logger:       logger,
		production:   production,
	}
}

// Login authenticates with email or username plus password
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Signup registers a new user and opens a session
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Logout revokes the caller's token-key pair, invalidating every
// outstanding token of the session
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		respondError(c, h.logger, h.production, errMissingContextUser)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), user.ID); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Logout success"})
}

// RefreshTokens rotates the session: expired access token from the
// Authorization header, refresh token from the body
func (h *AuthHandler) RefreshTokens(c *gin.Context) {
	accessToken, err := sanitizeAuthHeader(c)
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	var req dto.TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tokens, err := h.authService.RefreshTokens(c.Request.Context(), accessToken, req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// VerifyAccount sends the account verification email
func (h *AuthHandler) VerifyAccount(c *gin.Context) {
	h.dispatchEmail(c, h.emailService.SendAccountVerificationEmail)
}

// VerifyEmail sends the email-address verification email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	h.dispatchEmail(c, h.emailService.SendEmailVerificationEmail)
}

// ForgotPassword sends the password reset email
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	h.dispatchEmail(c, h.emailService.SendForgotPasswordVerificationEmail)
}

func (h *AuthHandler) dispatchEmail(c *gin.Context, send func(ctx context.Context, email string) error) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := send(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Verification email sent"})
}

// VerifyVerificationToken consumes a verification token from an email
// link. For password resets it returns the token id the client passes
// to the reset endpoint.
func (h *AuthHandler) VerifyVerificationToken(c *gin.Context) {
	token := c.Param("token")

	result, err := h.authService.VerifyVerificationToken(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ResetPassword sets a new password using a verified reset token id
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	tokenID := c.Param("token")

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), tokenID, req.Password); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password reset success"})
}

// ChangePassword replaces the caller's password after validating the
// current one
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		respondError(c, h.logger, h.production, errMissingContextUser)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password change success"})
}
