package dto

import "github.com/chatloop/chat-backend/internal/domain"

// LoginRequest carries login credentials: exactly one of email or
// userName must be set.
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	UserName string `json:"userName" binding:"omitempty,min=3,max=30"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents a registration request
type SignupRequest struct {
	UserName  string `json:"userName" binding:"required,min=3,max=30"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Gender    string `json:"gender" binding:"required,oneof=male female other"`
	Password  string `json:"password" binding:"required,min=8"`
}

// TokenRefreshRequest carries the refresh token; the expired access
// token travels in the Authorization header.
type TokenRefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// EmailRequest carries the address for the verification email flows
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the new password for a reset
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ChangePasswordRequest carries old and new password for a change
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// UpdateUserNameRequest carries the new username
type UpdateUserNameRequest struct {
	UserName string `json:"userName" binding:"required,min=3,max=30"`
}

// AuthResponse is the login/signup success payload
type AuthResponse struct {
	User   *domain.User     `json:"user"`
	Role   *domain.Role     `json:"role"`
	Tokens domain.TokenPair `json:"tokens"`
}

// VerificationResult is the verify-verification-token success payload.
// Exactly one field is set depending on the token purpose.
type VerificationResult struct {
	EmailVerified   bool   `json:"emailVerified,omitempty"`
	AccountVerified bool   `json:"accountVerified,omitempty"`
	TokenID         string `json:"tokenId,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
}
