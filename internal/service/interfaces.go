package service

import (
	"context"

	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/internal/dto"
)

// AuthService defines the authentication and token-rotation operations
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	RefreshTokens(ctx context.Context, accessToken, refreshToken string) (*domain.TokenPair, error)
	VerifyVerificationToken(ctx context.Context, token string) (*dto.VerificationResult, error)
	ResetPassword(ctx context.Context, tokenID, newPassword string) error
	ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) error

	// VerifyAccessToken is the shared admission path for HTTP and
	// realtime connections: full token verification plus the
	// live-key-pair check.
	VerifyAccessToken(ctx context.Context, token string) (*domain.User, *domain.TokenPayload, error)
}

// EmailService dispatches verification emails
type EmailService interface {
	SendAccountVerificationEmail(ctx context.Context, email string) error
	SendEmailVerificationEmail(ctx context.Context, email string) error
	SendForgotPasswordVerificationEmail(ctx context.Context, email string) error
}

// UserService defines profile management operations
type UserService interface {
	UpdateUserName(ctx context.Context, userID, newUserName string) error
}

// EmailSender delivers a single email. Implementations live in
// pkg/mailer; delivery failures surface as internal errors to callers.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
