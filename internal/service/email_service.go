package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatloop/chat-backend/internal/apperror"
	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/internal/repository"
	"github.com/chatloop/chat-backend/internal/utils"
)

// verificationTokenLength is the entropy, in bytes, of a verification
// token string.
const verificationTokenLength = 32

// emailService generates verification tokens and dispatches the emails
// carrying them. Creating a token evicts the user's previous one, so a
// user holds at most one outstanding verification token across all
// purposes.
type emailService struct {
	userRepo         repository.UserRepository
	verificationRepo repository.VerificationTokenRepository
	sender           EmailSender
	clientURL        string
	tokenTTL         time.Duration
}

// NewEmailService creates a new verification email dispatcher
func NewEmailService(
	userRepo repository.UserRepository,
	verificationRepo repository.VerificationTokenRepository,
	sender EmailSender,
	clientURL string,
	tokenTTL time.Duration,
) EmailService {
	return &emailService{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		sender:           sender,
		clientURL:        clientURL,
		tokenTTL:         tokenTTL,
	}
}

func (s *emailService) generateVerificationToken(ctx context.Context, userID string, tokenType domain.VerificationTokenType) (string, error) {
	token, err := utils.RandomHex(verificationTokenLength)
	if err != nil {
		return "", apperror.Internal("")
	}

	if _, err := s.verificationRepo.DeleteByUserID(ctx, userID); err != nil {
		return "", apperror.Internal("")
	}

	verification := &domain.VerificationToken{
		UserID:      userID,
		Token:       token,
		TokenType:   tokenType,
		Verified:    false,
		TokenExpiry: time.Now().Add(s.tokenTTL),
	}
	if err := s.verificationRepo.Create(ctx, verification); err != nil {
		return "", apperror.Internal("")
	}

	return token, nil
}

func (s *emailService) verificationLink(token string) string {
	return fmt.Sprintf("%s/v1/auth/verify-verification-token/%s", s.clientURL, token)
}

func (s *emailService) lookupUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(email), repository.Include{Activity: true})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.AuthFailure("User not found")
		}
		return nil, apperror.Internal("")
	}
	if user.Activity == nil {
		return nil, apperror.AuthFailure("User not found")
	}
	return user, nil
}

// SendAccountVerificationEmail dispatches an account verification link
// for a currently restricted account.
func (s *emailService) SendAccountVerificationEmail(ctx context.Context, email string) error {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return err
	}
	if !user.Activity.AccessRestricted {
		return apperror.BadRequest("Account is already verified")
	}

	token, err := s.generateVerificationToken(ctx, user.ID, domain.TokenTypeVerifyAccount)
	if err != nil {
		return err
	}

	subject := "Verify your account"
	body := fmt.Sprintf("Please verify your account by clicking the link: %s", s.verificationLink(token))
	if err := s.sender.Send(ctx, user.Email, subject, body); err != nil {
		return apperror.Internal("")
	}
	return nil
}

// SendEmailVerificationEmail dispatches an email verification link for
// a not-yet-verified address.
func (s *emailService) SendEmailVerificationEmail(ctx context.Context, email string) error {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return err
	}
	if user.Activity.EmailVerified {
		return apperror.BadRequest("Email is already verified")
	}

	token, err := s.generateVerificationToken(ctx, user.ID, domain.TokenTypeVerifyEmail)
	if err != nil {
		return err
	}

	subject := "Verify your email"
	body := fmt.Sprintf("Please verify your email by clicking the link: %s", s.verificationLink(token))
	if err := s.sender.Send(ctx, user.Email, subject, body); err != nil {
		return apperror.Internal("")
	}
	return nil
}

// SendForgotPasswordVerificationEmail dispatches a password reset link
func (s *emailService) SendForgotPasswordVerificationEmail(ctx context.Context, email string) error {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.generateVerificationToken(ctx, user.ID, domain.TokenTypeResetPassword)
	if err != nil {
		return err
	}

	subject := "Reset your password"
	body := fmt.Sprintf("You can reset your password by clicking the link: %s", s.verificationLink(token))
	if err := s.sender.Send(ctx, user.Email, subject, body); err != nil {
		return apperror.Internal("")
	}
	return nil
}
