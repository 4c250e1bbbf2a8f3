package service

import (
	"context"
	"errors"
	"time"

	"github.com/chatloop/chat-backend/internal/apperror"
	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/internal/dto"
	"github.com/chatloop/chat-backend/internal/repository"
	"github.com/chatloop/chat-backend/internal/utils"
)

// tokenKeyLength is the entropy, in bytes, of each token key embedded
// in the signed tokens and mirrored in the key pair store.
const tokenKeyLength = 64

// authService implements AuthService interface
type authService struct {
	userRepo         repository.UserRepository
	roleRepo         repository.RoleRepository
	activityRepo     repository.ActivityRepository
	keysRepo         repository.AuthTokenKeysRepository
	verificationRepo repository.VerificationTokenRepository
	hasher           *utils.PasswordHasher
	codec            *utils.TokenCodec
	lockoutThreshold int
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	activityRepo repository.ActivityRepository,
	keysRepo repository.AuthTokenKeysRepository,
	verificationRepo repository.VerificationTokenRepository,
	hasher *utils.PasswordHasher,
	codec *utils.TokenCodec,
	lockoutThreshold int,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		activityRepo:     activityRepo,
		keysRepo:         keysRepo,
		verificationRepo: verificationRepo,
		hasher:           hasher,
		codec:            codec,
		lockoutThreshold: lockoutThreshold,
	}
}

// Login authenticates a user by email or username, enforcing the
// lockout policy and rotating the session key pair.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var (
		user *domain.User
		err  error
	)

	include := repository.Include{Role: true, Activity: true}
	switch {
	case req.Email != "" && req.UserName != "":
		return nil, apperror.BadRequest("Please provide email or username, not both")
	case req.Email != "":
		user, err = s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email), include)
	case req.UserName != "":
		user, err = s.userRepo.GetByUserName(ctx, req.UserName, include)
	default:
		return nil, apperror.BadRequest("Please provide email or username")
	}

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Forbidden("User not found")
		}
		return nil, apperror.Internal("")
	}

	if user.PasswordHash == "" || user.Role == nil || user.Activity == nil {
		return nil, apperror.Forbidden("Missing user credentials")
	}

	if user.Activity.PermanentAccessRestricted {
		return nil, apperror.Forbidden("Account access permanently restricted")
	}
	if user.Activity.AccessRestricted {
		return nil, apperror.Forbidden("Please verify your account")
	}

	valid, err := s.hasher.Validate(req.Password, user.PasswordHash)
	if err != nil {
		return nil, apperror.From(err)
	}
	if !valid {
		if failErr := s.recordFailedLogin(ctx, user.Activity); failErr != nil {
			return nil, failErr
		}
		return nil, apperror.AuthFailure("Invalid Password")
	}

	if user.Activity.FailedLoginAttempts != 0 {
		user.Activity.FailedLoginAttempts = 0
		if err := s.activityRepo.Update(ctx, user.Activity); err != nil {
			return nil, apperror.Internal("")
		}
	}

	tokens, err := s.issueFreshSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:   sanitizeUser(user),
		Role:   user.Role,
		Tokens: *tokens,
	}, nil
}

// recordFailedLogin advances the lockout counter. Crossing the
// threshold restricts the account, resets the counter, and revokes any
// live session.
func (s *authService) recordFailedLogin(ctx context.Context, activity *domain.Activity) error {
	if activity.FailedLoginAttempts >= s.lockoutThreshold {
		activity.FailedLoginAttempts = 0
		activity.AccessRestricted = true
		if err := s.activityRepo.Update(ctx, activity); err != nil {
			return apperror.Internal("")
		}
		if _, err := s.keysRepo.DeleteByUserID(ctx, activity.UserID); err != nil {
			return apperror.Internal("")
		}
		return nil
	}

	activity.FailedLoginAttempts++
	if err := s.activityRepo.Update(ctx, activity); err != nil {
		return apperror.Internal("")
	}
	return nil
}

// Signup registers a new user with default role and security state and
// issues the first session.
func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	email := utils.SanitizeEmail(req.Email)

	if !utils.ValidateEmail(email) {
		return nil, apperror.BadRequest("Invalid email address")
	}
	if !utils.ValidateUserName(req.UserName) {
		return nil, apperror.BadRequest("Invalid username")
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, apperror.BadRequest("Password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email, repository.Include{}); err == nil {
		return nil, apperror.BadRequest("User already exists with this email")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("")
	}

	if _, err := s.userRepo.GetByUserName(ctx, req.UserName, repository.Include{}); err == nil {
		return nil, apperror.BadRequest("Username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("")
	}

	passwordHash, err := s.hasher.Hash(req.Password, "")
	if err != nil {
		return nil, apperror.Internal("Failed to create user")
	}

	user := &domain.User{
		UserName:     req.UserName,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		Gender:       req.Gender,
		PasswordHash: passwordHash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.BadRequest("User already exists with this email")
		}
		if errors.Is(err, repository.ErrDuplicateUserName) {
			return nil, apperror.BadRequest("Username already exists")
		}
		return nil, apperror.Internal("Failed to create user")
	}

	activity := &domain.Activity{UserID: user.ID}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, apperror.Internal("")
	}
	user.Activity = activity

	role := &domain.Role{UserID: user.ID, Admin: false, User: true}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, apperror.Internal("")
	}
	user.Role = role

	tokens, err := s.issueFreshSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:   sanitizeUser(user),
		Role:   role,
		Tokens: *tokens,
	}, nil
}

// Logout revokes the user's active session by deleting the key pair
func (s *authService) Logout(ctx context.Context, userID string) error {
	deleted, err := s.keysRepo.DeleteByUserID(ctx, userID)
	if err != nil || deleted == 0 {
		return apperror.Internal("logout fail")
	}
	return nil
}

// RefreshTokens rotates the session key pair and issues a new token
// pair. The presented access token may be expired; the refresh token
// must not be. Rotation makes refresh tokens single-use: a replayed
// refresh token no longer matches a stored pair and is rejected.
func (s *authService) RefreshTokens(ctx context.Context, accessToken, refreshToken string) (*domain.TokenPair, error) {
	accessPayload, err := s.codec.DecodeExpiredAccessToken(accessToken)
	if err != nil {
		if apperror.IsKind(err, apperror.KindBadToken) {
			return nil, apperror.AccessToken("")
		}
		return nil, apperror.From(err)
	}

	user, err := s.userRepo.GetByID(ctx, accessPayload.UserID, repository.Include{Role: true})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Forbidden("User not found")
		}
		return nil, apperror.Internal("")
	}
	if user.Role == nil {
		return nil, apperror.Forbidden("Missing user credentials")
	}

	refreshPayload, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.From(err)
	}

	if accessPayload.UserID != refreshPayload.UserID {
		return nil, apperror.AuthFailure("Invalid Token")
	}
	if accessPayload.AccessTokenKey == "" || refreshPayload.RefreshTokenKey == "" {
		return nil, apperror.AuthFailure("Invalid Token")
	}

	next, err := s.freshKeys(user.ID)
	if err != nil {
		return nil, err
	}

	match := domain.AuthTokenKeys{
		UserID:          user.ID,
		AccessTokenKey:  accessPayload.AccessTokenKey,
		RefreshTokenKey: refreshPayload.RefreshTokenKey,
	}
	if err := s.keysRepo.Replace(ctx, match, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.AuthFailure("Invalid Token")
		}
		return nil, apperror.Internal("")
	}

	return s.issueTokens(user, next)
}

// VerifyVerificationToken consumes a verification token according to
// its purpose. Reset-password tokens are only marked verified here and
// consumed later by ResetPassword via their id.
func (s *authService) VerifyVerificationToken(ctx context.Context, token string) (*dto.VerificationResult, error) {
	verification, err := s.verificationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.BadRequest("Invalid Token")
		}
		return nil, apperror.Internal("")
	}
	if verification.IsExpired() {
		return nil, apperror.BadRequest("Invalid Token")
	}

	activity, err := s.activityRepo.GetByUserID(ctx, verification.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Forbidden("")
		}
		return nil, apperror.Internal("")
	}

	switch verification.TokenType {
	case domain.TokenTypeVerifyAccount:
		if !activity.AccessRestricted {
			return nil, apperror.BadRequest("Account already verified")
		}
		activity.AccessRestricted = false
		if err := s.activityRepo.Update(ctx, activity); err != nil {
			return nil, apperror.Internal("")
		}
		if _, err := s.verificationRepo.DeleteByUserID(ctx, verification.UserID); err != nil {
			return nil, apperror.Internal("")
		}
		return &dto.VerificationResult{AccountVerified: true}, nil

	case domain.TokenTypeVerifyEmail:
		if activity.EmailVerified {
			return nil, apperror.BadRequest("Email already verified")
		}
		activity.EmailVerified = true
		if err := s.activityRepo.Update(ctx, activity); err != nil {
			return nil, apperror.Internal("")
		}
		if _, err := s.verificationRepo.DeleteByUserID(ctx, verification.UserID); err != nil {
			return nil, apperror.Internal("")
		}
		return &dto.VerificationResult{EmailVerified: true}, nil

	case domain.TokenTypeResetPassword:
		if err := s.verificationRepo.MarkVerified(ctx, token); err != nil {
			return nil, apperror.Internal("")
		}
		return &dto.VerificationResult{TokenID: verification.ID}, nil

	default:
		return nil, apperror.Forbidden("")
	}
}

// ResetPassword consumes a verified reset token, replaces the password
// and revokes every live session so each device must log in again.
func (s *authService) ResetPassword(ctx context.Context, tokenID, newPassword string) error {
	verification, err := s.verificationRepo.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.BadRequest("Invalid Token")
		}
		return apperror.Internal("")
	}

	user, err := s.userRepo.GetByID(ctx, verification.UserID, repository.Include{Activity: true})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.BadRequest("Invalid Token")
		}
		return apperror.Internal("")
	}

	if verification.TokenType != domain.TokenTypeResetPassword {
		return apperror.Forbidden("")
	}

	if !utils.ValidatePassword(newPassword) {
		return apperror.BadRequest("Password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	passwordHash, err := s.hasher.Hash(newPassword, "")
	if err != nil {
		return apperror.Internal("")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return apperror.Internal("")
	}

	if user.Activity != nil {
		now := time.Now()
		user.Activity.PasswordChangedLast = &now
		if err := s.activityRepo.Update(ctx, user.Activity); err != nil {
			return apperror.Internal("")
		}
	}

	if _, err := s.verificationRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return apperror.Internal("")
	}
	if _, err := s.keysRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return apperror.Internal("")
	}

	return nil
}

// ChangePassword replaces the password after validating the old one
func (s *authService) ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) error {
	valid, err := s.hasher.Validate(oldPassword, user.PasswordHash)
	if err != nil {
		return apperror.From(err)
	}
	if !valid {
		return apperror.BadRequest("Invalid Password")
	}

	if !utils.ValidatePassword(newPassword) {
		return apperror.BadRequest("Password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	passwordHash, err := s.hasher.Hash(newPassword, "")
	if err != nil {
		return apperror.Internal("")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return apperror.Internal("")
	}

	if user.Activity != nil {
		now := time.Now()
		user.Activity.PasswordChangedLast = &now
		if err := s.activityRepo.Update(ctx, user.Activity); err != nil {
			return apperror.Internal("")
		}
	}

	return nil
}

// VerifyAccessToken is the admission path shared by the HTTP middleware
// and the realtime authorizer: signature, expiry and claim-shape checks
// plus the live-key-pair lookup that makes a signed token actually live.
func (s *authService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, *domain.TokenPayload, error) {
	payload, err := s.codec.VerifyAccessToken(token)
	if err != nil {
		if apperror.IsKind(err, apperror.KindBadToken) || apperror.IsKind(err, apperror.KindTokenExpired) {
			return nil, nil, apperror.AccessToken("")
		}
		return nil, nil, apperror.From(err)
	}

	user, err := s.userRepo.GetByID(ctx, payload.UserID, repository.Include{Role: true, Activity: true})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperror.AuthFailure("User not found")
		}
		return nil, nil, apperror.Internal("")
	}

	if payload.AccessTokenKey == "" {
		return nil, nil, apperror.AuthFailure("")
	}

	match := domain.AuthTokenKeys{UserID: user.ID, AccessTokenKey: payload.AccessTokenKey}
	if _, err := s.keysRepo.Find(ctx, match); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperror.AuthFailure("")
		}
		return nil, nil, apperror.Internal("")
	}

	return user, payload, nil
}

// issueFreshSession replaces any existing key pair with a fresh one and
// issues tokens against it, preserving the at-most-one-active-pair
// invariant.
func (s *authService) issueFreshSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	if _, err := s.keysRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return nil, apperror.Internal("")
	}

	keys, err := s.freshKeys(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.keysRepo.Create(ctx, keys); err != nil {
		return nil, apperror.Internal("")
	}

	return s.issueTokens(user, keys)
}

func (s *authService) freshKeys(userID string) (*domain.AuthTokenKeys, error) {
	accessKey, err := utils.RandomHex(tokenKeyLength)
	if err != nil {
		return nil, apperror.Internal("")
	}
	refreshKey, err := utils.RandomHex(tokenKeyLength)
	if err != nil {
		return nil, apperror.Internal("")
	}
	return &domain.AuthTokenKeys{
		UserID:          userID,
		AccessTokenKey:  accessKey,
		RefreshTokenKey: refreshKey,
	}, nil
}

func (s *authService) issueTokens(user *domain.User, keys *domain.AuthTokenKeys) (*domain.TokenPair, error) {
	payload := domain.TokenPayload{
		UserID:   user.ID,
		UserName: user.UserName,
		Email:    user.Email,
	}
	if user.Role != nil {
		payload.RoleID = user.Role.ID
	}

	payload.AccessTokenKey = keys.AccessTokenKey
	accessToken, err := s.codec.SignAccessToken(payload)
	if err != nil {
		return nil, apperror.From(err)
	}

	payload.AccessTokenKey = ""
	payload.RefreshTokenKey = keys.RefreshTokenKey
	refreshToken, err := s.codec.SignRefreshToken(payload)
	if err != nil {
		return nil, apperror.From(err)
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// sanitizeUser strips credentials and internal security state before a
// user crosses the service boundary.
func sanitizeUser(user *domain.User) *domain.User {
	clean := *user
	clean.PasswordHash = ""
	clean.Activity = nil
	clean.Role = nil
	return &clean
}
